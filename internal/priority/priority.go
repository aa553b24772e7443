// Package priority classifies gameplay entities into the fixed visual
// precedence tiers that drive the light budget.
package priority

// Tier is an ordered classification. Lower values outrank higher ones.
type Tier int

const (
	Selected Tier = iota
	CriticalHealth
	ActiveHazard
	StrategicContext
	Ambient
)

func (t Tier) String() string {
	switch t {
	case Selected:
		return "selected"
	case CriticalHealth:
		return "critical_health"
	case ActiveHazard:
		return "active_hazard"
	case StrategicContext:
		return "strategic_context"
	case Ambient:
		return "ambient"
	default:
		return "unknown"
	}
}

// Outranks reports whether t takes visual precedence over other.
func (t Tier) Outranks(other Tier) bool {
	return t < other
}

// CriticalHealthRatio is the threshold below which an entity counts as
// critically wounded. The boundary is exclusive: a ratio of exactly 0.25
// does not trigger the tier.
const CriticalHealthRatio = 0.25

// Entity is the per-tick snapshot of the gameplay state the classifier
// inspects. It carries no light data.
type Entity struct {
	ID           string
	Scene        string
	Selected     bool
	Health       float64
	MaxHealth    float64
	DrivesHazard bool
}

// HealthRatio returns the entity's health fraction, clamping out-of-range
// inputs instead of propagating them.
func HealthRatio(health, maxHealth float64) float64 {
	if maxHealth <= 0 {
		return 0
	}
	if health < 0 {
		health = 0
	}
	if health > maxHealth {
		health = maxHealth
	}

	return health / maxHealth
}

// Classify assigns the entity's single highest-precedence tier. Rules are
// evaluated top-down, first match wins.
func Classify(e Entity, focusedScene string) Tier {
	switch {
	case e.Selected:
		return Selected
	case HealthRatio(e.Health, e.MaxHealth) < CriticalHealthRatio:
		return CriticalHealth
	case e.DrivesHazard:
		return ActiveHazard
	case e.Scene == focusedScene:
		return StrategicContext
	default:
		return Ambient
	}
}
