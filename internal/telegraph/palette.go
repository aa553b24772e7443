package telegraph

import "github.com/lucasb-eyer/go-colorful"

// DamageType tags a hazard with the damage flavor that picks its base color.
type DamageType int

const (
	Physical DamageType = iota
	Fire
	Frost
	Arcane
	Poison
)

func (d DamageType) String() string {
	switch d {
	case Physical:
		return "physical"
	case Fire:
		return "fire"
	case Frost:
		return "frost"
	case Arcane:
		return "arcane"
	case Poison:
		return "poison"
	default:
		return "unknown"
	}
}

// Color returns the fully saturated base color for a damage type. Phase
// curves desaturate or spike it from here.
func (d DamageType) Color() colorful.Color {
	switch d {
	case Fire:
		return colorful.Hsv(18, 1, 1)
	case Frost:
		return colorful.Hsv(197, 1, 1)
	case Arcane:
		return colorful.Hsv(276, 1, 1)
	case Poison:
		return colorful.Hsv(103, 1, 1)
	default:
		return colorful.Hsv(0, 0.9, 1)
	}
}
