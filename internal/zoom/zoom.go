// Package zoom classifies the camera scale into the two defined modes and
// exposes the per-tier visibility boost tables.
package zoom

import (
	"math"

	"codeberg.org/mutker/lightctl/internal/priority"
)

// Mode is the binary camera state.
type Mode int

const (
	Focused Mode = iota
	Overview
)

func (m Mode) String() string {
	if m == Overview {
		return "overview"
	}

	return "focused"
}

const (
	// DefaultFocusedScale and DefaultOverviewScale are the two camera
	// scales the surrounding camera subsystem is expected to produce.
	DefaultFocusedScale  = 1.0
	DefaultOverviewScale = 0.35

	// Epsilon tolerates float jitter around the overview scale.
	Epsilon = 0.01
)

// Boost bounds. No signal is ever zeroed or more than doubled by the boost
// table alone.
const (
	MinBoost = 0.1
	MaxBoost = 2.0
)

// Overview boosts. Life-critical and hazard signals are amplified because
// the overview compresses many scenes into one visual budget; ambient detail
// is reduced since it reads as noise at small scale.
const (
	overviewSelectedBoost  = 1.2
	overviewCriticalBoost  = 1.5
	overviewHazardBoost    = 1.3
	overviewStrategicBoost = 0.8
	overviewAmbientBoost   = 0.6
)

// Adapter maps camera scale to a Mode and holds the boost tables.
type Adapter struct {
	focusedScale  float64
	overviewScale float64
}

func NewAdapter(focusedScale, overviewScale float64) Adapter {
	if focusedScale <= 0 {
		focusedScale = DefaultFocusedScale
	}
	if overviewScale <= 0 {
		overviewScale = DefaultOverviewScale
	}

	return Adapter{focusedScale: focusedScale, overviewScale: overviewScale}
}

// Mode returns the zoom mode for a camera scale. Scales within Epsilon of
// the overview value are Overview; anything else snaps to whichever defined
// scale is closer. No intermediate state is modeled.
func (a Adapter) Mode(scale float64) Mode {
	if math.Abs(scale-a.overviewScale) <= Epsilon {
		return Overview
	}
	if math.Abs(scale-a.focusedScale) <= Epsilon {
		return Focused
	}

	if math.Abs(scale-a.overviewScale) < math.Abs(scale-a.focusedScale) {
		return Overview
	}

	return Focused
}

// Boost returns the visibility multiplier for a priority tier in the given
// mode. All values lie within [MinBoost, MaxBoost].
func (a Adapter) Boost(m Mode, tier priority.Tier) float64 {
	if m == Focused {
		return 1.0
	}

	var boost float64
	switch tier {
	case priority.Selected:
		boost = overviewSelectedBoost
	case priority.CriticalHealth:
		boost = overviewCriticalBoost
	case priority.ActiveHazard:
		boost = overviewHazardBoost
	case priority.StrategicContext:
		boost = overviewStrategicBoost
	case priority.Ambient:
		boost = overviewAmbientBoost
	default:
		boost = 1.0
	}

	return clampBoost(boost)
}

// HazardBoost returns the multiplier applied to hazard telegraph lights,
// tracked as a category distinct from the entity tiers.
func (a Adapter) HazardBoost(m Mode) float64 {
	if m == Focused {
		return 1.0
	}

	return clampBoost(overviewHazardBoost)
}

func clampBoost(v float64) float64 {
	if v < MinBoost {
		return MinBoost
	}
	if v > MaxBoost {
		return MaxBoost
	}

	return v
}
