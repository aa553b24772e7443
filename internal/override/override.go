// Package override is the final enforcement pass: life-critical signals are
// structurally impossible to suppress, no matter what the allocator table or
// the quality level decided.
package override

import (
	"math"

	"codeberg.org/mutker/lightctl/internal/governor"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/zoom"
	"github.com/lucasb-eyer/go-colorful"
)

// MinIntensity is the guaranteed floor for top-tier elements.
const MinIntensity = 120.0

const (
	redPulseHz    = 2.0
	redPulseDepth = 0.3
)

var (
	selectedColor = colorful.Color{R: 1, G: 1, B: 1}
	criticalColor = colorful.Color{R: 1, G: 0.08, B: 0.08}
)

// Pass applies the minimum-visibility guarantee.
type Pass struct {
	adapter zoom.Adapter
}

func NewPass(adapter zoom.Adapter) Pass {
	return Pass{adapter: adapter}
}

// Apply inspects one element's computed output. For tier Selected or
// CriticalHealth it forces a minimum intensity and a fixed color whenever
// the computed intensity is zero or the quality level is Emergency,
// bypassing the allocator table entirely. The result is scaled only by the
// CriticalHealth zoom boost. The boolean reports whether the override fired.
func (p Pass) Apply(
	tier priority.Tier,
	q governor.QualityLevel,
	mode zoom.Mode,
	intensity float64,
	col colorful.Color,
	cycleTime float64,
) (float64, colorful.Color, bool) {
	if tier != priority.Selected && tier != priority.CriticalHealth {
		return intensity, col, false
	}
	if intensity > 0 && q != governor.Emergency {
		return intensity, col, false
	}

	boost := p.adapter.Boost(mode, priority.CriticalHealth)
	forced := MinIntensity * boost

	if tier == priority.Selected {
		return forced, selectedColor, true
	}

	// Critical-but-not-selected pulses red so it reads as an alarm.
	forced *= 1 + redPulseDepth*math.Sin(2*math.Pi*redPulseHz*cycleTime)

	return forced, criticalColor, true
}
