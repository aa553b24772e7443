// Package allocator decides, per light element, whether it is lit at all
// and at what intensity scale, from the cross-product of quality level,
// zoom mode and priority tier.
package allocator

import (
	"codeberg.org/mutker/lightctl/internal/governor"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/scene"
	"codeberg.org/mutker/lightctl/internal/zoom"
)

// Decision is the allocator's verdict for one light element.
type Decision struct {
	Lit   bool
	Scale float64
}

var off = Decision{}

func lit(scale float64) Decision {
	return Decision{Lit: true, Scale: scale}
}

// Hazard telegraph intensity degrades with quality but is never fully off:
// telegraphs are survival-critical.
var hazardScales = map[governor.QualityLevel]float64{
	governor.Ultra:     1.0,
	governor.High:      0.85,
	governor.Low:       0.65,
	governor.Emergency: 0.45,
}

// HazardScale returns the telegraph intensity multiplier for a quality level.
func HazardScale(q governor.QualityLevel) float64 {
	if s, ok := hazardScales[q]; ok {
		return s
	}

	return hazardScales[governor.Emergency]
}

// Decide resolves the policy for an entity-owned light element. The
// emergency override pass backstops the Selected and CriticalHealth rows, so
// even a misconfigured table cannot suppress them for long.
func Decide(q governor.QualityLevel, m zoom.Mode, tier priority.Tier) Decision {
	switch tier {
	case priority.Selected:
		// Lit at every quality level in both modes.
		return lit(1.0)

	case priority.CriticalHealth:
		// Also never off; intensity eases down slightly under pressure.
		switch q {
		case governor.Ultra, governor.High:
			return lit(1.0)
		case governor.Low:
			return lit(0.9)
		default:
			return lit(0.8)
		}

	case priority.ActiveHazard:
		return lit(HazardScale(q))

	case priority.StrategicContext:
		// First to shed, and more aggressively in overview where more
		// scenes compete for the same budget.
		if m == zoom.Overview {
			switch q {
			case governor.Ultra:
				return lit(0.9)
			case governor.High:
				return lit(0.7)
			default:
				return off
			}
		}
		switch q {
		case governor.Ultra:
			return lit(1.0)
		case governor.High:
			return lit(0.9)
		case governor.Low:
			return lit(0.6)
		default:
			return off
		}

	case priority.Ambient:
		if m == zoom.Overview {
			switch q {
			case governor.Ultra:
				return lit(0.8)
			case governor.High:
				return lit(0.5)
			default:
				return off
			}
		}
		// Focused mode dims background-scene detail starting at High.
		if q == governor.Ultra {
			return lit(0.5)
		}
		return off

	default:
		return off
	}
}

// SceneAmbient resolves the base ambient lighting of a whole scene. The
// returned scale already includes the profile's mode multiplier.
func SceneAmbient(q governor.QualityLevel, m zoom.Mode, p scene.Profile, focused bool) Decision {
	if m == zoom.Overview {
		// Every scene keeps some ambiance at Ultra/High, collapsing
		// toward the focused scene only as quality drops.
		switch q {
		case governor.Ultra:
			return lit(p.OverviewMultiplier)
		case governor.High:
			return lit(p.OverviewMultiplier * 0.75)
		case governor.Low:
			if focused {
				return lit(p.OverviewMultiplier * 0.5)
			}
			return off
		default:
			return off
		}
	}

	if focused {
		// The focused scene retains full per-theme intensity at Ultra/High.
		switch q {
		case governor.Ultra, governor.High:
			return lit(p.FocusedMultiplier)
		case governor.Low:
			return lit(p.FocusedMultiplier * 0.5)
		default:
			return off
		}
	}

	// Background scenes in focused mode are dimmed to near-zero at Ultra
	// and fully off from High down.
	if q == governor.Ultra {
		return lit(p.FocusedMultiplier * 0.15)
	}

	return off
}
