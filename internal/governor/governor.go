// Package governor implements the discrete quality-level control loop. It
// trades visual richness for frame-time stability one step at a time, with
// hysteresis and a cooldown so quality never visibly flickers.
package governor

import (
	"math"
	"time"

	"codeberg.org/mutker/lightctl/internal/logger"
	"codeberg.org/mutker/lightctl/internal/zoom"
)

// QualityLevel is the ordered rendering-fidelity step. Higher is richer.
type QualityLevel int

const (
	Emergency QualityLevel = iota
	Low
	High
	Ultra
)

func (q QualityLevel) String() string {
	switch q {
	case Emergency:
		return "emergency"
	case Low:
		return "low"
	case High:
		return "high"
	case Ultra:
		return "ultra"
	default:
		return "unknown"
	}
}

// Promote returns the next richer level, clamped at Ultra.
func (q QualityLevel) Promote() QualityLevel {
	if q >= Ultra {
		return Ultra
	}

	return q + 1
}

// Demote returns the next poorer level, clamped at Emergency.
func (q QualityLevel) Demote() QualityLevel {
	if q <= Emergency {
		return Emergency
	}

	return q - 1
}

const (
	// NominalTarget is the 60Hz frame budget.
	NominalTarget = 16670 * time.Microsecond

	// DefaultCooldown is the minimum spacing between adjustments.
	DefaultCooldown = 2 * time.Second

	// Hysteresis band around the adjusted target.
	demoteRatio  = 1.15
	promoteRatio = 0.85

	// Overview renders many scenes at once, so its budget is inherently
	// more lenient than the focused single-scene budget.
	focusedLeniency  = 1.0
	overviewLeniency = 1.4
)

// Governor holds the single process-wide quality level. It is the only
// writer; everything downstream reads the level it decided this tick.
type Governor struct {
	level      QualityLevel
	cooldown   time.Duration
	lastAdjust float64
	log        logger.Logger
}

func New(cooldown time.Duration, log logger.Logger) *Governor {
	if cooldown < DefaultCooldown {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = logger.Default()
	}

	return &Governor{
		level:      Ultra,
		cooldown:   cooldown,
		lastAdjust: math.Inf(-1),
		log:        log,
	}
}

// Level returns the current quality level.
func (g *Governor) Level() QualityLevel {
	return g.level
}

// AdjustedTarget returns the nominal frame budget scaled by the leniency
// factor for the given zoom mode.
func (g *Governor) AdjustedTarget(mode zoom.Mode) time.Duration {
	leniency := focusedLeniency
	if mode == zoom.Overview {
		leniency = overviewLeniency
	}

	return time.Duration(float64(NominalTarget) * leniency)
}

// Observe consumes the sampler's rolling average and adjusts the quality
// level by at most one step per cooldown window. avgOK is false during cold
// start, in which case the level is left untouched. now is the deterministic
// cycle time in seconds.
func (g *Governor) Observe(avg time.Duration, avgOK bool, mode zoom.Mode, now float64) QualityLevel {
	if !avgOK {
		return g.level
	}

	if now-g.lastAdjust < g.cooldown.Seconds() {
		return g.level
	}

	target := g.AdjustedTarget(mode)
	next := g.level

	switch {
	case float64(avg) > float64(target)*demoteRatio:
		next = g.level.Demote()
	case float64(avg) < float64(target)*promoteRatio:
		next = g.level.Promote()
	}

	if next != g.level {
		g.log.Info().
			Str("from", g.level.String()).
			Str("to", next.String()).
			Dur("avg_frame", avg).
			Dur("adjusted_target", target).
			Str("zoom_mode", mode.String()).
			Msg("Quality level changed")
		g.level = next
		g.lastAdjust = now
	}

	return g.level
}
