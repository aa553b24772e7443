// Package telegraph drives the timed visual escalation of upcoming hazards:
// Idle, Buildup, Warning, Danger, Execution, back to Idle. Phases advance on
// an external deterministic cycle timer so telegraph timing is reproducible
// regardless of frame-rate variance.
package telegraph

import (
	"math"

	"codeberg.org/mutker/lightctl/internal/light"
	"github.com/lucasb-eyer/go-colorful"
)

// Phase is one state of the telegraph sequence.
type Phase int

const (
	Idle Phase = iota
	Buildup
	Warning
	Danger
	Execution
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Buildup:
		return "buildup"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	case Execution:
		return "execution"
	default:
		return "unknown"
	}
}

// Phase intensity ceilings, in renderer units before allocator and zoom
// scaling.
const (
	buildupCeiling = 200.0
	warningCeiling = 450.0
	dangerCeiling  = 800.0
	executionFlash = light.MaxIntensity
	afterimage     = 60.0
)

const (
	buildupSaturation = 0.3 // 70% desaturated: "something is coming"
	flashSaturation   = 1.2 // brief spike above full saturation

	warningPulseHz    = 1.5
	warningPulseDepth = 0.15
	dangerPulseDepth  = 0.25
	dangerPulseBaseHz = 2.0
	dangerPulseSpanHz = 6.0

	flashWindow = 0.1 // leading fraction of Execution spent at the flash ceiling
	fadeRate    = 6.0
)

// Config describes one hazard's telegraph. Start and the phase durations are
// in cycle-timer seconds.
type Config struct {
	Shape     Shape
	Damage    DamageType
	Start     float64
	Buildup   float64
	Warning   float64
	Danger    float64
	Execution float64
	Falloff   float64
}

// Sample is the phase output before allocator and zoom scaling.
type Sample struct {
	Intensity  float64
	Saturation float64
	Color      colorful.Color
}

// Telegraph is the per-hazard state machine. It owns the light elements it
// drives; their geometry is computed once at creation.
type Telegraph struct {
	id       string
	cfg      Config
	bounds   [4]float64
	total    float64
	lights   []light.Element
	phase    Phase
	progress float64
	elapsed  float64
	expired  bool
	disabled bool
}

// New creates a telegraph for a scheduled hazard. A configuration whose
// phase durations sum to zero yields a permanently idle telegraph that
// emits no light, rather than an error.
func New(id string, cfg Config) *Telegraph {
	t := &Telegraph{id: id, cfg: cfg}

	durations := [4]float64{cfg.Buildup, cfg.Warning, cfg.Danger, cfg.Execution}
	acc := 0.0
	for i, d := range durations {
		if d < 0 {
			d = 0
		}
		acc += d
		t.bounds[i] = acc
	}
	t.total = acc

	if t.total <= 0 {
		t.disabled = true
		return t
	}

	t.lights = layout(id, cfg.Shape, cfg.Damage.Color(), cfg.Falloff)

	return t
}

func (t *Telegraph) ID() string {
	return t.id
}

func (t *Telegraph) Phase() Phase {
	return t.phase
}

// Progress reports how far through the current phase the telegraph is, in
// [0, 1]. It is 0 while Idle.
func (t *Telegraph) Progress() float64 {
	return t.progress
}

// TotalDuration returns the configured length of the full sequence.
func (t *Telegraph) TotalDuration() float64 {
	return t.total
}

// Expired reports that the Execution phase has finished and the telegraph
// can be destroyed.
func (t *Telegraph) Expired() bool {
	return t.expired
}

// Lights returns the elements this telegraph drives.
func (t *Telegraph) Lights() []light.Element {
	return t.lights
}

// Advance moves the telegraph to the phase the cycle timer dictates.
// timerOK reports whether the external cycle timer is available; once it
// goes away the telegraph degrades to permanently idle.
func (t *Telegraph) Advance(cycleTime float64, timerOK bool) {
	if !timerOK {
		t.disabled = true
	}
	if t.disabled {
		t.phase = Idle
		t.progress = 0
		t.elapsed = 0
		return
	}

	elapsed := cycleTime - t.cfg.Start
	if elapsed < 0 {
		t.phase = Idle
		t.progress = 0
		t.elapsed = 0
		return
	}
	if elapsed >= t.total {
		t.phase = Idle
		t.progress = 0
		t.elapsed = 0
		t.expired = true
		return
	}

	phases := [4]Phase{Buildup, Warning, Danger, Execution}
	start := 0.0
	for i, end := range t.bounds {
		if elapsed < end {
			t.phase = phases[i]
			t.elapsed = elapsed - start
			t.progress = t.elapsed / (end - start)
			return
		}
		start = end
	}
}

// Sample evaluates the intensity, pulse and saturation curves for the
// current phase. The result still needs the allocator's quality scale and
// the zoom adapter's hazard boost.
func (t *Telegraph) Sample() Sample {
	switch t.phase {
	case Buildup:
		// Linear ramp, no pulsing, heavily desaturated.
		return t.sample(t.progress*buildupCeiling, buildupSaturation)

	case Warning:
		// The danger geometry must be legible here: full saturation,
		// gentle low-frequency pulse.
		intensity := lerp(buildupCeiling, warningCeiling, t.progress)
		intensity *= pulse(warningPulseHz, warningPulseDepth, t.elapsed)
		return t.sample(intensity, 1)

	case Danger:
		// Pulse frequency escalates with progress.
		intensity := lerp(warningCeiling, dangerCeiling, t.progress)
		hz := dangerPulseBaseHz + dangerPulseSpanHz*t.progress
		intensity *= pulse(hz, dangerPulseDepth, t.elapsed)
		return t.sample(intensity, 1)

	case Execution:
		if t.progress < flashWindow {
			return t.sample(executionFlash, flashSaturation)
		}
		k := (t.progress - flashWindow) / (1 - flashWindow)
		intensity := afterimage + (dangerCeiling-afterimage)*math.Exp(-fadeRate*k)
		return t.sample(intensity, 1-0.4*k)

	default:
		return Sample{Color: t.cfg.Damage.Color()}
	}
}

func (t *Telegraph) sample(intensity, saturation float64) Sample {
	base := t.cfg.Damage.Color()
	h, s, v := base.Hsv()

	applied := saturation
	if applied > 1 {
		applied = 1
	}
	if applied < 0 {
		applied = 0
	}

	return Sample{
		Intensity:  intensity,
		Saturation: saturation,
		Color:      colorful.Hsv(h, s*applied, v),
	}
}

func lerp(from, to, k float64) float64 {
	return from + (to-from)*k
}

func pulse(hz, depth, elapsed float64) float64 {
	return 1 + depth*math.Sin(2*math.Pi*hz*elapsed)
}
