package light

import "github.com/lucasb-eyer/go-colorful"

// MaxIntensity is the emission ceiling. Values above it overexpose the
// renderer's bloom pass, so every computed intensity is clamped against it.
const MaxIntensity = 1200.0

// ID identifies a light element for the renderer.
type ID string

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a light source decorating a gameplay entity, hazard zone or
// scene. Its lifetime is tied to the owning object.
type Element struct {
	ID      ID
	Owner   string
	Pos     Vec2
	Color   colorful.Color
	Falloff float64
}

// Emission is one per-tick output tuple handed to the renderer.
type Emission struct {
	ID        ID             `json:"id"`
	Pos       Vec2           `json:"pos"`
	Color     colorful.Color `json:"color"`
	Intensity float64        `json:"intensity"`
	Falloff   float64        `json:"falloff"`
}

// ClampIntensity bounds an intensity to [0, MaxIntensity].
func ClampIntensity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxIntensity {
		return MaxIntensity
	}

	return v
}
