package telegraph

import (
	"fmt"
	"math"

	"codeberg.org/mutker/lightctl/internal/light"
	"github.com/lucasb-eyer/go-colorful"
)

// ShapeKind discriminates the attack-shape variants.
type ShapeKind int

const (
	ShapePoint ShapeKind = iota
	ShapeCircle
	ShapeLine
	ShapeRegion
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePoint:
		return "point"
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	case ShapeRegion:
		return "region"
	default:
		return "unknown"
	}
}

// Shape describes the danger geometry of one hazard. Only the fields of the
// active variant are meaningful.
type Shape struct {
	Kind   ShapeKind
	Origin light.Vec2
	Radius float64
	End    light.Vec2
	Min    light.Vec2
	Max    light.Vec2
}

// PointShape targets a single point with a focused beam.
func PointShape(origin light.Vec2) Shape {
	return Shape{Kind: ShapePoint, Origin: origin}
}

// CircleShape covers a circular danger zone.
func CircleShape(origin light.Vec2, radius float64) Shape {
	return Shape{Kind: ShapeCircle, Origin: origin, Radius: math.Abs(radius)}
}

// LineShape covers a linear strip between two points.
func LineShape(from, to light.Vec2) Shape {
	return Shape{Kind: ShapeLine, Origin: from, End: to}
}

// RegionShape covers a static rectangular region.
func RegionShape(min, max light.Vec2) Shape {
	return Shape{Kind: ShapeRegion, Min: min, Max: max}
}

const (
	ringMinPoints = 6
	ringMaxPoints = 16
	ringSpacing   = 24.0
	lineSpacing   = 32.0
)

// layout computes the static light placement for a shape. It runs once at
// telegraph creation; the per-tick passes only rescale the result.
func layout(id string, s Shape, col colorful.Color, falloff float64) []light.Element {
	var positions []light.Vec2
	switch s.Kind {
	case ShapePoint:
		positions = []light.Vec2{s.Origin}
		if falloff == 0 {
			falloff = 40
		}

	case ShapeCircle:
		n := int(2 * math.Pi * s.Radius / ringSpacing)
		if n < ringMinPoints {
			n = ringMinPoints
		}
		if n > ringMaxPoints {
			n = ringMaxPoints
		}
		positions = append(positions, s.Origin)
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(i) / float64(n)
			positions = append(positions, light.Vec2{
				X: s.Origin.X + s.Radius*math.Cos(angle),
				Y: s.Origin.Y + s.Radius*math.Sin(angle),
			})
		}
		if falloff == 0 {
			falloff = math.Max(s.Radius*0.5, ringSpacing)
		}

	case ShapeLine:
		dx := s.End.X - s.Origin.X
		dy := s.End.Y - s.Origin.Y
		length := math.Hypot(dx, dy)
		n := int(length/lineSpacing) + 1
		if n < 2 {
			n = 2
		}
		for i := 0; i < n; i++ {
			t := float64(i) / float64(n-1)
			positions = append(positions, light.Vec2{
				X: s.Origin.X + dx*t,
				Y: s.Origin.Y + dy*t,
			})
		}
		if falloff == 0 {
			falloff = lineSpacing
		}

	case ShapeRegion:
		center := light.Vec2{X: (s.Min.X + s.Max.X) / 2, Y: (s.Min.Y + s.Max.Y) / 2}
		positions = []light.Vec2{
			center,
			{X: s.Min.X, Y: s.Min.Y},
			{X: s.Max.X, Y: s.Min.Y},
			{X: s.Max.X, Y: s.Max.Y},
			{X: s.Min.X, Y: s.Max.Y},
		}
		if falloff == 0 {
			falloff = math.Hypot(s.Max.X-s.Min.X, s.Max.Y-s.Min.Y) / 4
		}

	default:
		return nil
	}

	elements := make([]light.Element, 0, len(positions))
	for i, pos := range positions {
		elements = append(elements, light.Element{
			ID:      light.ID(fmt.Sprintf("%s/%d", id, i)),
			Owner:   id,
			Pos:     pos,
			Color:   col,
			Falloff: falloff,
		})
	}

	return elements
}
