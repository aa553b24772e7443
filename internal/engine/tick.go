package engine

import (
	"sort"
	"time"

	"codeberg.org/mutker/lightctl/internal/allocator"
	"codeberg.org/mutker/lightctl/internal/governor"
	"codeberg.org/mutker/lightctl/internal/light"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/telegraph"
	"codeberg.org/mutker/lightctl/internal/zoom"
)

// TickContext is the shared read-only state of one tick, constructed once
// after the governor and zoom adapter have run and passed to every later
// stage. No component holds a long-lived mutable singleton.
type TickContext struct {
	Quality      governor.QualityLevel
	Mode         zoom.Mode
	Delta        time.Duration
	CycleTime    float64
	CycleOK      bool
	FocusedScene string
}

const (
	entityBaseIntensity = 300.0
	sceneFalloff        = 600.0
	sceneLightPrefix    = "scene/"
)

// Tick runs the fixed sequential pipeline once: sampler update, governor
// decision, zoom read, classifier pass, allocator pass, telegraph advance,
// emergency override, emission. frame is the host loop's last frame
// duration; cycleTime is the deterministic cycle timer in seconds and
// cycleOK reports its availability.
func (e *Engine) Tick(frame time.Duration, cycleTime float64, cycleOK bool) []light.Emission {
	// Sampler update.
	e.window.Record(cycleTime, frame)
	avg, avgOK := e.window.Average()

	// Governor decision, then zoom read. Both are single-writer; every
	// later stage only reads the context.
	mode := e.adapter.Mode(e.cameraScale)
	quality := e.governor.Observe(avg, avgOK, mode, cycleTime)

	ctx := TickContext{
		Quality:      quality,
		Mode:         mode,
		Delta:        frame,
		CycleTime:    cycleTime,
		CycleOK:      cycleOK,
		FocusedScene: e.scenes.Focused(),
	}

	// Classifier pass. The bounded entity set is recomputed every tick
	// rather than dirty-tracked; recomputation is cheap relative to the
	// render budget.
	for id, ent := range e.entities {
		e.tiers[id] = priority.Classify(*ent, ctx.FocusedScene)
	}

	emissions := make([]light.Emission, 0, len(e.order)+len(e.scenes.IDs())+8*len(e.hazards))
	overrides := 0

	// Allocator pass over entity elements, with the emergency override as
	// the final clamp on each.
	for _, id := range e.order {
		em, fired, ok := e.emitEntity(ctx, id)
		if !ok {
			continue
		}
		if fired {
			overrides++
		}
		if em.Intensity > 0 {
			emissions = append(emissions, em)
		}
	}

	// Scene ambient lighting.
	emissions = append(emissions, e.emitScenes(ctx)...)

	// Telegraph state machines advance on the cycle timer, then take the
	// allocator's quality scale and the zoom hazard boost.
	emissions = append(emissions, e.emitHazards(ctx)...)

	e.stats = Stats{
		Quality:       quality,
		Mode:          mode,
		AvgFrame:      avg,
		AvgFrameOK:    avgOK,
		Entities:      len(e.entities),
		LitElements:   len(emissions),
		ActiveHazards: len(e.hazards),
		Overrides:     overrides,
	}

	return emissions
}

// emitEntity resolves one entity-owned element through the allocator and
// the emergency override. The last return is false when the element
// reference is dangling, which is skipped rather than fatal.
func (e *Engine) emitEntity(ctx TickContext, id string) (light.Emission, bool, bool) {
	if _, ok := e.entities[id]; !ok {
		return light.Emission{}, false, false
	}
	el, ok := e.elements[id]
	if !ok {
		e.log.Debug().Str("entity", id).Msg("Skipping dangling light element")
		return light.Emission{}, false, false
	}

	tier := e.tiers[id]
	dec := allocator.Decide(ctx.Quality, ctx.Mode, tier)

	intensity := 0.0
	if dec.Lit {
		intensity = entityBaseIntensity * dec.Scale * e.adapter.Boost(ctx.Mode, tier)
	}

	intensity, col, fired := e.override.Apply(tier, ctx.Quality, ctx.Mode, intensity, el.Color, ctx.CycleTime)

	return light.Emission{
		ID:        el.ID,
		Pos:       el.Pos,
		Color:     col,
		Intensity: light.ClampIntensity(intensity),
		Falloff:   el.Falloff,
	}, fired, true
}

func (e *Engine) emitScenes(ctx TickContext) []light.Emission {
	var out []light.Emission
	for _, sid := range e.scenes.IDs() {
		p, ok := e.scenes.Get(sid)
		if !ok {
			continue
		}

		dec := allocator.SceneAmbient(ctx.Quality, ctx.Mode, p, sid == ctx.FocusedScene)
		if !dec.Lit {
			continue
		}

		out = append(out, light.Emission{
			ID:        light.ID(sceneLightPrefix + sid),
			Pos:       p.Center,
			Color:     p.Color,
			Intensity: light.ClampIntensity(p.Intensity * dec.Scale),
			Falloff:   sceneFalloff,
		})
	}

	return out
}

func (e *Engine) emitHazards(ctx TickContext) []light.Emission {
	ids := make([]string, 0, len(e.hazards))
	for id := range e.hazards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []light.Emission
	for _, id := range ids {
		t := e.hazards[id]
		t.Advance(ctx.CycleTime, ctx.CycleOK)

		if t.Expired() {
			e.log.Debug().Str("hazard", id).Msg("Hazard telegraph completed")
			e.dropHazard(id)
			continue
		}
		if t.Phase() == telegraph.Idle {
			continue
		}

		sample := t.Sample()
		scale := allocator.HazardScale(ctx.Quality) * e.adapter.HazardBoost(ctx.Mode)
		for _, el := range t.Lights() {
			out = append(out, light.Emission{
				ID:        el.ID,
				Pos:       el.Pos,
				Color:     sample.Color,
				Intensity: light.ClampIntensity(sample.Intensity * scale),
				Falloff:   el.Falloff,
			})
		}
	}

	return out
}
