// Package engine wires the lighting pipeline together: sampler, governor,
// zoom adapter, classifier, allocator, telegraph state machines and the
// emergency override, run as one fixed sequence per tick.
package engine

import (
	"time"

	"codeberg.org/mutker/lightctl/internal/errors"
	"codeberg.org/mutker/lightctl/internal/governor"
	"codeberg.org/mutker/lightctl/internal/light"
	"codeberg.org/mutker/lightctl/internal/logger"
	"codeberg.org/mutker/lightctl/internal/override"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/sampler"
	"codeberg.org/mutker/lightctl/internal/scene"
	"codeberg.org/mutker/lightctl/internal/telegraph"
	"codeberg.org/mutker/lightctl/internal/zoom"
	"github.com/lucasb-eyer/go-colorful"
)

// Options configures a new engine.
type Options struct {
	Cooldown      time.Duration
	FocusedScale  float64
	OverviewScale float64
	Logger        logger.Logger
}

// Engine owns the gameplay-facing state (entities, scenes, hazards, light
// elements) and produces the per-tick emissions for the renderer. It is not
// safe for concurrent use; the host loop drives it from a single goroutine.
type Engine struct {
	log      logger.Logger
	window   *sampler.Window
	governor *governor.Governor
	adapter  zoom.Adapter
	override override.Pass
	scenes   *scene.Registry

	entities map[string]*priority.Entity
	elements map[string]*light.Element
	hazards  map[string]*telegraph.Telegraph
	drivers  map[string]string
	order    []string

	cameraScale float64
	tiers       map[string]priority.Tier
	stats       Stats
}

// Stats summarizes the last completed tick for logging, telemetry and the
// monitor stream.
type Stats struct {
	Quality       governor.QualityLevel
	Mode          zoom.Mode
	AvgFrame      time.Duration
	AvgFrameOK    bool
	Entities      int
	LitElements   int
	ActiveHazards int
	Overrides     int
}

func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	adapter := zoom.NewAdapter(opts.FocusedScale, opts.OverviewScale)

	return &Engine{
		log:         log,
		window:      sampler.NewWindow(),
		governor:    governor.New(opts.Cooldown, log),
		adapter:     adapter,
		override:    override.NewPass(adapter),
		scenes:      scene.NewRegistry(),
		entities:    make(map[string]*priority.Entity),
		elements:    make(map[string]*light.Element),
		hazards:     make(map[string]*telegraph.Telegraph),
		drivers:     make(map[string]string),
		cameraScale: zoom.DefaultFocusedScale,
		tiers:       make(map[string]priority.Tier),
	}
}

// AddScene registers a scene lighting profile.
func (e *Engine) AddScene(p scene.Profile) error {
	return e.scenes.Add(p)
}

// SetFocusedScene switches camera focus.
func (e *Engine) SetFocusedScene(id string) error {
	return e.scenes.SetFocused(id)
}

// FocusedScene returns the scene currently holding focus.
func (e *Engine) FocusedScene() string {
	return e.scenes.Focused()
}

// SetCameraScale records the camera scale reported by the zoom subsystem.
func (e *Engine) SetCameraScale(scale float64) {
	e.cameraScale = scale
}

// AddEntity registers a gameplay entity and spawns its light element.
func (e *Engine) AddEntity(ent priority.Entity, pos light.Vec2, col colorful.Color, falloff float64) error {
	errFactory := errors.New()

	if ent.ID == "" {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "entity id must not be empty")
	}
	if _, ok := e.entities[ent.ID]; ok {
		return errFactory.WithData(errors.ErrDuplicateEntity, ent.ID)
	}
	if _, ok := e.scenes.Get(ent.Scene); !ok {
		return errFactory.WithData(errors.ErrUnknownScene, ent.Scene)
	}

	e.entities[ent.ID] = &ent
	e.elements[ent.ID] = &light.Element{
		ID:      light.ID(ent.ID),
		Owner:   ent.ID,
		Pos:     pos,
		Color:   col,
		Falloff: falloff,
	}
	e.order = append(e.order, ent.ID)

	return nil
}

// RemoveEntity drops an entity and the light element tied to its lifetime.
func (e *Engine) RemoveEntity(id string) {
	if _, ok := e.entities[id]; !ok {
		return
	}

	delete(e.entities, id)
	delete(e.elements, id)
	delete(e.tiers, id)
	for i, other := range e.order {
		if other == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// SetSelected flips an entity's selection flag.
func (e *Engine) SetSelected(id string, selected bool) error {
	ent, ok := e.entities[id]
	if !ok {
		return errors.New().WithData(errors.ErrUnknownEntity, id)
	}

	ent.Selected = selected

	return nil
}

// SetHealth updates an entity's health pair. Out-of-range values are
// clamped by the classifier, not rejected here.
func (e *Engine) SetHealth(id string, health, maxHealth float64) error {
	ent, ok := e.entities[id]
	if !ok {
		return errors.New().WithData(errors.ErrUnknownEntity, id)
	}

	ent.Health = health
	ent.MaxHealth = maxHealth

	return nil
}

// MoveEntity repositions an entity's light element.
func (e *Engine) MoveEntity(id string, pos light.Vec2) error {
	el, ok := e.elements[id]
	if !ok {
		return errors.New().WithData(errors.ErrUnknownEntity, id)
	}

	el.Pos = pos

	return nil
}

// ScheduleHazard creates the telegraph for an announced hazard. driver is
// the entity performing the attack and may be empty for environmental
// hazards.
func (e *Engine) ScheduleHazard(id, driver string, cfg telegraph.Config) error {
	errFactory := errors.New()

	if id == "" {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "hazard id must not be empty")
	}
	if _, ok := e.hazards[id]; ok {
		return errFactory.WithData(errors.ErrInvalidOperation, id)
	}

	e.hazards[id] = telegraph.New(id, cfg)
	if driver != "" {
		e.drivers[id] = driver
		if ent, ok := e.entities[driver]; ok {
			ent.DrivesHazard = true
		}
	}

	e.log.Debug().
		Str("hazard", id).
		Str("driver", driver).
		Str("shape", cfg.Shape.Kind.String()).
		Str("damage", cfg.Damage.String()).
		Msg("Hazard telegraph scheduled")

	return nil
}

// CancelHazard removes a telegraph before it runs to completion.
func (e *Engine) CancelHazard(id string) error {
	if _, ok := e.hazards[id]; !ok {
		return errors.New().WithData(errors.ErrUnknownHazard, id)
	}

	e.dropHazard(id)

	return nil
}

// dropHazard removes a telegraph and releases its driver's flag once no
// other live hazard is attributed to that entity.
func (e *Engine) dropHazard(id string) {
	driver := e.drivers[id]
	delete(e.hazards, id)
	delete(e.drivers, id)

	if driver == "" {
		return
	}
	for _, other := range e.drivers {
		if other == driver {
			return
		}
	}
	if ent, ok := e.entities[driver]; ok {
		ent.DrivesHazard = false
	}
}

// Tier returns the tier the last tick assigned to an entity.
func (e *Engine) Tier(id string) (priority.Tier, bool) {
	t, ok := e.tiers[id]
	return t, ok
}

// Quality returns the governor's current level.
func (e *Engine) Quality() governor.QualityLevel {
	return e.governor.Level()
}

// Mode returns the zoom mode for the current camera scale.
func (e *Engine) Mode() zoom.Mode {
	return e.adapter.Mode(e.cameraScale)
}

// Stats returns the summary of the last completed tick.
func (e *Engine) Stats() Stats {
	return e.stats
}
