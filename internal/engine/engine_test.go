package engine_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/lightctl/internal/engine"
	"codeberg.org/mutker/lightctl/internal/governor"
	"codeberg.org/mutker/lightctl/internal/light"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/scene"
	"codeberg.org/mutker/lightctl/internal/telegraph"
	"codeberg.org/mutker/lightctl/internal/zoom"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nominalFrame = 16670 * time.Microsecond
	heavyFrame   = 100 * time.Millisecond
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()

	e := engine.New(engine.Options{
		Cooldown:      governor.DefaultCooldown,
		FocusedScale:  zoom.DefaultFocusedScale,
		OverviewScale: zoom.DefaultOverviewScale,
	})

	require.NoError(t, e.AddScene(scene.Profile{
		ID: "atrium", Center: light.Vec2{X: 400, Y: 300},
		Intensity: 500, FocusedMultiplier: 1.0, OverviewMultiplier: 0.7,
	}))
	require.NoError(t, e.AddScene(scene.Profile{
		ID: "reactor", Center: light.Vec2{X: 1400, Y: 300},
		Intensity: 550, FocusedMultiplier: 1.0, OverviewMultiplier: 0.6,
	}))

	col := colorful.Color{R: 1, G: 0.9, B: 0.7}
	require.NoError(t, e.AddEntity(priority.Entity{ID: "warden", Scene: "atrium", Health: 100, MaxHealth: 100}, light.Vec2{X: 380, Y: 280}, col, 80))
	require.NoError(t, e.AddEntity(priority.Entity{ID: "scribe", Scene: "atrium", Health: 100, MaxHealth: 100}, light.Vec2{X: 440, Y: 330}, col, 80))
	require.NoError(t, e.AddEntity(priority.Entity{ID: "keeper", Scene: "reactor", Health: 100, MaxHealth: 100}, light.Vec2{X: 1410, Y: 320}, col, 80))
	require.NoError(t, e.SetSelected("warden", true))

	return e
}

func findEmission(ems []light.Emission, id light.ID) (light.Emission, bool) {
	for _, em := range ems {
		if em.ID == id {
			return em, true
		}
	}

	return light.Emission{}, false
}

func countByOwnerPrefix(ems []light.Emission, prefix string) int {
	n := 0
	for _, em := range ems {
		if len(em.ID) >= len(prefix) && string(em.ID[:len(prefix)]) == prefix {
			n++
		}
	}

	return n
}

// drainToEmergency feeds heavy frames until the governor bottoms out,
// returning the cycle time reached.
func drainToEmergency(t *testing.T, e *engine.Engine) float64 {
	t.Helper()

	cycle := 0.0
	for i := 0; i < 240; i++ {
		cycle += 0.1
		e.Tick(heavyFrame, cycle, true)
	}
	require.Equal(t, governor.Emergency, e.Quality())

	return cycle
}

func TestColdStartHoldsUltra(t *testing.T) {
	e := newTestEngine(t)

	var stats engine.Stats
	for i := 0; i < 30; i++ {
		e.Tick(heavyFrame, float64(i)/60, true)
		stats = e.Stats()
	}

	assert.Equal(t, governor.Ultra, stats.Quality)
	assert.False(t, stats.AvgFrameOK)
}

func TestSustainedOverloadDegradesQuality(t *testing.T) {
	e := newTestEngine(t)

	cycle := 0.0
	for i := 0; i < 70; i++ {
		cycle += 0.1
		e.Tick(heavyFrame, cycle, true)
	}

	// One step down once the window fills, not a plunge.
	assert.Equal(t, governor.High, e.Quality())

	drainToEmergency(t, e)
}

func TestRecoveryPromotesStepwise(t *testing.T) {
	e := newTestEngine(t)
	cycle := drainToEmergency(t, e)

	for i := 0; i < 240; i++ {
		cycle += 0.1
		e.Tick(8*time.Millisecond, cycle, true)
	}

	assert.Equal(t, governor.Ultra, e.Quality())
}

func TestSelectedStaysVisibleUnderEmergency(t *testing.T) {
	e := newTestEngine(t)
	cycle := drainToEmergency(t, e)

	for _, scale := range []float64{zoom.DefaultFocusedScale, zoom.DefaultOverviewScale} {
		e.SetCameraScale(scale)
		cycle += 0.1
		ems := e.Tick(heavyFrame, cycle, true)

		em, ok := findEmission(ems, "warden")
		require.True(t, ok, "selected entity shed at scale %.2f", scale)
		assert.Greater(t, em.Intensity, 0.0)
		// The override recolors the forced light white.
		assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, em.Color)
		assert.Greater(t, e.Stats().Overrides, 0)
	}
}

func TestCriticalHealthStaysVisibleUnderEmergency(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.SetHealth("keeper", 10, 100))
	cycle := drainToEmergency(t, e)

	cycle += 0.1
	ems := e.Tick(heavyFrame, cycle, true)

	tier, ok := e.Tier("keeper")
	require.True(t, ok)
	assert.Equal(t, priority.CriticalHealth, tier)

	em, ok := findEmission(ems, "keeper")
	require.True(t, ok)
	assert.Greater(t, em.Intensity, 0.0)
	assert.Equal(t, 1.0, em.Color.R)
}

func TestAmbientEntitiesShedUnderPressure(t *testing.T) {
	e := newTestEngine(t)
	cycle := drainToEmergency(t, e)

	cycle += 0.1
	ems := e.Tick(heavyFrame, cycle, true)

	// keeper sits in a background scene with full health: ambient, shed.
	_, ok := findEmission(ems, "keeper")
	assert.False(t, ok)
}

func TestEntityValidation(t *testing.T) {
	e := newTestEngine(t)
	col := colorful.Color{R: 1, G: 1, B: 1}

	assert.Error(t, e.AddEntity(priority.Entity{ID: "", Scene: "atrium"}, light.Vec2{}, col, 80))
	assert.Error(t, e.AddEntity(priority.Entity{ID: "warden", Scene: "atrium"}, light.Vec2{}, col, 80))
	assert.Error(t, e.AddEntity(priority.Entity{ID: "ghost", Scene: "basement"}, light.Vec2{}, col, 80))

	assert.Error(t, e.SetSelected("nobody", true))
	assert.Error(t, e.SetHealth("nobody", 50, 100))
	assert.Error(t, e.MoveEntity("nobody", light.Vec2{}))
	assert.Error(t, e.SetFocusedScene("basement"))
}

func TestRemoveEntityDropsItsLight(t *testing.T) {
	e := newTestEngine(t)

	e.RemoveEntity("scribe")
	ems := e.Tick(nominalFrame, 0.1, true)

	_, ok := findEmission(ems, "scribe")
	assert.False(t, ok)
	assert.Equal(t, 2, e.Stats().Entities)
}

func TestHazardLifecycle(t *testing.T) {
	e := newTestEngine(t)

	cfg := telegraph.Config{
		Shape:     telegraph.CircleShape(light.Vec2{X: 400, Y: 300}, 60),
		Damage:    telegraph.Fire,
		Start:     0.5,
		Buildup:   0.5,
		Warning:   0.5,
		Danger:    0.5,
		Execution: 0.5,
	}
	require.NoError(t, e.ScheduleHazard("haz-1", "keeper", cfg))
	assert.Error(t, e.ScheduleHazard("haz-1", "keeper", cfg), "duplicate hazard id")

	// Before Start the telegraph is idle and dark.
	ems := e.Tick(nominalFrame, 0.1, true)
	assert.Equal(t, 0, countByOwnerPrefix(ems, "haz-1/"))
	assert.Equal(t, 1, e.Stats().ActiveHazards)

	// The driver is promoted while its hazard is live.
	tier, ok := e.Tier("keeper")
	require.True(t, ok)
	assert.Equal(t, priority.ActiveHazard, tier)

	// Mid-warning the danger geometry is lit.
	ems = e.Tick(nominalFrame, 1.2, true)
	assert.Greater(t, countByOwnerPrefix(ems, "haz-1/"), 0)

	// Past the end of Execution the telegraph is destroyed and the driver
	// demoted back.
	ems = e.Tick(nominalFrame, 3.0, true)
	assert.Equal(t, 0, countByOwnerPrefix(ems, "haz-1/"))
	assert.Equal(t, 0, e.Stats().ActiveHazards)

	// The classifier sees the released driver flag on the next tick.
	e.Tick(nominalFrame, 3.1, true)
	tier, ok = e.Tier("keeper")
	require.True(t, ok)
	assert.Equal(t, priority.Ambient, tier)
}

func TestCancelHazardReleasesDriverWhenLastOne(t *testing.T) {
	e := newTestEngine(t)

	cfg := telegraph.Config{
		Shape:   telegraph.PointShape(light.Vec2{X: 10, Y: 10}),
		Damage:  telegraph.Frost,
		Start:   0.5,
		Buildup: 2.0,
	}
	require.NoError(t, e.ScheduleHazard("haz-1", "keeper", cfg))
	require.NoError(t, e.ScheduleHazard("haz-2", "keeper", cfg))

	require.NoError(t, e.CancelHazard("haz-1"))
	e.Tick(nominalFrame, 0.1, true)
	tier, _ := e.Tier("keeper")
	assert.Equal(t, priority.ActiveHazard, tier, "driver released while a hazard is still live")

	require.NoError(t, e.CancelHazard("haz-2"))
	assert.Error(t, e.CancelHazard("haz-2"))
	e.Tick(nominalFrame, 0.2, true)
	tier, _ = e.Tier("keeper")
	assert.Equal(t, priority.Ambient, tier)
}

func TestMissingCycleTimerSilencesHazards(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.ScheduleHazard("haz-1", "", telegraph.Config{
		Shape:   telegraph.PointShape(light.Vec2{X: 10, Y: 10}),
		Damage:  telegraph.Arcane,
		Start:   0.0,
		Buildup: 10.0,
	}))

	ems := e.Tick(nominalFrame, 1.0, false)
	assert.Equal(t, 0, countByOwnerPrefix(ems, "haz-1/"))

	// Entity lighting is unaffected by the timer outage.
	_, ok := findEmission(ems, "warden")
	assert.True(t, ok)

	// The telegraph stays dark even after the timer recovers.
	ems = e.Tick(nominalFrame, 2.0, true)
	assert.Equal(t, 0, countByOwnerPrefix(ems, "haz-1/"))
}

func TestSceneAmbientFollowsFocus(t *testing.T) {
	e := newTestEngine(t)

	ems := e.Tick(nominalFrame, 0.1, true)

	focused, ok := findEmission(ems, "scene/atrium")
	require.True(t, ok)
	assert.InDelta(t, 500.0, focused.Intensity, 1e-9)

	background, ok := findEmission(ems, "scene/reactor")
	require.True(t, ok)
	assert.InDelta(t, 550.0*0.15, background.Intensity, 1e-9)

	require.NoError(t, e.SetFocusedScene("reactor"))
	ems = e.Tick(nominalFrame, 0.2, true)

	focused, ok = findEmission(ems, "scene/reactor")
	require.True(t, ok)
	assert.InDelta(t, 550.0, focused.Intensity, 1e-9)
}

func TestOverviewBoostsSelected(t *testing.T) {
	e := newTestEngine(t)

	ems := e.Tick(nominalFrame, 0.1, true)
	focusedEm, ok := findEmission(ems, "warden")
	require.True(t, ok)

	e.SetCameraScale(zoom.DefaultOverviewScale)
	ems = e.Tick(nominalFrame, 0.2, true)
	overviewEm, ok := findEmission(ems, "warden")
	require.True(t, ok)

	assert.Equal(t, zoom.Overview, e.Mode())
	assert.Greater(t, overviewEm.Intensity, focusedEm.Intensity)
}

func TestEmissionsNeverExceedMaxIntensity(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.ScheduleHazard("haz-1", "keeper", telegraph.Config{
		Shape:     telegraph.CircleShape(light.Vec2{X: 400, Y: 300}, 120),
		Damage:    telegraph.Fire,
		Start:     0.0,
		Buildup:   1.0,
		Warning:   1.0,
		Danger:    1.0,
		Execution: 1.0,
	}))
	e.SetCameraScale(zoom.DefaultOverviewScale)

	cycle := 0.0
	for i := 0; i < 80; i++ {
		cycle += 0.05
		for _, em := range e.Tick(nominalFrame, cycle, true) {
			assert.LessOrEqual(t, em.Intensity, light.MaxIntensity)
			assert.GreaterOrEqual(t, em.Intensity, 0.0)
		}
	}
}
