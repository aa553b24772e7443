package allocator_test

import (
	"testing"

	"codeberg.org/mutker/lightctl/internal/allocator"
	"codeberg.org/mutker/lightctl/internal/governor"
	"codeberg.org/mutker/lightctl/internal/priority"
	"codeberg.org/mutker/lightctl/internal/scene"
	"codeberg.org/mutker/lightctl/internal/zoom"
	"github.com/stretchr/testify/assert"
)

var (
	allQualities = []governor.QualityLevel{
		governor.Ultra, governor.High, governor.Low, governor.Emergency,
	}
	allModes = []zoom.Mode{zoom.Focused, zoom.Overview}
)

func TestSelectedAndCriticalNeverShed(t *testing.T) {
	for _, q := range allQualities {
		for _, m := range allModes {
			sel := allocator.Decide(q, m, priority.Selected)
			assert.True(t, sel.Lit, "selected off at %s/%s", q, m)
			assert.Greater(t, sel.Scale, 0.0)

			crit := allocator.Decide(q, m, priority.CriticalHealth)
			assert.True(t, crit.Lit, "critical off at %s/%s", q, m)
			assert.Greater(t, crit.Scale, 0.0)
		}
	}
}

func TestHazardScaleDegradesButNeverZeroes(t *testing.T) {
	prev := 1.1
	for _, q := range []governor.QualityLevel{governor.Ultra, governor.High, governor.Low, governor.Emergency} {
		s := allocator.HazardScale(q)
		assert.Greater(t, s, 0.0, "hazard fully shed at %s", q)
		assert.Less(t, s, prev, "hazard scale should fall with quality")
		prev = s
	}

	for _, q := range allQualities {
		for _, m := range allModes {
			d := allocator.Decide(q, m, priority.ActiveHazard)
			assert.True(t, d.Lit)
			assert.Equal(t, allocator.HazardScale(q), d.Scale)
		}
	}
}

func TestStrategicContextShedsFirst(t *testing.T) {
	// Fully lit only at the top, off at Emergency in both modes.
	assert.Equal(t, allocator.Decision{Lit: true, Scale: 1.0},
		allocator.Decide(governor.Ultra, zoom.Focused, priority.StrategicContext))

	for _, m := range allModes {
		d := allocator.Decide(governor.Emergency, m, priority.StrategicContext)
		assert.False(t, d.Lit, "strategic lit at emergency/%s", m)
	}

	// Overview sheds earlier than focused.
	focusedLow := allocator.Decide(governor.Low, zoom.Focused, priority.StrategicContext)
	overviewLow := allocator.Decide(governor.Low, zoom.Overview, priority.StrategicContext)
	assert.True(t, focusedLow.Lit)
	assert.False(t, overviewLow.Lit)
}

func TestAmbientIsCheapestTier(t *testing.T) {
	for _, q := range allQualities {
		for _, m := range allModes {
			amb := allocator.Decide(q, m, priority.Ambient)
			strat := allocator.Decide(q, m, priority.StrategicContext)
			if amb.Lit {
				assert.True(t, strat.Lit, "ambient lit while strategic shed at %s/%s", q, m)
				assert.LessOrEqual(t, amb.Scale, strat.Scale)
			}
		}
	}

	assert.False(t, allocator.Decide(governor.Low, zoom.Focused, priority.Ambient).Lit)
	assert.False(t, allocator.Decide(governor.Emergency, zoom.Overview, priority.Ambient).Lit)
}

func TestSceneAmbientOverviewCollapsesTowardFocused(t *testing.T) {
	p := scene.Profile{ID: "atrium", FocusedMultiplier: 1.0, OverviewMultiplier: 0.7}

	// Ultra/High light every scene, scaled by the overview multiplier.
	d := allocator.SceneAmbient(governor.Ultra, zoom.Overview, p, false)
	assert.True(t, d.Lit)
	assert.InDelta(t, 0.7, d.Scale, 1e-9)

	d = allocator.SceneAmbient(governor.High, zoom.Overview, p, false)
	assert.True(t, d.Lit)
	assert.InDelta(t, 0.7*0.75, d.Scale, 1e-9)

	// At Low only the focused scene keeps ambiance.
	assert.True(t, allocator.SceneAmbient(governor.Low, zoom.Overview, p, true).Lit)
	assert.False(t, allocator.SceneAmbient(governor.Low, zoom.Overview, p, false).Lit)

	// Emergency drops scene ambiance entirely.
	assert.False(t, allocator.SceneAmbient(governor.Emergency, zoom.Overview, p, true).Lit)
}

func TestSceneAmbientFocusedMode(t *testing.T) {
	p := scene.Profile{ID: "reactor", FocusedMultiplier: 0.9, OverviewMultiplier: 0.6}

	d := allocator.SceneAmbient(governor.Ultra, zoom.Focused, p, true)
	assert.True(t, d.Lit)
	assert.InDelta(t, 0.9, d.Scale, 1e-9)

	d = allocator.SceneAmbient(governor.Low, zoom.Focused, p, true)
	assert.True(t, d.Lit)
	assert.InDelta(t, 0.45, d.Scale, 1e-9)

	// Background scenes are a dim wash at Ultra and gone below.
	d = allocator.SceneAmbient(governor.Ultra, zoom.Focused, p, false)
	assert.True(t, d.Lit)
	assert.InDelta(t, 0.9*0.15, d.Scale, 1e-9)
	assert.False(t, allocator.SceneAmbient(governor.High, zoom.Focused, p, false).Lit)
}
