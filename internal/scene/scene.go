// Package scene holds the static per-scene lighting profiles and tracks
// which scene currently has camera focus.
package scene

import (
	"codeberg.org/mutker/lightctl/internal/errors"
	"codeberg.org/mutker/lightctl/internal/light"
	"github.com/lucasb-eyer/go-colorful"
)

// Profile is the read-only lighting configuration of one scene, set once
// when the scene is initialized.
type Profile struct {
	ID        string
	Center    light.Vec2
	Color     colorful.Color
	Intensity float64
	// Fixed mode multipliers applied to Intensity.
	FocusedMultiplier  float64
	OverviewMultiplier float64
}

// Registry indexes scene profiles and the focused scene.
type Registry struct {
	profiles map[string]Profile
	order    []string
	focused  string
}

func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// Add registers a scene profile. The first registered scene becomes the
// focused scene until SetFocused says otherwise.
func (r *Registry) Add(p Profile) error {
	errFactory := errors.New()

	if p.ID == "" {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "scene id must not be empty")
	}
	if _, ok := r.profiles[p.ID]; ok {
		return errFactory.WithData(errors.ErrDuplicateScene, p.ID)
	}

	r.profiles[p.ID] = p
	r.order = append(r.order, p.ID)
	if r.focused == "" {
		r.focused = p.ID
	}

	return nil
}

// Get returns the profile for a scene ID.
func (r *Registry) Get(id string) (Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// IDs returns all scene IDs in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)

	return ids
}

// SetFocused switches camera focus to the given scene.
func (r *Registry) SetFocused(id string) error {
	if _, ok := r.profiles[id]; !ok {
		return errors.New().WithData(errors.ErrUnknownScene, id)
	}

	r.focused = id

	return nil
}

// Focused returns the ID of the scene currently holding camera focus.
func (r *Registry) Focused() string {
	return r.focused
}
