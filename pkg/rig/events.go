package rig

import "github.com/chazu/marrow/pkg/geom"

// EditEvent describes one user edit to a tracked attribute. The editing
// side is the source of truth for the edit; subscribers derive values
// from it but never publish in response.
type EditEvent struct {
	Module    ModuleID
	Class     AttributeClass
	NodeIndex int    // node edits; -1 for module-level
	Attribute string // scalar attribute name for ClassScalar
	Axis      geom.Axis
	Value     geom.Vec3
	Scalar    float64
}

// Bus is a synchronous single-threaded event bus for edit events.
// Derived writes (mirror propagation, rename rewrites) are applied
// directly to the peer instance and never republished; as a guard, a
// Publish issued while another event is being delivered is dropped, so
// one user edit can never cascade back into the same attribute.
type Bus struct {
	subs       []func(EditEvent)
	delivering bool
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all edit events.
func (b *Bus) Subscribe(fn func(EditEvent)) {
	b.subs = append(b.subs, fn)
}

// Publish delivers the event to every subscriber in order. Nested
// publishes are dropped.
func (b *Bus) Publish(ev EditEvent) {
	if b.delivering {
		return
	}
	b.delivering = true
	defer func() { b.delivering = false }()
	for _, fn := range b.subs {
		fn(ev)
	}
}
