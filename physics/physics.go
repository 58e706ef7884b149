// Package physics defines the small query interface the simulation core
// consumes from its rigid-body collaborator, plus a lightweight concrete
// implementation grounded on a uniform spatial grid. The core never stores
// anything but opaque Handles; body storage lives entirely in here.
package physics

import "github.com/Arti-Code/biosynth/common"

// Handle is an opaque identifier for a body registered with a Collaborator.
// Callers must never assume any structure to it beyond equality.
type Handle uint64

// Material describes the physical response of a body on contact:
// friction and restitution. Values are stored as given; Grid's overlap
// resolution does not read them.
type Material struct {
	Friction    float64
	Restitution float64
}

// DefaultMaterial is used by bodies that do not care about contact response.
var DefaultMaterial = Material{Friction: 0.4, Restitution: 0.1}

// ObjectState is a snapshot of a body's dynamic state.
type ObjectState struct {
	Position      common.Vec2
	Rotation      float64
	Mass          float64
	KineticEnergy float64
}

// Collaborator is the complete surface the simulation core depends on. It
// does not care how bodies are stored, broad/narrow phase is implemented,
// or how stepping integrates forces — only that these operations behave as
// documented.
type Collaborator interface {
	// AddDynamic registers a new circular dynamic body and returns its handle.
	AddDynamic(pos common.Vec2, rotation, radius float64, mat Material, groups common.GroupMask) Handle

	// Remove destroys a body. Removing an unknown handle is a no-op.
	Remove(handle Handle)

	// SetVelocityIntent latches the linear/angular velocity a body should
	// move with until the next Step. This is how the core's action intents
	// (step 3 of the agent tick) reach the collaborator; the base query
	// surface has no other way to influence body motion.
	SetVelocityIntent(handle Handle, linear common.Vec2, angular float64)

	// Step advances the simulation by dt, integrating velocities, resolving
	// overlaps, and refreshing the spatial index used by queries below.
	Step(dt float64)

	// ObjectState returns a body's full dynamic state. ok is false if the
	// handle is unknown (e.g. the body was removed earlier this tick).
	ObjectState(handle Handle) (state ObjectState, ok bool)

	// ObjectPosition is a convenience accessor equivalent to ObjectState
	// when only position is needed.
	ObjectPosition(handle Handle) (pos common.Vec2, ok bool)

	// ObjectSize returns a body's radius.
	ObjectSize(handle Handle) (radius float64, ok bool)

	// ClosestInCone finds the nearest body within range and half-angle of
	// the forward direction from the given body's position, restricted to
	// groupMask, excluding the body itself. Returns ok=false if none found.
	ClosestInCone(from Handle, rng, halfAngle float64, forward common.Vec2, groupMask common.Group) (Handle, bool)

	// ContactsWithin returns every other body whose shape overlaps a circle
	// of the given radius centred on handle's position.
	ContactsWithin(handle Handle, radius float64) []Handle
}
