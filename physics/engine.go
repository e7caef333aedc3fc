// Package physics defines the rigid-body engine the game drives and a
// Chipmunk2D-backed implementation of it.
package physics

import "github.com/go-gl/mathgl/mgl64"

// Engine is the contract between the game and a 2D physics world.
//
// Events are queued while Step runs (and while colliders are removed) and stay
// queued until drained. Each queue is in production order, and Seq orders events
// across the two queues.
type Engine interface {
	// Insert creates a body with one collider attached and returns the collider's handle.
	Insert(body BodyDesc, collider ColliderDesc) (Handle, error)
	// Remove destroys the collider and its body. Removing a dead handle returns false.
	Remove(h Handle) bool
	Step(dt float64)

	DrainContactEvents() []ContactEvent
	DrainProximityEvents() []ProximityEvent

	// UserData returns the collider's user data, or false when h is not live.
	UserData(h Handle) (uint64, bool)
	Pose(h Handle) (Pose, bool)
	SetVelocity(h Handle, linear mgl64.Vec2, angular float64) error
	// Len returns the number of live colliders.
	Len() int
}
