package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidShape is returned by Insert for colliders with non-positive extents.
	ErrInvalidShape = errors.New("physics: invalid collider shape")
	// ErrUnknownHandle is returned when a handle does not name a live collider.
	ErrUnknownHandle = errors.New("physics: unknown collider handle")
)

// Handle identifies a collider inside one engine. Zero is never issued.
type Handle uint32

type BodyKind uint8

const (
	Dynamic BodyKind = iota
	Static
	Kinematic
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	}
	return fmt.Sprintf("BodyKind(%d)", uint8(k))
}

// Layer is a bit in an interaction group mask.
type Layer uint32

const (
	LayerCuboids Layer = 1 << iota
	LayerShip
	LayerWalls
	LayerTraps

	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)
)

// InteractionGroups decides which colliders may touch: two colliders interact
// when each one's memberships intersect the other's filter.
type InteractionGroups struct {
	Memberships Layer
	Filter      Layer
}

var (
	GroupsAll   = InteractionGroups{Memberships: LayerAll, Filter: LayerAll}
	GroupsWalls = InteractionGroups{Memberships: LayerWalls, Filter: LayerAll}
	GroupsTraps = InteractionGroups{Memberships: LayerTraps, Filter: LayerAll}
)

// Interacts reports whether colliders in groups g and o can generate events.
func (g InteractionGroups) Interacts(o InteractionGroups) bool {
	return g.Memberships&o.Filter != 0 && o.Memberships&g.Filter != 0
}

// BodyDesc describes the rigid body that carries a collider.
type BodyDesc struct {
	Kind            BodyKind
	Position        mgl64.Vec2
	Angle           float64
	Velocity        mgl64.Vec2
	AngularVelocity float64
	UserData        uint64
}

// ColliderDesc describes a box collider. Density only matters for dynamic bodies.
type ColliderDesc struct {
	HalfExtents mgl64.Vec2
	Restitution float64
	Friction    float64
	Density     float64
	Sensor      bool
	Groups      InteractionGroups
	UserData    uint64
}

// Validate checks the collider's shape parameters.
func (c ColliderDesc) Validate() error {
	if c.HalfExtents.X() <= 0 || c.HalfExtents.Y() <= 0 {
		return fmt.Errorf("%w: half extents %v", ErrInvalidShape, c.HalfExtents)
	}
	if c.Density < 0 {
		return fmt.Errorf("%w: density %v", ErrInvalidShape, c.Density)
	}
	return nil
}

// Pose is a body's position and rotation in radians.
type Pose struct {
	Position mgl64.Vec2
	Angle    float64
}

type ContactStatus uint8

const (
	ContactStarted ContactStatus = iota
	ContactStopped
)

func (s ContactStatus) String() string {
	if s == ContactStarted {
		return "started"
	}
	return "stopped"
}

type ProximityStatus uint8

const (
	Disjoint ProximityStatus = iota
	Intersecting
)

func (s ProximityStatus) String() string {
	if s == Intersecting {
		return "intersecting"
	}
	return "disjoint"
}

// ContactEvent reports two solid colliders starting or stopping contact.
// Seq orders events across both of an engine's queues.
type ContactEvent struct {
	Seq    uint64
	Status ContactStatus
	A, B   Handle
}

// ProximityEvent reports an overlap transition involving at least one sensor.
type ProximityEvent struct {
	Seq      uint64
	Previous ProximityStatus
	Status   ProximityStatus
	A, B     Handle
}
