package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
)

// colliderType is shared by every shape so one handler sees every pair.
const colliderType cp.CollisionType = 1

type colliderData struct {
	handle Handle
	user   uint64
}

// Space is an Engine backed by a Chipmunk2D space with zero gravity.
// Each collider gets its own body. Remove and Insert must not be called from
// inside Step.
type Space struct {
	space     *cp.Space
	colliders *intmap.Map[Handle, *cp.Shape]
	next      Handle
	seq       uint64

	contacts  []ContactEvent
	proximity []ProximityEvent
}

var _ Engine = (*Space)(nil)

func NewSpace() *Space {
	s := &Space{
		space:     cp.NewSpace(),
		colliders: intmap.New[Handle, *cp.Shape](256),
	}
	s.space.SetGravity(cp.Vector{})

	handler := s.space.NewCollisionHandler(colliderType, colliderType)
	handler.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		s.record(arb, true)
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
		s.record(arb, false)
	}
	return s
}

func (s *Space) record(arb *cp.Arbiter, begin bool) {
	shapeA, shapeB := arb.Shapes()
	a, okA := shapeA.UserData.(*colliderData)
	b, okB := shapeB.UserData.(*colliderData)
	if !okA || !okB {
		return
	}

	s.seq++
	if shapeA.Sensor() || shapeB.Sensor() {
		ev := ProximityEvent{Seq: s.seq, Previous: Intersecting, Status: Disjoint, A: a.handle, B: b.handle}
		if begin {
			ev.Previous, ev.Status = Disjoint, Intersecting
		}
		s.proximity = append(s.proximity, ev)
		return
	}

	ev := ContactEvent{Seq: s.seq, Status: ContactStopped, A: a.handle, B: b.handle}
	if begin {
		ev.Status = ContactStarted
	}
	s.contacts = append(s.contacts, ev)
}

func (s *Space) Insert(body BodyDesc, collider ColliderDesc) (Handle, error) {
	if err := collider.Validate(); err != nil {
		return 0, err
	}

	width, height := 2*collider.HalfExtents.X(), 2*collider.HalfExtents.Y()

	var b *cp.Body
	switch body.Kind {
	case Static:
		b = cp.NewStaticBody()
	case Kinematic:
		b = cp.NewKinematicBody()
	case Dynamic:
		density := collider.Density
		if density == 0 {
			density = 1
		}
		mass := density * width * height
		b = cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	default:
		return 0, fmt.Errorf("physics: unsupported body kind %v", body.Kind)
	}

	b.UserData = body.UserData
	b.SetPosition(cp.Vector{X: body.Position.X(), Y: body.Position.Y()})
	b.SetAngle(body.Angle)
	s.space.AddBody(b)
	if body.Kind != Static {
		b.SetVelocity(body.Velocity.X(), body.Velocity.Y())
		b.SetAngularVelocity(body.AngularVelocity)
	}

	h := s.nextHandle()
	shape := cp.NewBox(b, width, height, 0)
	shape.UserData = &colliderData{handle: h, user: collider.UserData}
	shape.SetCollisionType(colliderType)
	shape.SetSensor(collider.Sensor)
	shape.SetElasticity(collider.Restitution)
	shape.SetFriction(collider.Friction)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(collider.Groups.Memberships), uint(collider.Groups.Filter)))
	s.space.AddShape(shape)

	s.colliders.Put(h, shape)
	return h, nil
}

func (s *Space) nextHandle() Handle {
	for {
		s.next++
		if s.next != 0 && !s.colliders.Has(s.next) {
			return s.next
		}
	}
}

// Remove destroys the collider and its body. Contacts the collider was part of
// are reported as stopped.
func (s *Space) Remove(h Handle) bool {
	shape, ok := s.colliders.Get(h)
	if !ok {
		return false
	}
	body := shape.Body()
	s.space.RemoveShape(shape)
	s.space.RemoveBody(body)
	s.colliders.Del(h)
	return true
}

func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.space.Step(dt)
}

func (s *Space) DrainContactEvents() []ContactEvent {
	events := s.contacts
	s.contacts = nil
	return events
}

func (s *Space) DrainProximityEvents() []ProximityEvent {
	events := s.proximity
	s.proximity = nil
	return events
}

func (s *Space) UserData(h Handle) (uint64, bool) {
	shape, ok := s.colliders.Get(h)
	if !ok {
		return 0, false
	}
	return shape.UserData.(*colliderData).user, true
}

func (s *Space) Pose(h Handle) (Pose, bool) {
	shape, ok := s.colliders.Get(h)
	if !ok {
		return Pose{}, false
	}
	body := shape.Body()
	p := body.Position()
	return Pose{Position: mgl64.Vec2{p.X, p.Y}, Angle: body.Angle()}, true
}

// Velocity returns the linear and angular velocity of the collider's body.
func (s *Space) Velocity(h Handle) (mgl64.Vec2, float64, bool) {
	shape, ok := s.colliders.Get(h)
	if !ok {
		return mgl64.Vec2{}, 0, false
	}
	body := shape.Body()
	v := body.Velocity()
	return mgl64.Vec2{v.X, v.Y}, body.AngularVelocity(), true
}

func (s *Space) SetVelocity(h Handle, linear mgl64.Vec2, angular float64) error {
	shape, ok := s.colliders.Get(h)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	body := shape.Body()
	body.SetVelocity(linear.X(), linear.Y())
	body.SetAngularVelocity(angular)
	return nil
}

func (s *Space) Len() int {
	return s.colliders.Len()
}
