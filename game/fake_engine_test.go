package game_test

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/physics"
)

type fakeCollider struct {
	body     physics.BodyDesc
	collider physics.ColliderDesc
	angular  float64
}

// fakeEngine is a scripted physics.Engine: tests queue the events the next
// drain returns.
type fakeEngine struct {
	next      physics.Handle
	colliders map[physics.Handle]*fakeCollider
	seq       uint64
	contacts  []physics.ContactEvent
	proximity []physics.ProximityEvent

	steps   []float64
	removed []physics.Handle
}

var _ physics.Engine = (*fakeEngine)(nil)

func newFakeEngine() *fakeEngine {
	return &fakeEngine{colliders: make(map[physics.Handle]*fakeCollider)}
}

func (e *fakeEngine) Insert(body physics.BodyDesc, collider physics.ColliderDesc) (physics.Handle, error) {
	if err := collider.Validate(); err != nil {
		return 0, err
	}
	e.next++
	e.colliders[e.next] = &fakeCollider{body: body, collider: collider}
	return e.next, nil
}

func (e *fakeEngine) Remove(h physics.Handle) bool {
	if _, ok := e.colliders[h]; !ok {
		return false
	}
	delete(e.colliders, h)
	e.removed = append(e.removed, h)
	return true
}

func (e *fakeEngine) Step(dt float64) {
	e.steps = append(e.steps, dt)
	for _, c := range e.colliders {
		if c.body.Kind != physics.Static {
			c.body.Position = c.body.Position.Add(c.body.Velocity.Mul(dt))
			c.body.Angle += c.angular * dt
		}
	}
}

func (e *fakeEngine) DrainContactEvents() []physics.ContactEvent {
	events := e.contacts
	e.contacts = nil
	return events
}

func (e *fakeEngine) DrainProximityEvents() []physics.ProximityEvent {
	events := e.proximity
	e.proximity = nil
	return events
}

func (e *fakeEngine) UserData(h physics.Handle) (uint64, bool) {
	c, ok := e.colliders[h]
	if !ok {
		return 0, false
	}
	return c.collider.UserData, true
}

func (e *fakeEngine) Pose(h physics.Handle) (physics.Pose, bool) {
	c, ok := e.colliders[h]
	if !ok {
		return physics.Pose{}, false
	}
	return physics.Pose{Position: c.body.Position, Angle: c.body.Angle}, true
}

func (e *fakeEngine) SetVelocity(h physics.Handle, linear mgl64.Vec2, angular float64) error {
	c, ok := e.colliders[h]
	if !ok {
		return physics.ErrUnknownHandle
	}
	c.body.Velocity = linear
	c.angular = angular
	return nil
}

func (e *fakeEngine) Len() int {
	return len(e.colliders)
}

func (e *fakeEngine) contact(status physics.ContactStatus, a, b physics.Handle) {
	e.seq++
	e.contacts = append(e.contacts, physics.ContactEvent{Seq: e.seq, Status: status, A: a, B: b})
}

func (e *fakeEngine) intersect(a, b physics.Handle) {
	e.proximityChange(physics.Disjoint, physics.Intersecting, a, b)
}

func (e *fakeEngine) proximityChange(prev, status physics.ProximityStatus, a, b physics.Handle) {
	e.seq++
	e.proximity = append(e.proximity, physics.ProximityEvent{Seq: e.seq, Previous: prev, Status: status, A: a, B: b})
}
