package game

import (
	"errors"

	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/physics"
	"go.uber.org/zap"
)

type EventKind uint8

const (
	KindContact EventKind = iota
	KindProximity
)

func (k EventKind) String() string {
	if k == KindContact {
		return "contact"
	}
	return "proximity"
}

// CollisionEvent is a physics event addressed by entity. Contact is set for
// KindContact events; Previous and Proximity for KindProximity events.
// A or B is zero when that side has no live entity.
type CollisionEvent struct {
	Kind EventKind
	Seq  uint64

	Contact   physics.ContactStatus
	Previous  physics.ProximityStatus
	Proximity physics.ProximityStatus

	A, B             ecs.EntityId
	HandleA, HandleB physics.Handle
}

// ContactStarted reports a contact-start event.
func (e CollisionEvent) ContactStarted() bool {
	return e.Kind == KindContact && e.Contact == physics.ContactStarted
}

// BecameIntersecting reports a proximity event transitioning into overlap.
func (e CollisionEvent) BecameIntersecting() bool {
	return e.Kind == KindProximity && e.Proximity == physics.Intersecting && e.Previous != physics.Intersecting
}

// CollisionEvents holds the events of the current tick only.
type CollisionEvents struct {
	Tick   uint64
	Events []CollisionEvent
}

// Translate merges both queues into production order and resolves every handle.
// It stops at the first corrupt handle.
func (b *IdentityBridge) Translate(contacts []physics.ContactEvent, proximity []physics.ProximityEvent, out []CollisionEvent) ([]CollisionEvent, error) {
	i, j := 0, 0
	for i < len(contacts) || j < len(proximity) {
		var ev CollisionEvent
		if j >= len(proximity) || (i < len(contacts) && contacts[i].Seq < proximity[j].Seq) {
			c := contacts[i]
			i++
			ev = CollisionEvent{Kind: KindContact, Seq: c.Seq, Contact: c.Status, HandleA: c.A, HandleB: c.B}
		} else {
			p := proximity[j]
			j++
			ev = CollisionEvent{Kind: KindProximity, Seq: p.Seq, Previous: p.Previous, Proximity: p.Status, HandleA: p.A, HandleB: p.B}
		}

		var err error
		if ev.A, err = b.Resolve(ev.HandleA); err != nil {
			return out, err
		}
		if ev.B, err = b.Resolve(ev.HandleB); err != nil {
			return out, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// EventBridgeSystem drains the engine once per tick and publishes the resolved
// events in the CollisionEvents singleton, replacing the previous tick's events.
type EventBridgeSystem struct {
	Events ecs.Singleton[CollisionEvents]

	Engine physics.Engine
	Bridge *IdentityBridge
	Logger *zap.Logger
}

func (s *EventBridgeSystem) Execute(frame *ecs.UpdateFrame) {
	events := s.Events.Get()
	events.Tick = frame.Tick

	var err error
	events.Events, err = s.Bridge.Translate(s.Engine.DrainContactEvents(), s.Engine.DrainProximityEvents(), events.Events[:0])
	if err == nil {
		return
	}

	var corrupt *CorruptHandleError
	if errors.As(err, &corrupt) {
		s.Logger.Panic("identity bridge corrupted",
			zap.Uint32("handle", uint32(corrupt.Handle)),
			zap.Uint64("user_data", corrupt.UserData),
			zap.String("reason", corrupt.Reason),
			zap.Uint64("tick", frame.Tick))
	}
	s.Logger.Panic("translate physics events", zap.Uint64("tick", frame.Tick), zap.Error(err))
}
