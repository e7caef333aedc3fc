package game

import (
	"github.com/plus3/cuboids/ecs"
	"go.uber.org/zap"
)

// Rules tunes the rule systems.
type Rules struct {
	// ProtectStatic keeps traps and walls from being removed by traps.
	ProtectStatic bool `yaml:"protect_static"`
	// PointsPerDodge is awarded for every cuboid a trap removes.
	PointsPerDodge uint32 `yaml:"points_per_dodge"`
}

// ShipDamageSystem costs the ship a life for every cuboid that starts touching
// it this tick, and removes that cuboid. Hits are not debounced.
type ShipDamageSystem struct {
	Events  ecs.Singleton[CollisionEvents]
	Session ecs.Singleton[Session]

	Logger *zap.Logger
}

func (s *ShipDamageSystem) Execute(frame *ecs.UpdateFrame) {
	session := s.Session.Get()

	for _, ev := range s.Events.Get().Events {
		if !ev.ContactStarted() {
			continue
		}

		shipId, other := ev.A, ev.B
		ship := ecs.ReadComponent[Ship](frame.Storage, shipId)
		otherShip := ecs.ReadComponent[Ship](frame.Storage, other)
		if (ship == nil) == (otherShip == nil) {
			continue
		}
		if ship == nil {
			shipId, other, ship = other, shipId, otherShip
		}
		if ecs.ReadComponent[Cuboid](frame.Storage, other) == nil {
			continue
		}
		if ship.Defeated {
			continue
		}

		ship.Lives--
		session.Hits++
		frame.Commands.Delete(other)
		s.Logger.Debug("ship hit",
			zap.Uint64("ship", uint64(shipId)),
			zap.Uint64("cuboid", uint64(other)),
			zap.Uint8("lives", ship.Lives),
			zap.Uint64("tick", frame.Tick))

		if ship.Lives == 0 {
			ship.Defeated = true
			session.GameOver = true
			s.Logger.Info("ship defeated", zap.Uint64("ship", uint64(shipId)), zap.Uint64("tick", frame.Tick))
		}
	}
}

// TrapSystem removes whatever starts overlapping a trap. When two traps
// overlap each removes the other.
type TrapSystem struct {
	Events  ecs.Singleton[CollisionEvents]
	Session ecs.Singleton[Session]

	Rules  Rules
	Logger *zap.Logger
}

func (s *TrapSystem) Execute(frame *ecs.UpdateFrame) {
	for _, ev := range s.Events.Get().Events {
		if !ev.BecameIntersecting() {
			continue
		}
		s.removeIfTrap(frame, ev.A, ev.B)
		s.removeIfTrap(frame, ev.B, ev.A)
	}
}

func (s *TrapSystem) removeIfTrap(frame *ecs.UpdateFrame, trap, other ecs.EntityId) {
	if trap.IsZero() || other.IsZero() {
		return
	}
	if ecs.ReadComponent[Trap](frame.Storage, trap) == nil {
		return
	}
	if s.Rules.ProtectStatic && isStatic(frame.Storage, other) {
		return
	}
	if frame.Commands.DeleteQueued(other) {
		return
	}

	frame.Commands.Delete(other)
	if ecs.ReadComponent[Cuboid](frame.Storage, other) != nil {
		s.Session.Get().AddScore(s.Rules.PointsPerDodge)
	}
	s.Logger.Debug("trapped",
		zap.Uint64("trap", uint64(trap)),
		zap.Uint64("entity", uint64(other)),
		zap.Uint64("tick", frame.Tick))
}

func isStatic(storage *ecs.Storage, id ecs.EntityId) bool {
	return ecs.ReadComponent[Trap](storage, id) != nil || ecs.ReadComponent[Wall](storage, id) != nil
}
