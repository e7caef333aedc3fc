package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/assets"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/physics"
	"go.uber.org/zap"
)

// SessionClockSystem stamps the session with the tick number and elapsed time.
type SessionClockSystem struct {
	Session ecs.Singleton[Session]
}

func (s *SessionClockSystem) Execute(frame *ecs.UpdateFrame) {
	session := s.Session.Get()
	session.Tick = frame.Tick
	session.Elapsed += frame.DeltaTime
}

// SteeringSystem turns the ship's steering input into body velocity.
// A defeated ship stops.
type SteeringSystem struct {
	Ships ecs.Query[struct {
		*Ship
		*Steering
		*Collider
	}]

	Speed  float64
	Spin   float64
	Engine physics.Engine
	Logger *zap.Logger
}

func (s *SteeringSystem) Execute(frame *ecs.UpdateFrame) {
	for ship := range s.Ships.Values() {
		input := mgl64.Clamp(ship.Steering.Input, -1, 1)
		if ship.Ship.Defeated {
			input = 0
		}
		if err := s.Engine.SetVelocity(ship.Collider.Handle, mgl64.Vec2{s.Speed * input, 0}, -s.Spin*input); err != nil {
			s.Logger.Warn("steer ship", zap.Uint64("tick", frame.Tick), zap.Error(err))
		}
	}
}

// PhysicsStepSystem advances the physics engine by the frame time.
type PhysicsStepSystem struct {
	Engine physics.Engine
}

func (s *PhysicsStepSystem) Execute(frame *ecs.UpdateFrame) {
	s.Engine.Step(frame.DeltaTime)
}

// PoseSyncSystem copies collider poses into Transform.
type PoseSyncSystem struct {
	Bodies ecs.Query[struct {
		*Transform
		*Collider
	}]

	Engine physics.Engine
}

func (s *PoseSyncSystem) Execute(*ecs.UpdateFrame) {
	for body := range s.Bodies.Values() {
		if pose, ok := s.Engine.Pose(body.Collider.Handle); ok {
			body.Transform.Position = pose.Position
			body.Transform.Angle = pose.Angle
		}
	}
}

// AutopilotSystem steers the ship away from the nearest cuboid heading its way.
// It stands in for keyboard input in headless sessions.
type AutopilotSystem struct {
	Ships ecs.Query[struct {
		*Ship
		*Steering
		*Transform
	}]
	Cuboids ecs.Query[struct {
		*Cuboid
		*Transform
	}]

	// Lookahead is how far above the ship cuboids are considered threats.
	Lookahead float64
}

func (s *AutopilotSystem) Execute(*ecs.UpdateFrame) {
	for ship := range s.Ships.Values() {
		ship.Steering.Input = s.steer(ship.Transform.Position)
	}
}

func (s *AutopilotSystem) steer(ship mgl64.Vec2) float64 {
	nearest := math.Inf(1)
	input := 0.0
	for cuboid := range s.Cuboids.Values() {
		delta := cuboid.Transform.Position.Sub(ship)
		if delta.Y() < 0 || delta.Y() > s.Lookahead {
			continue
		}
		reach := 0.5 * (float64(cuboid.Cuboid.Size)*assets.CuboidMeshSize + assets.ShipSize)
		if math.Abs(delta.X()) > reach {
			continue
		}
		if d := delta.Len(); d < nearest {
			nearest = d
			input = 1
			if delta.X() > 0 {
				input = -1
			}
		}
	}
	return input
}
