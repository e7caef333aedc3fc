package game_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/game"
	"github.com/plus3/cuboids/physics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// rig wires the event bridge and rule systems to a fake engine.
type rig struct {
	t         *testing.T
	engine    *fakeEngine
	storage   *ecs.Storage
	bridge    *game.IdentityBridge
	scheduler *ecs.Scheduler
	session   *ecs.Singleton[game.Session]
}

func newRig(t *testing.T, rules game.Rules) *rig {
	registry := ecs.NewComponentRegistry()
	game.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)
	engine := newFakeEngine()
	logger := zaptest.NewLogger(t)

	r := &rig{
		t:         t,
		engine:    engine,
		storage:   storage,
		bridge:    game.NewIdentityBridge(engine, storage),
		scheduler: ecs.NewScheduler(storage),
		session:   ecs.NewSingleton(storage, game.NewSession(1)),
	}
	ecs.NewSingleton[game.CollisionEvents](storage)

	r.scheduler.Register(&game.EventBridgeSystem{Engine: engine, Bridge: r.bridge, Logger: logger})
	r.scheduler.Register(&game.ShipDamageSystem{Logger: logger})
	r.scheduler.Register(&game.TrapSystem{Rules: rules, Logger: logger})
	return r
}

func (r *rig) spawn(components ...any) (ecs.EntityId, physics.Handle) {
	id := r.storage.Spawn(append(components, game.Collider{})...)
	h, err := r.bridge.Insert(id, physics.BodyDesc{}, physics.ColliderDesc{HalfExtents: mgl64.Vec2{1, 1}})
	require.NoError(r.t, err)
	return id, h
}

func (r *rig) ship(lives uint8) (ecs.EntityId, physics.Handle) {
	return r.spawn(game.Ship{Lives: lives}, game.Transform{})
}

func (r *rig) cuboid(size int) (ecs.EntityId, physics.Handle) {
	return r.spawn(game.Cuboid{Size: size}, game.Transform{})
}

func (r *rig) trap() (ecs.EntityId, physics.Handle) {
	return r.spawn(game.Trap{}, game.Transform{})
}

func (r *rig) wall() (ecs.EntityId, physics.Handle) {
	return r.spawn(game.Wall{}, game.Transform{})
}

func (r *rig) tick() {
	r.scheduler.Once(1.0 / 60)
}

func (r *rig) lives(ship ecs.EntityId) uint8 {
	s := ecs.ReadComponent[game.Ship](r.storage, ship)
	require.NotNil(r.t, s)
	return s.Lives
}
