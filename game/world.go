package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/assets"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/physics"
	"go.uber.org/zap"
)

// World creates the game's entities together with their colliders.
type World struct {
	storage *ecs.Storage
	bridge  *IdentityBridge
	catalog *assets.Catalog
	session *ecs.Singleton[Session]
	cfg     Config
	logger  *zap.Logger
}

func NewWorld(storage *ecs.Storage, bridge *IdentityBridge, catalog *assets.Catalog, cfg Config, logger *zap.Logger) *World {
	w := &World{
		storage: storage,
		bridge:  bridge,
		catalog: catalog,
		session: ecs.NewSingleton[Session](storage),
		cfg:     cfg,
		logger:  logger,
	}
	storage.OnDelete(w.countDespawn)
	return w
}

// countDespawn counts cuboids that made it into the physics world.
func (w *World) countDespawn(id ecs.EntityId) {
	c := ecs.ReadComponent[Collider](w.storage, id)
	if c != nil && c.Handle != 0 && ecs.ReadComponent[Cuboid](w.storage, id) != nil {
		w.session.Get().Despawned++
	}
}

// spawnBody spawns the entity, then inserts its collider. The entity is
// deleted again if the engine rejects the collider.
func (w *World) spawnBody(body physics.BodyDesc, collider physics.ColliderDesc, components ...any) (ecs.EntityId, error) {
	id := w.storage.Spawn(append(components, Collider{})...)
	if _, err := w.bridge.Insert(id, body, collider); err != nil {
		w.storage.Delete(id)
		return 0, err
	}
	return id, nil
}

// Setup builds the static level: walls, traps, spawners and the ship.
func (w *World) Setup() error {
	for _, x := range []float64{-w.cfg.Walls.Offset, w.cfg.Walls.Offset} {
		if _, err := w.spawnBody(
			physics.BodyDesc{Kind: physics.Static, Position: mgl64.Vec2{x, 0}},
			physics.ColliderDesc{HalfExtents: w.cfg.Walls.HalfExtents, Groups: physics.GroupsWalls},
			Wall{}, Transform{Position: mgl64.Vec2{x, 0}},
		); err != nil {
			return fmt.Errorf("spawn wall: %w", err)
		}
	}

	for _, y := range []float64{-w.cfg.Traps.Offset, w.cfg.Traps.Offset} {
		if _, err := w.spawnBody(
			physics.BodyDesc{Kind: physics.Static, Position: mgl64.Vec2{0, y}},
			physics.ColliderDesc{HalfExtents: w.cfg.Traps.HalfExtents, Sensor: true, Groups: physics.GroupsTraps},
			Trap{}, Transform{Position: mgl64.Vec2{0, y}},
		); err != nil {
			return fmt.Errorf("spawn trap: %w", err)
		}
	}

	for _, sc := range w.cfg.Spawners {
		w.storage.Spawn(sc.Spawner(), Transform{Position: sc.Position})
	}

	if _, err := w.SpawnShip(); err != nil {
		return err
	}

	w.logger.Info("world ready",
		zap.Int("spawners", len(w.cfg.Spawners)),
		zap.Int("entities", w.storage.CollectStats().TotalEntityCount))
	return nil
}

func (w *World) SpawnShip() (ecs.EntityId, error) {
	ship := w.catalog.Ship()
	half := ship.HalfExtent()
	id, err := w.spawnBody(
		physics.BodyDesc{Kind: physics.Dynamic, Position: w.cfg.Ship.Position},
		physics.ColliderDesc{
			HalfExtents: mgl64.Vec2{half, half},
			Restitution: w.cfg.Ship.Restitution,
			Groups:      physics.GroupsAll,
		},
		Ship{Lives: w.cfg.Ship.Lives},
		Steering{},
		Transform{Position: w.cfg.Ship.Position},
		Model{Mesh: ship.Mesh, Material: ship.Material},
	)
	if err != nil {
		return 0, fmt.Errorf("spawn ship: %w", err)
	}
	return id, nil
}

// SpawnCuboid creates a dynamic cuboid from a spawn plan.
func (w *World) SpawnCuboid(plan SpawnPlan) (ecs.EntityId, error) {
	asset, err := w.catalog.Cuboid(plan.Size)
	if err != nil {
		return 0, fmt.Errorf("spawn cuboid: %w", err)
	}

	half := asset.HalfExtent()
	id, err := w.spawnBody(
		physics.BodyDesc{Kind: physics.Dynamic, Position: plan.Position, Velocity: plan.Velocity},
		physics.ColliderDesc{
			HalfExtents: mgl64.Vec2{half, half},
			Restitution: w.cfg.Cuboids.Restitution,
			Groups:      physics.GroupsAll,
		},
		Cuboid{Size: plan.Size},
		Transform{Position: plan.Position},
		Model{Mesh: asset.Mesh, Material: asset.Material},
	)
	if err != nil {
		return 0, fmt.Errorf("spawn cuboid: %w", err)
	}

	w.session.Get().Spawned++
	w.logger.Debug("cuboid spawned",
		zap.Uint64("entity", uint64(id)),
		zap.Int("size", plan.Size),
		zap.Int("angle", plan.Angle),
		zap.Int("speed", plan.Speed))
	return id, nil
}
