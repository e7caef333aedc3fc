package game

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/assets"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/physics"
)

// Transform is the entity's pose, copied from the physics engine every tick.
type Transform struct {
	Position mgl64.Vec2
	Angle    float64
}

type Cuboid struct {
	Size int
}

// Ship is the player. Once Defeated it ignores further hits.
type Ship struct {
	Lives    uint8
	Defeated bool
}

// Trap marks a static sensor that removes whatever enters it.
type Trap struct{}

type Wall struct{}

// Collider links an entity to its physics collider.
type Collider struct {
	Handle physics.Handle
}

// Model is what a renderer would draw for the entity.
type Model struct {
	Mesh     assets.MeshHandle
	Material assets.MaterialHandle
}

// Steering is the ship's horizontal input in [-1, 1].
type Steering struct {
	Input float64
}

func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Transform](registry)
	ecs.RegisterComponent[Cuboid](registry)
	ecs.RegisterComponent[Ship](registry)
	ecs.RegisterComponent[Trap](registry)
	ecs.RegisterComponent[Wall](registry)
	ecs.RegisterComponent[Spawner](registry)
	ecs.RegisterComponent[Collider](registry)
	ecs.RegisterComponent[Model](registry)
	ecs.RegisterComponent[Steering](registry)
}
