package ecs_test

import (
	"fmt"

	"github.com/plus3/cuboids/ecs"
)

type Fuse struct {
	Remaining float64
}

type Blast struct {
	Radius float64
}

type fuseSystem struct {
	Bombs ecs.Query[struct {
		ecs.EntityId
		*Fuse
		*Blast
	}]
	Detonations ecs.Singleton[Counter]
}

func (s *fuseSystem) Execute(frame *ecs.UpdateFrame) {
	for id, bomb := range s.Bombs.Iter() {
		bomb.Fuse.Remaining -= frame.DeltaTime
		if bomb.Fuse.Remaining > 0 {
			continue
		}
		radius := bomb.Blast.Radius
		frame.Commands.Delete(id)
		frame.Commands.Defer(func() {
			s.Detonations.Get().Value++
			fmt.Printf("tick %d: boom (radius %.0f)\n", frame.Tick, radius)
		})
	}
}

// ExampleScheduler shows a system that counts down fuses and removes entities
// through the command buffer. Deletes are applied at the end of the tick, and
// deferred functions run after them.
func ExampleScheduler() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Fuse](registry)
	ecs.RegisterComponent[Blast](registry)
	storage := ecs.NewStorage(registry)
	ecs.NewSingleton[Counter](storage)

	storage.Spawn(Fuse{Remaining: 1}, Blast{Radius: 3})
	storage.Spawn(Fuse{Remaining: 2.5}, Blast{Radius: 8})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&fuseSystem{})

	for i := 0; i < 3; i++ {
		scheduler.Once(1)
	}

	var detonations *Counter
	storage.ReadSingleton(&detonations)
	fmt.Println("detonations:", detonations.Value)
	fmt.Println("entities left:", storage.CollectStats().TotalEntityCount)
	// Output:
	// tick 1: boom (radius 3)
	// tick 3: boom (radius 8)
	// detonations: 2
	// entities left: 0
}

// ExampleView shows the EntityId field and optional components.
func ExampleView() {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Name{Value: "probe"}, Position{X: 4, Y: 2})

	view := ecs.NewView[struct {
		ecs.EntityId
		*Name
		Health *Health `ecs:"optional"`
	}](storage)

	item := view.Get(id)
	fmt.Println(item.EntityId == id, item.Name.Value, item.Health == nil)
	// Output: true probe true
}
