package game

import (
	"fmt"

	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/physics"
)

// CorruptHandleError means a live collider carries user data that does not
// decode to an entity the registry knows about. It is never expected at runtime.
type CorruptHandleError struct {
	Handle   physics.Handle
	UserData uint64
	Reason   string
}

func (e *CorruptHandleError) Error() string {
	return fmt.Sprintf("corrupt collider handle %d (user data %#x): %s", e.Handle, e.UserData, e.Reason)
}

// Attach writes the entity's id into the user data of both descriptors.
func Attach(entity ecs.EntityId, body physics.BodyDesc, collider physics.ColliderDesc) (physics.BodyDesc, physics.ColliderDesc) {
	body.UserData = uint64(entity)
	collider.UserData = uint64(entity)
	return body, collider
}

// IdentityBridge maps colliders to entities through the collider user data.
// It removes an entity's collider from the engine when the entity is deleted,
// so a deleted entity is never resolved again.
type IdentityBridge struct {
	engine  physics.Engine
	storage *ecs.Storage
}

func NewIdentityBridge(engine physics.Engine, storage *ecs.Storage) *IdentityBridge {
	b := &IdentityBridge{engine: engine, storage: storage}
	storage.OnDelete(b.release)
	return b
}

func (b *IdentityBridge) release(id ecs.EntityId) {
	if c := ecs.ReadComponent[Collider](b.storage, id); c != nil && c.Handle != 0 {
		b.engine.Remove(c.Handle)
	}
}

// Insert attaches entity to the descriptors and creates the collider. A Collider
// component on the entity is updated with the new handle.
func (b *IdentityBridge) Insert(entity ecs.EntityId, body physics.BodyDesc, collider physics.ColliderDesc) (physics.Handle, error) {
	body, collider = Attach(entity, body, collider)
	h, err := b.engine.Insert(body, collider)
	if err != nil {
		return 0, fmt.Errorf("insert collider for entity %#x: %w", uint64(entity), err)
	}
	if c := ecs.ReadComponent[Collider](b.storage, entity); c != nil {
		c.Handle = h
	}
	return h, nil
}

// Resolve returns the entity behind a collider handle. It returns the zero id
// when the handle is no longer live, carries no entity, or names a deleted
// entity. It returns a *CorruptHandleError when the user data cannot be an
// entity of this registry.
func (b *IdentityBridge) Resolve(h physics.Handle) (ecs.EntityId, error) {
	user, ok := b.engine.UserData(h)
	if !ok || user == 0 {
		return 0, nil
	}

	id := ecs.EntityId(user)
	if !b.storage.HasArchetype(id.ArchetypeId()) {
		return 0, &CorruptHandleError{Handle: h, UserData: user, Reason: "unknown archetype"}
	}
	if !b.storage.Alive(id) {
		return 0, nil
	}
	if c := ecs.ReadComponent[Collider](b.storage, id); c != nil && c.Handle != 0 && c.Handle != h {
		return 0, &CorruptHandleError{Handle: h, UserData: user, Reason: fmt.Sprintf("entity owns collider %d", c.Handle)}
	}
	return id, nil
}
