package ecs

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	queued  map[EntityId]struct{}
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{queued: make(map[EntityId]struct{})}
}

type spawnCommand struct {
	components []any
}

// Defer queues a function to run after deletes and spawns have been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion. Queuing the same entity twice in one frame
// results in a single delete; deleting an entity that is already gone is a no-op.
func (c *Commands) Delete(entity EntityId) {
	if _, ok := c.queued[entity]; ok {
		return
	}
	c.queued[entity] = struct{}{}
	c.deletes = append(c.deletes, entity)
}

// DeleteQueued reports whether entity has a pending delete in this buffer.
func (c *Commands) DeleteQueued(entity EntityId) bool {
	_, ok := c.queued[entity]
	return ok
}

// Pending returns the number of queued operations.
func (c *Commands) Pending() int {
	return len(c.spawns) + len(c.deletes) + len(c.defers)
}

// Flush applies all commands to storage in order: deletes, spawns, deferred
// functions. It returns how many entities were actually deleted and resets the buffer.
func (c *Commands) Flush(storage *Storage) (deleted int) {
	for _, id := range c.deletes {
		if storage.Delete(id) {
			deleted++
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.defers = c.defers[:0]
	clear(c.queued)
	return deleted
}
