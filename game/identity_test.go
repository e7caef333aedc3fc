package game_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/game"
	"github.com/plus3/cuboids/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitBox = physics.ColliderDesc{HalfExtents: mgl64.Vec2{1, 1}}

func TestAttachWritesBothUserData(t *testing.T) {
	id := ecs.NewEntityId(0xDEADBEEF, 42)
	body, collider := game.Attach(id, physics.BodyDesc{Position: mgl64.Vec2{1, 2}}, unitBox)

	assert.Equal(t, uint64(id), body.UserData)
	assert.Equal(t, uint64(id), collider.UserData)
	assert.Equal(t, mgl64.Vec2{1, 2}, body.Position)
	assert.Equal(t, unitBox.HalfExtents, collider.HalfExtents)
}

func TestAttachResolveRoundTrip(t *testing.T) {
	r := newRig(t, game.Rules{})

	spawned := map[physics.Handle]ecs.EntityId{}
	for i := 0; i < 300; i++ {
		var id ecs.EntityId
		var h physics.Handle
		switch i % 4 {
		case 0:
			id, h = r.cuboid(1 + i%9)
		case 1:
			id, h = r.trap()
		case 2:
			id, h = r.wall()
		default:
			id, h = r.ship(3)
		}
		spawned[h] = id

		c := ecs.ReadComponent[game.Collider](r.storage, id)
		require.NotNil(t, c)
		assert.Equal(t, h, c.Handle)
	}

	for h, want := range spawned {
		got, err := r.bridge.Resolve(h)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResolveWithoutEntity(t *testing.T) {
	r := newRig(t, game.Rules{})

	static, err := r.engine.Insert(physics.BodyDesc{Kind: physics.Static}, unitBox)
	require.NoError(t, err)

	id, err := r.bridge.Resolve(static)
	assert.NoError(t, err)
	assert.True(t, id.IsZero(), "zero user data is static geometry")

	id, err = r.bridge.Resolve(9999)
	assert.NoError(t, err)
	assert.True(t, id.IsZero(), "unknown handles resolve to nothing")
}

func TestResolveAfterDespawn(t *testing.T) {
	r := newRig(t, game.Rules{})

	id, h := r.cuboid(3)
	require.True(t, r.storage.Delete(id))
	assert.Equal(t, []physics.Handle{h}, r.engine.removed)

	got, err := r.bridge.Resolve(h)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	reused, h2 := r.cuboid(3)
	assert.Equal(t, id, reused, "the freed slot is reused")
	assert.NotEqual(t, h, h2)

	got, err = r.bridge.Resolve(h)
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "the old handle never resolves to the new entity")

	got, err = r.bridge.Resolve(h2)
	require.NoError(t, err)
	assert.Equal(t, reused, got)
}

func TestResolveDeadSlotWithLiveCollider(t *testing.T) {
	r := newRig(t, game.Rules{})

	// no Collider component, so deleting the entity leaves the collider behind
	id := r.storage.Spawn(game.Cuboid{Size: 1})
	h, err := r.bridge.Insert(id, physics.BodyDesc{}, unitBox)
	require.NoError(t, err)
	r.storage.Delete(id)

	got, err := r.bridge.Resolve(h)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestResolveCorruptUserData(t *testing.T) {
	r := newRig(t, game.Rules{})

	bogus := unitBox
	bogus.UserData = uint64(ecs.NewEntityId(0x1234, 7))
	h, err := r.engine.Insert(physics.BodyDesc{}, bogus)
	require.NoError(t, err)

	_, err = r.bridge.Resolve(h)
	var corrupt *game.CorruptHandleError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, h, corrupt.Handle)
	assert.Equal(t, bogus.UserData, corrupt.UserData)
	assert.Contains(t, err.Error(), "unknown archetype")
}

func TestResolveForeignColliderOnLiveEntity(t *testing.T) {
	r := newRig(t, game.Rules{})

	id, _ := r.cuboid(1)
	stray := unitBox
	stray.UserData = uint64(id)
	h, err := r.engine.Insert(physics.BodyDesc{}, stray)
	require.NoError(t, err)

	_, err = r.bridge.Resolve(h)
	var corrupt *game.CorruptHandleError
	assert.ErrorAs(t, err, &corrupt)
}

func TestInsertFailureLeavesNoCollider(t *testing.T) {
	r := newRig(t, game.Rules{})

	id := r.storage.Spawn(game.Cuboid{Size: 1}, game.Collider{})
	_, err := r.bridge.Insert(id, physics.BodyDesc{}, physics.ColliderDesc{})
	assert.ErrorIs(t, err, physics.ErrInvalidShape)
	assert.Zero(t, ecs.ReadComponent[game.Collider](r.storage, id).Handle)
	assert.Zero(t, r.engine.Len())
}
