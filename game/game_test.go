package game_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/game"
	"github.com/plus3/cuboids/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newGame(t *testing.T, cfg game.Config) *game.Game {
	t.Helper()
	g, err := game.New(cfg, physics.NewSpace(), zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel)))
	require.NoError(t, err)
	return g
}

// quietConfig is the default level without spawners.
func quietConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.Seed = "quiet"
	cfg.Spawners = nil
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.TickRate = 0
	_, err := game.New(cfg, physics.NewSpace(), zap.NewNop())
	assert.ErrorContains(t, err, "invalid config")
}

func TestSetupBuildsLevel(t *testing.T) {
	g := newGame(t, game.DefaultConfig())

	count := func(component any) int {
		n := 0
		for _, stat := range g.Storage().CollectStats().ArchetypeBreakdown {
			for _, name := range stat.ComponentTypes {
				if name == fmt.Sprintf("%T", component) {
					n += stat.EntityCount
				}
			}
		}
		return n
	}
	assert.Equal(t, 2, count(game.Wall{}))
	assert.Equal(t, 2, count(game.Trap{}))
	assert.Equal(t, 3, count(game.Spawner{}))
	assert.Equal(t, 1, count(game.Ship{}))
	assert.Equal(t, 5, g.Engine().Len(), "walls, traps and the ship have colliders")

	snap := g.Snapshot()
	assert.Equal(t, uint8(3), snap.Lives)
	assert.Zero(t, snap.Cuboids)
	assert.Equal(t, "Points:    0  Lives: 3", snap.HUD())
}

func TestAdvanceSpawnsCuboids(t *testing.T) {
	g := newGame(t, game.DefaultConfig())

	ran := g.Advance(240)
	snap := g.Snapshot()
	if !snap.GameOver {
		assert.Equal(t, 240, ran)
	}
	assert.Equal(t, uint64(ran), snap.Tick)
	assert.InDelta(t, float64(ran)/60, snap.Elapsed, 1e-9)
	assert.GreaterOrEqual(t, snap.Spawned, uint64(2), "the 1.5s spawner fired at least twice")
	assert.Equal(t, int(snap.Spawned-snap.Despawned), snap.Cuboids)
}

func TestSameSeedSameSession(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.Seed = "replay"
	a, b := newGame(t, cfg), newGame(t, cfg)

	// four spawns, far enough apart that the solver order never matters
	a.Advance(200)
	b.Advance(200)

	sa, sb := a.Snapshot(), b.Snapshot()
	assert.NotEqual(t, sa.SessionID, sb.SessionID)
	sa.SessionID = sb.SessionID
	assert.Equal(t, sa, sb)
	assert.Equal(t, a.Session().Seed, b.Session().Seed)

	positions := func(g *game.Game) []mgl64.Vec2 {
		view := ecs.NewView[struct {
			*game.Cuboid
			*game.Transform
		}](g.Storage())
		var out []mgl64.Vec2
		for c := range view.Values() {
			out = append(out, c.Transform.Position)
		}
		return out
	}
	require.Len(t, positions(a), int(sa.Cuboids))
	assert.Equal(t, uint64(4), sa.Spawned)
	assert.Equal(t, positions(a), positions(b))
}

func TestCuboidHittingShipCostsALife(t *testing.T) {
	g := newGame(t, quietConfig())

	cuboid, err := g.World().SpawnCuboid(game.SpawnPlan{
		Size:     1,
		Position: mgl64.Vec2{0, -20},
		Velocity: mgl64.Vec2{0, -40},
	})
	require.NoError(t, err)
	require.Equal(t, 1, g.Snapshot().Cuboids)

	g.Advance(120)

	snap := g.Snapshot()
	assert.Equal(t, uint8(2), snap.Lives)
	assert.Equal(t, uint64(1), snap.Hits)
	assert.False(t, g.Storage().Alive(cuboid))
	assert.Zero(t, snap.Cuboids)
	assert.Equal(t, uint64(1), snap.Despawned)
	assert.Equal(t, 5, g.Engine().Len())
	assert.Equal(t, "Points:    0  Lives: 2", snap.HUD())
}

func TestLastLifeEndsTheGame(t *testing.T) {
	cfg := quietConfig()
	cfg.Ship.Lives = 1
	g := newGame(t, cfg)

	_, err := g.World().SpawnCuboid(game.SpawnPlan{Size: 2, Position: mgl64.Vec2{0, -25}, Velocity: mgl64.Vec2{0, -30}})
	require.NoError(t, err)

	ran := g.Advance(600)
	assert.Less(t, ran, 600, "Advance stops at game over")

	snap := g.Snapshot()
	assert.True(t, snap.GameOver)
	assert.True(t, snap.Defeated)
	assert.Zero(t, snap.Lives)
	assert.Equal(t, "Points:    0  Lives: 0  GAME OVER", snap.HUD())

	assert.Zero(t, g.Advance(10))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	g.Run(ctx)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "Run returns at once when the game is over")
}

func TestTrapRemovesCuboid(t *testing.T) {
	cfg := quietConfig()
	cfg.Rules.PointsPerDodge = 10
	g := newGame(t, cfg)

	cuboid, err := g.World().SpawnCuboid(game.SpawnPlan{
		Size:     1,
		Position: mgl64.Vec2{50, -80},
		Velocity: mgl64.Vec2{0, -40},
	})
	require.NoError(t, err)

	g.Advance(120)

	snap := g.Snapshot()
	assert.False(t, g.Storage().Alive(cuboid))
	assert.Equal(t, uint64(10), snap.Score)
	assert.Equal(t, uint8(3), snap.Lives)
	assert.Equal(t, "Points:   10  Lives: 3", snap.HUD())
}

func TestSteeringMovesShip(t *testing.T) {
	g := newGame(t, quietConfig())
	shipPosition := func() mgl64.Vec2 {
		view := ecs.NewView[struct {
			*game.Ship
			*game.Transform
		}](g.Storage())
		for s := range view.Values() {
			return s.Transform.Position
		}
		t.Fatal("no ship")
		return mgl64.Vec2{}
	}
	start := shipPosition()

	g.SetInput(1)
	g.Advance(60)
	assert.InDelta(t, start.X()+25, shipPosition().X(), 0.5)

	g.SetInput(-5)
	g.Advance(60)
	assert.InDelta(t, start.X(), shipPosition().X(), 0.5, "input is clamped")
}

func TestRunStopsWithContext(t *testing.T) {
	g := newGame(t, quietConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	g.Run(ctx)

	snap := g.Snapshot()
	assert.Positive(t, snap.Tick)
	assert.False(t, snap.GameOver)

	stats := g.Scheduler().GetStats()
	require.NotEmpty(t, stats.Systems)
	assert.Equal(t, "SessionClockSystem", stats.Systems[0].Name)
	assert.Equal(t, snap.Tick, uint64(stats.Systems[0].ExecutionCount))
}

func ExampleGame() {
	cfg := game.DefaultConfig()
	cfg.Seed = "example"
	cfg.Spawners = nil

	g, err := game.New(cfg, physics.NewSpace(), zap.NewNop())
	if err != nil {
		panic(err)
	}
	if _, err := g.World().SpawnCuboid(game.SpawnPlan{Size: 1, Position: mgl64.Vec2{0, -20}, Velocity: mgl64.Vec2{0, -40}}); err != nil {
		panic(err)
	}

	fmt.Println(g.Snapshot().HUD())
	g.Advance(120)
	fmt.Println(g.Snapshot().HUD())
	// Output:
	// Points:    0  Lives: 3
	// Points:    0  Lives: 2
}
