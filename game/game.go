// Package game runs a cuboids session: spawners throw cuboids across the field,
// traps at the top and bottom remove whatever crosses them, and every cuboid
// that hits the ship costs a life.
//
// Each tick runs the systems in this order: session clock, autopilot (when
// enabled), steering, physics step, pose sync, event bridge, ship damage, trap
// removal, spawners. Despawns and spawns requested during the tick are applied
// after the last system, before the next physics step.
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/plus3/cuboids/assets"
	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/physics"
	"go.uber.org/zap"
)

type Game struct {
	cfg       Config
	logger    *zap.Logger
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	engine    physics.Engine
	bridge    *IdentityBridge
	world     *World

	session *ecs.Singleton[Session]
	events  *ecs.Singleton[CollisionEvents]
	ships   *ecs.View[struct {
		*Ship
		*Steering
	}]
	cuboids *ecs.View[struct{ *Cuboid }]

	cancel context.CancelFunc
}

// SeedFromPhrase turns a seed phrase into the session seed.
func SeedFromPhrase(phrase string) uint64 {
	return xxhash.Sum64String(phrase)
}

// NewRand returns the session's random source. The same seed always yields the
// same sequence.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New validates cfg and builds a session on engine with the level already set up.
func New(cfg Config, engine physics.Engine, logger *zap.Logger) (*Game, error) {
	catalog := assets.NewCatalog()
	if err := cfg.Validate(catalog); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if cfg.Seed != "" {
		seed = SeedFromPhrase(cfg.Seed)
	}

	registry := ecs.NewComponentRegistry()
	RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	sessionState := NewSession(seed)
	logger = logger.With(zap.Stringer("session", sessionState.ID))

	g := &Game{
		cfg:       cfg,
		logger:    logger,
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		engine:    engine,
		session:   ecs.NewSingleton(storage, sessionState),
		events:    ecs.NewSingleton[CollisionEvents](storage),
		ships: ecs.NewView[struct {
			*Ship
			*Steering
		}](storage),
		cuboids: ecs.NewView[struct{ *Cuboid }](storage),
	}
	g.bridge = NewIdentityBridge(engine, storage)
	g.world = NewWorld(storage, g.bridge, catalog, cfg, logger)

	if err := g.world.Setup(); err != nil {
		return nil, fmt.Errorf("setup world: %w", err)
	}

	g.scheduler.Register(&SessionClockSystem{})
	if cfg.Ship.Autopilot {
		g.scheduler.Register(&AutopilotSystem{Lookahead: 60})
	}
	g.scheduler.Register(&SteeringSystem{Speed: cfg.Ship.Speed, Spin: cfg.Ship.Spin, Engine: engine, Logger: logger})
	g.scheduler.Register(&PhysicsStepSystem{Engine: engine})
	g.scheduler.Register(&PoseSyncSystem{Engine: engine})
	g.scheduler.Register(&EventBridgeSystem{Engine: engine, Bridge: g.bridge, Logger: logger})
	g.scheduler.Register(&ShipDamageSystem{Logger: logger})
	g.scheduler.Register(&TrapSystem{Rules: cfg.Rules, Logger: logger})
	g.scheduler.Register(&SpawnerSystem{Catalog: catalog, Target: g.world, Rng: NewRand(seed), Logger: logger})
	g.scheduler.Register(&gameOverSystem{game: g})

	logger.Info("session started", zap.Uint64("seed", seed), zap.Float64("tick_rate", cfg.TickRate))
	return g, nil
}

// gameOverSystem ends Run once the ship is defeated.
type gameOverSystem struct {
	game *Game
}

func (s *gameOverSystem) Execute(*ecs.UpdateFrame) {
	if s.game.cancel != nil && s.game.session.Get().GameOver {
		s.game.cancel()
	}
}

// Tick runs one tick of dt seconds.
func (g *Game) Tick(dt float64) {
	g.scheduler.Once(dt)
}

// Advance runs n fixed ticks at the configured tick rate, stopping early when
// the game is over. It returns the number of ticks run.
func (g *Game) Advance(n int) int {
	dt := 1 / g.cfg.TickRate
	for i := 0; i < n; i++ {
		if g.session.Get().GameOver {
			return i
		}
		g.scheduler.Once(dt)
	}
	return n
}

// Run ticks in real time at the configured rate, using the measured time
// between ticks, until ctx is done or the game is over.
func (g *Game) Run(ctx context.Context) {
	ctx, g.cancel = context.WithCancel(ctx)
	defer func() {
		g.cancel()
		g.cancel = nil
	}()
	if g.session.Get().GameOver {
		return
	}
	g.scheduler.Run(ctx, time.Duration(float64(time.Second)/g.cfg.TickRate))
}

// SetInput sets the steering input of every ship, clamped to [-1, 1] when applied.
func (g *Game) SetInput(input float64) {
	for ship := range g.ships.Values() {
		ship.Steering.Input = input
	}
}

func (g *Game) Snapshot() Snapshot {
	session := g.session.Get()
	snap := Snapshot{
		SessionID: session.ID,
		Tick:      session.Tick,
		Elapsed:   session.Elapsed,
		Score:     session.Score,
		GameOver:  session.GameOver,
		Cuboids:   g.cuboids.Count(),
		Spawned:   session.Spawned,
		Despawned: session.Despawned,
		Hits:      session.Hits,
	}
	for ship := range g.ships.Values() {
		snap.Lives = ship.Ship.Lives
		snap.Defeated = ship.Ship.Defeated
	}
	return snap
}

// Events returns the events resolved during the last tick.
func (g *Game) Events() []CollisionEvent {
	return g.events.Get().Events
}

func (g *Game) Session() *Session { return g.session.Get() }
func (g *Game) Storage() *ecs.Storage { return g.storage }
func (g *Game) Scheduler() *ecs.Scheduler { return g.scheduler }
func (g *Game) Engine() physics.Engine { return g.engine }
func (g *Game) Bridge() *IdentityBridge { return g.bridge }
func (g *Game) World() *World { return g.world }
func (g *Game) Logger() *zap.Logger { return g.logger }
func (g *Game) Config() Config { return g.cfg }
