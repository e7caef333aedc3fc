// Command cuboids runs a headless cuboids session and prints a report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/game"
	"github.com/plus3/cuboids/logging"
	"github.com/plus3/cuboids/physics"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "YAML config file. Defaults are used when empty.")
	duration := flag.Duration("duration", 0, "Session length. Overrides the config when set.")
	tickRate := flag.Float64("tick", 0, "Ticks per second. Overrides the config when set.")
	seed := flag.String("seed", "", "Seed phrase. Overrides the config when set.")
	logLevel := flag.String("log-level", "info", "Log level.")
	logFormat := flag.String("log-format", "json", "Log encoding: json or console.")
	autopilot := flag.Bool("autopilot", false, "Let the ship dodge on its own.")
	realtime := flag.Bool("realtime", false, "Tick on a wall-clock ticker instead of as fast as possible.")
	hudEvery := flag.Duration("hud", 5*time.Second, "How often to print the HUD line, in session time. Zero disables it.")
	flag.Parse()

	logger, err := logging.New(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	// 1. Config: file, then flags
	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.String("path", *configPath), zap.Error(err))
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *tickRate > 0 {
		cfg.TickRate = *tickRate
	}
	if *seed != "" {
		cfg.Seed = *seed
	}
	if *autopilot {
		cfg.Ship.Autopilot = true
	}

	// 2. Session
	g, err := game.New(cfg, physics.NewSpace(), logger)
	if err != nil {
		logger.Fatal("start session", zap.Error(err))
	}

	if every := uint64(hudEvery.Seconds() * cfg.TickRate); every > 0 {
		g.Scheduler().Register(&hudSystem{game: g, every: every})
	}

	report := &Report{
		Config:   cfg,
		Realtime: *realtime,
		FrameTime: Stats{
			Samples: make([]time.Duration, 0, int(cfg.Duration.Seconds()*cfg.TickRate)),
		},
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	// 3. Run
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	startTime := time.Now()
	if *realtime {
		runRealtime(ctx, g, cfg.Duration)
	} else {
		runFixed(ctx, g, report, cfg.Duration)
	}
	report.TotalTime = time.Since(startTime)
	report.FrameTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Snapshot = g.Snapshot()
	report.Scheduler = g.Scheduler().GetStats()
	report.Storage = g.Storage().CollectStats()

	logger.Info("session finished",
		zap.Uint64("tick", report.Snapshot.Tick),
		zap.Uint64("score", report.Snapshot.Score),
		zap.Bool("game_over", report.Snapshot.GameOver))

	// 4. Report
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("generate report", zap.Error(err))
	}
}

func loadConfig(path string) (game.Config, error) {
	if path == "" {
		return game.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return game.Config{}, err
	}
	defer f.Close()
	return game.LoadConfig(f)
}

// runFixed ticks as fast as possible with a fixed step until the session
// duration has been simulated.
func runFixed(ctx context.Context, g *game.Game, report *Report, duration time.Duration) {
	ticks := int(duration.Seconds() * g.Config().TickRate)
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil || g.Session().GameOver {
			return
		}

		updateStart := time.Now()
		g.Advance(1)
		report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(updateStart))
	}
}

// runRealtime ticks on the scheduler's ticker until the duration passes, the
// game ends, or the process is interrupted.
func runRealtime(ctx context.Context, g *game.Game, duration time.Duration) {
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	g.Run(ctx)
}

// hudSystem prints the HUD line every few ticks.
type hudSystem struct {
	Session ecs.Singleton[game.Session]

	game  *game.Game
	every uint64
}

func (s *hudSystem) Execute(frame *ecs.UpdateFrame) {
	if frame.Tick%s.every != 0 {
		return
	}
	snap := s.game.Snapshot()
	fmt.Printf("[%7.2fs] %s  cuboids: %d\n", s.Session.Get().Elapsed, snap.HUD(), snap.Cuboids)
}
