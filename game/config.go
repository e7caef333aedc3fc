package game

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/assets"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Seed makes a session reproducible. Empty draws a seed from entropy.
	Seed     string        `yaml:"seed"`
	TickRate float64       `yaml:"tick_rate"`
	Duration time.Duration `yaml:"duration"`

	Ship     ShipConfig      `yaml:"ship"`
	Cuboids  CuboidConfig    `yaml:"cuboids"`
	Walls    BarrierConfig   `yaml:"walls"`
	Traps    BarrierConfig   `yaml:"traps"`
	Spawners []SpawnerConfig `yaml:"spawners"`
	Rules    Rules           `yaml:"rules"`
}

type ShipConfig struct {
	Position    mgl64.Vec2 `yaml:"position"`
	Lives       uint8      `yaml:"lives"`
	Restitution float64    `yaml:"restitution"`
	Speed       float64    `yaml:"speed"`
	Spin        float64    `yaml:"spin"`
	Autopilot   bool       `yaml:"autopilot"`
}

type CuboidConfig struct {
	Restitution float64 `yaml:"restitution"`
}

// BarrierConfig places a mirrored pair of static boxes at ±Offset on one axis.
type BarrierConfig struct {
	Offset      float64    `yaml:"offset"`
	HalfExtents mgl64.Vec2 `yaml:"half_extents"`
}

type SpawnerConfig struct {
	Position mgl64.Vec2 `yaml:"position"`
	Period   float64    `yaml:"period"`
	Size     Range      `yaml:"size"`
	Angle    Range      `yaml:"angle"`
	Speed    Range      `yaml:"speed"`
}

// Spawner builds the component, filling unset ranges with the defaults.
func (c SpawnerConfig) Spawner() Spawner {
	s := NewSpawner(c.Period)
	if c.Size != (Range{}) {
		s.Size = c.Size
	}
	if c.Angle != (Range{}) {
		s.Angle = c.Angle
	}
	if c.Speed != (Range{}) {
		s.Speed = c.Speed
	}
	return s
}

func DefaultConfig() Config {
	return Config{
		TickRate: 60,
		Duration: 60 * time.Second,
		Ship: ShipConfig{
			Position:    mgl64.Vec2{0, -50},
			Lives:       3,
			Restitution: 1.5,
			Speed:       25,
			Spin:        5,
		},
		Cuboids: CuboidConfig{Restitution: 1.5},
		Walls:   BarrierConfig{Offset: 110, HalfExtents: mgl64.Vec2{1, 150}},
		Traps:   BarrierConfig{Offset: 100, HalfExtents: mgl64.Vec2{110, 1}},
		Spawners: []SpawnerConfig{
			{Position: mgl64.Vec2{-75, 70}, Period: 3.13, Angle: Range{240, 300}},
			{Position: mgl64.Vec2{0, 70}, Period: 1.5, Angle: Range{240, 300}},
			{Position: mgl64.Vec2{75, 70}, Period: 2.79, Angle: Range{240, 300}},
		},
	}
}

// LoadConfig decodes YAML over DefaultConfig and validates the result.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(assets.NewCatalog()); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config against the asset table.
func (c Config) Validate(catalog *assets.Catalog) error {
	var errs []error
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %v", c.TickRate))
	}
	if c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %v", c.Duration))
	}
	if c.Ship.Lives == 0 {
		errs = append(errs, errors.New("ship.lives must be at least 1"))
	}
	barriers := []struct {
		name string
		b    BarrierConfig
	}{{"walls", c.Walls}, {"traps", c.Traps}}
	for _, nb := range barriers {
		if nb.b.HalfExtents.X() <= 0 || nb.b.HalfExtents.Y() <= 0 {
			errs = append(errs, fmt.Errorf("%s.half_extents must be positive, got %v", nb.name, nb.b.HalfExtents))
		}
	}
	for i, sc := range c.Spawners {
		s := sc.Spawner()
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("spawners[%d]: %w", i, err))
			continue
		}
		if err := catalog.CheckRange(s.Size.Start, s.Size.End); err != nil {
			errs = append(errs, fmt.Errorf("spawners[%d]: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
