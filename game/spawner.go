package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/plus3/cuboids/assets"
	"github.com/plus3/cuboids/ecs"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrEmptyRange = errors.New("empty range")

// Range is the half-open integer interval [Start, End).
type Range struct {
	Start, End int
}

var (
	DefaultSizeRange  = Range{1, 4}
	DefaultAngleRange = Range{0, 360}
	DefaultSpeedRange = Range{10, 50}
)

func (r Range) Validate() error {
	if r.Start >= r.End {
		return fmt.Errorf("%w: [%d, %d)", ErrEmptyRange, r.Start, r.End)
	}
	return nil
}

func (r Range) Contains(v int) bool {
	return v >= r.Start && v < r.End
}

// Sample draws uniformly from the range. The range must be valid.
func (r Range) Sample(rng *rand.Rand) int {
	return r.Start + rng.IntN(r.End-r.Start)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// UnmarshalYAML reads a range written as a two-element sequence: [1, 4].
func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	var bounds []int
	if err := value.Decode(&bounds); err != nil {
		return err
	}
	if len(bounds) != 2 {
		return fmt.Errorf("line %d: range needs exactly two bounds, got %d", value.Line, len(bounds))
	}
	r.Start, r.End = bounds[0], bounds[1]
	return nil
}

func (r Range) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range []int{r.Start, r.End} {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)})
	}
	return node, nil
}

// Cooldown is a repeating timer driven by accumulated frame time.
type Cooldown struct {
	Period  float64
	Elapsed float64
}

func NewCooldown(period float64) Cooldown {
	return Cooldown{Period: period}
}

// Tick advances the timer by dt seconds and reports whether it fired. It fires
// at most once per call; time past the period carries over to the next cycle.
func (c *Cooldown) Tick(dt float64) bool {
	if c.Period <= 0 || dt <= 0 {
		return false
	}
	c.Elapsed += dt
	if c.Elapsed < c.Period {
		return false
	}
	c.Elapsed = math.Mod(c.Elapsed, c.Period)
	return true
}

// Spawner periodically emits cuboids from its entity's Transform position.
type Spawner struct {
	Cooldown Cooldown
	Size     Range
	Angle    Range // degrees
	Speed    Range
}

func NewSpawner(period float64) Spawner {
	return Spawner{
		Cooldown: NewCooldown(period),
		Size:     DefaultSizeRange,
		Angle:    DefaultAngleRange,
		Speed:    DefaultSpeedRange,
	}
}

func (s Spawner) Validate() error {
	if s.Cooldown.Period <= 0 {
		return fmt.Errorf("spawner period must be positive, got %v", s.Cooldown.Period)
	}
	ranges := []struct {
		name string
		r    Range
	}{{"size", s.Size}, {"angle", s.Angle}, {"speed", s.Speed}}
	for _, nr := range ranges {
		if err := nr.r.Validate(); err != nil {
			return fmt.Errorf("spawner %s range: %w", nr.name, err)
		}
	}
	return nil
}

// SpawnPlan is a fully sampled cuboid spawn request.
type SpawnPlan struct {
	Size     int
	Angle    int // degrees
	Speed    int
	Position mgl64.Vec2
	Velocity mgl64.Vec2
}

// Plan samples size, angle and speed independently. The cuboid starts size
// units from anchor along the sampled direction and moves that way at speed.
func (s Spawner) Plan(anchor mgl64.Vec2, rng *rand.Rand) SpawnPlan {
	plan := SpawnPlan{
		Size:  s.Size.Sample(rng),
		Angle: s.Angle.Sample(rng),
		Speed: s.Speed.Sample(rng),
	}
	theta := mgl64.DegToRad(float64(plan.Angle))
	direction := mgl64.Vec2{math.Cos(theta), math.Sin(theta)}
	plan.Velocity = direction.Mul(float64(plan.Speed))
	plan.Position = anchor.Add(direction.Mul(float64(plan.Size)))
	return plan
}

// CuboidSpawner creates cuboids from plans. World implements it.
type CuboidSpawner interface {
	SpawnCuboid(plan SpawnPlan) (ecs.EntityId, error)
}

// SpawnerSystem ticks every spawner and queues a cuboid spawn whenever one fires.
// Spawns are applied when the frame's commands are flushed.
type SpawnerSystem struct {
	Spawners ecs.Query[struct {
		ecs.EntityId
		*Spawner
		*Transform
	}]

	Catalog *assets.Catalog
	Target  CuboidSpawner
	Rng     *rand.Rand
	Logger  *zap.Logger
}

func (s *SpawnerSystem) Execute(frame *ecs.UpdateFrame) {
	for id, item := range s.Spawners.Iter() {
		if !item.Spawner.Cooldown.Tick(frame.DeltaTime) {
			continue
		}

		plan := item.Spawner.Plan(item.Transform.Position, s.Rng)
		if _, err := s.Catalog.Cuboid(plan.Size); err != nil {
			s.Logger.Error("spawn request dropped",
				zap.Uint64("spawner", uint64(id)),
				zap.Stringer("size_range", item.Spawner.Size),
				zap.Uint64("tick", frame.Tick),
				zap.Error(err))
			continue
		}

		frame.Commands.Defer(func() {
			if _, err := s.Target.SpawnCuboid(plan); err != nil {
				s.Logger.Error("spawn cuboid", zap.Uint64("tick", frame.Tick), zap.Error(err))
			}
		})
	}
}
