package main

import (
	"io"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/plus3/cuboids/ecs"
	"github.com/plus3/cuboids/game"
)

type Report struct {
	// Configuration
	Config   game.Config
	Realtime bool

	// Results
	Snapshot      game.Snapshot
	TotalTime     time.Duration
	FrameTime     Stats
	Scheduler     *ecs.SchedulerStats
	Storage       ecs.StorageStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Cuboids Session Report

## Session
- **Id:** {{.Snapshot.SessionID}}
- **Seed phrase:** {{if .Config.Seed}}{{.Config.Seed}}{{else}}(random){{end}}
- **Mode:** {{if .Realtime}}real time{{else}}fixed step{{end}} at {{.Config.TickRate}} ticks/s
- **Ticks:** {{.Snapshot.Tick}} ({{printf "%.2f" .Snapshot.Elapsed}}s simulated in {{.TotalTime}})

## Outcome
- {{.Snapshot.HUD}}
- **Ship hits:** {{.Snapshot.Hits}}
- **Cuboids:** {{.Snapshot.Spawned}} spawned, {{.Snapshot.Despawned}} removed, {{.Snapshot.Cuboids}} in play
{{- with .FrameTime}}{{if .Samples}}

## Frame Time
  - **Avg:** {{.Avg}}
  - **Min:** {{.Min}}
  - **Max:** {{.Max}}
{{- end}}{{end}}

## Systems
{{- range .Scheduler.Systems}}
- {{printf "%-20s" .Name}} runs: {{.ExecutionCount}}  avg: {{.AvgDuration}}  max: {{.MaxDuration}}
{{- end}}

## Storage
- **Entities:** {{.Storage.TotalEntityCount}} in {{.Storage.ArchetypeCount}} archetypes
{{- range .Storage.ArchetypeBreakdown}}
  - {{join .ComponentTypes}}: {{.EntityCount}}
{{- end}}
- **Singletons:** {{join .Storage.SingletonTypes}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
`

var reportFuncs = template.FuncMap{
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"join": func(names []string) string {
		return strings.Join(names, ", ")
	},
}

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
