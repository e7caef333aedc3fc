package game

import (
	"fmt"

	"github.com/google/uuid"
)

// Session is the authoritative per-session state. It lives in storage as a
// singleton so every system reads and writes the same instance.
type Session struct {
	ID   uuid.UUID
	Seed uint64

	Score   uint64
	Tick    uint64
	Elapsed float64

	Spawned   uint64
	Despawned uint64
	Hits      uint64
	GameOver  bool
}

func NewSession(seed uint64) Session {
	return Session{ID: uuid.New(), Seed: seed}
}

// AddScore increases the score. The score never decreases.
func (s *Session) AddScore(points uint32) {
	s.Score += uint64(points)
}

// Reset clears all counters and starts a new session id, keeping the seed.
func (s *Session) Reset() {
	*s = NewSession(s.Seed)
}

// Snapshot is a read-only view of the game for presentation.
type Snapshot struct {
	SessionID uuid.UUID
	Tick      uint64
	Elapsed   float64
	Score     uint64
	Lives     uint8
	Defeated  bool
	GameOver  bool
	Cuboids   int
	Spawned   uint64
	Despawned uint64
	Hits      uint64
}

// HUD renders the score line the way the in-game overlay shows it.
func (s Snapshot) HUD() string {
	line := fmt.Sprintf("Points: %4d  Lives: %d", s.Score, s.Lives)
	if s.GameOver {
		line += "  GAME OVER"
	}
	return line
}
