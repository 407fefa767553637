package round

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Summary is the recap of one round, derived from its event log.
type Summary struct {
	RoundID   uuid.UUID
	State     State
	Score     int
	Collected map[string]int // tier name → balls collected
	Expired   int
	Spawned   int
	Ticks     int
	StartedAt time.Time
	EndedAt   time.Time // zero until the round ends

	tierOrder []string
}

// Summary builds a recap of the current (or just-ended) round.
func (e *Engine) Summary() Summary {
	s := Summary{
		RoundID:   e.roundID,
		State:     e.state,
		Score:     e.score,
		Collected: make(map[string]int, len(e.cfg.Tiers)),
		Ticks:     e.tick,
		StartedAt: e.startTime,
		EndedAt:   e.endTime,
	}
	for _, t := range e.cfg.Tiers {
		s.Collected[t.Name] = 0
		s.tierOrder = append(s.tierOrder, t.Name)
	}
	for _, ev := range e.log.Filter(CategoryBall, "") {
		switch ev.Key {
		case KeyCollect:
			s.Collected[ev.Tier]++
		case KeyExpire:
			s.Expired++
		case KeySpawn:
			s.Spawned++
		}
	}
	return s
}

// TotalCollected returns the number of balls collected across all tiers.
func (s Summary) TotalCollected() int {
	n := 0
	for _, c := range s.Collected {
		n += c
	}
	return n
}

// String renders the recap as a few human-readable lines.
func (s Summary) String() string {
	var sb strings.Builder
	if s.State == StateEnded {
		fmt.Fprintf(&sb, "Game Over! Your Score: %d\n", s.Score)
	} else {
		fmt.Fprintf(&sb, "Score: %d (%s)\n", s.Score, s.State)
	}
	fmt.Fprintf(&sb, "round %s, %d ticks", s.RoundID, s.Ticks)
	if !s.EndedAt.IsZero() {
		fmt.Fprintf(&sb, ", %s", s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	}
	sb.WriteByte('\n')

	parts := make([]string, 0, len(s.tierOrder))
	for _, name := range s.tierOrder {
		parts = append(parts, fmt.Sprintf("%s=%d", name, s.Collected[name]))
	}
	fmt.Fprintf(&sb, "collected: %s (%d total), expired: %d, spawned: %d",
		strings.Join(parts, " "), s.TotalCollected(), s.Expired, s.Spawned)
	return sb.String()
}
