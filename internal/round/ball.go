package round

import (
	"math/rand"
	"time"
)

// Point is a position in frame coordinates.
type Point struct {
	X, Y int
}

// Ball is a transient target. Its tier is fixed at spawn.
type Ball struct {
	ID        int
	Pos       Point
	Tier      Tier
	SpawnedAt time.Time
}

// Points returns the ball's value, taken from its tier.
func (b Ball) Points() int {
	return b.Tier.Points
}

// Expired reports whether the ball has lived for at least lifetime.
func (b Ball) Expired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(b.SpawnedAt) >= lifetime
}

// Hit reports whether p lies strictly inside the ball's axis-aligned hit box.
func (b Ball) Hit(p Point, halfWidth int) bool {
	return absInt(p.X-b.Pos.X) < halfWidth && absInt(p.Y-b.Pos.Y) < halfWidth
}

// spawnBall picks a position inside the margin-inset rectangle (inclusive)
// and a single tier; colour and points both follow from that tier.
func spawnBall(rng *rand.Rand, cfg *Config, id int, now time.Time) Ball {
	m := cfg.SpawnMargin
	x := m + rng.Intn(cfg.FrameWidth-2*m+1)
	y := m + rng.Intn(cfg.FrameHeight-2*m+1)
	tier := cfg.Tiers[rng.Intn(len(cfg.Tiers))]
	return Ball{
		ID:        id,
		Pos:       Point{X: x, Y: y},
		Tier:      tier,
		SpawnedAt: now,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
