package pointer

import (
	"math"
	"math/rand"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/round"
)

// BallLister is the read surface the bot needs from a round.
type BallLister interface {
	Balls() []round.Ball
}

// Bot is a scripted player: it glides toward the nearest ball at a capped
// speed and occasionally loses tracking, like a hand leaving the frame.
type Bot struct {
	Targets  BallLister
	Speed    float64 // frame units per tick
	DropRate float64 // probability a tick reports no hand

	rng    *rand.Rand
	x, y   float64
	width  int
	height int
}

// NewBot creates a bot starting at the frame centre.
func NewBot(targets BallLister, width, height int, seed int64) *Bot {
	return &Bot{
		Targets:  targets,
		Speed:    9,
		DropRate: 0.1,
		rng:      rand.New(rand.NewSource(seed)), // #nosec G404 -- headless sim
		x:        float64(width) / 2,
		y:        float64(height) / 2,
		width:    width,
		height:   height,
	}
}

// Sample moves the bot one step and reports its position.
func (b *Bot) Sample(time.Time) (round.Point, bool) {
	if b.DropRate > 0 && b.rng.Float64() < b.DropRate {
		return round.Point{}, false
	}
	if tx, ty, ok := b.nearest(); ok {
		dx, dy := tx-b.x, ty-b.y
		dist := math.Hypot(dx, dy)
		if dist <= b.Speed {
			b.x, b.y = tx, ty
		} else if dist > 0 {
			b.x += dx / dist * b.Speed
			b.y += dy / dist * b.Speed
		}
	}
	p := round.Point{X: int(math.Round(b.x)), Y: int(math.Round(b.y))}
	return Clamp(p, b.width, b.height), true
}

func (b *Bot) nearest() (float64, float64, bool) {
	best := math.Inf(1)
	var bx, by float64
	found := false
	for _, ball := range b.Targets.Balls() {
		d := math.Hypot(float64(ball.Pos.X)-b.x, float64(ball.Pos.Y)-b.y)
		if d < best {
			best = d
			bx, by = float64(ball.Pos.X), float64(ball.Pos.Y)
			found = true
		}
	}
	return bx, by, found
}
