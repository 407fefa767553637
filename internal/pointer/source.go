// Package pointer provides the per-tick pointer samples that drive a round:
// a websocket feed for external hand trackers, a deterministic bot for
// headless runs, and small adapters.
package pointer

import (
	"time"

	"github.com/Garsondee/fingertip-catch/internal/round"
)

// Source yields at most one pointer position per tick. ok is false when no
// tracked point is available this tick.
type Source interface {
	Sample(now time.Time) (p round.Point, ok bool)
}

// Func adapts a plain function to Source.
type Func func(now time.Time) (round.Point, bool)

// Sample calls f.
func (f Func) Sample(now time.Time) (round.Point, bool) {
	return f(now)
}

// Fixed always reports the same point, or nothing when Absent is set.
type Fixed struct {
	P      round.Point
	Absent bool
}

// Sample returns the fixed point.
func (f Fixed) Sample(time.Time) (round.Point, bool) {
	return f.P, !f.Absent
}

// Mirror flips X across a frame of the given width, the way a selfie
// camera image is flipped before tracking.
type Mirror struct {
	Src   Source
	Width int
}

// Sample returns the mirrored sample of Src.
func (m Mirror) Sample(now time.Time) (round.Point, bool) {
	p, ok := m.Src.Sample(now)
	if !ok {
		return p, false
	}
	p.X = m.Width - 1 - p.X
	return p, true
}

// Advance samples src and feeds the result to e for one tick.
func Advance(e *round.Engine, src Source, now time.Time) error {
	if p, ok := src.Sample(now); ok {
		return e.AdvanceFrame(&p, now)
	}
	return e.AdvanceFrame(nil, now)
}

// Clamp keeps p inside a width x height frame.
func Clamp(p round.Point, width, height int) round.Point {
	p.X = clampInt(p.X, 0, width-1)
	p.Y = clampInt(p.Y, 0, height-1)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
