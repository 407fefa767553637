package round

import (
	"fmt"
	"image/color"
	"time"
)

// Tier is one row of the tier table: a ball's colour and point value
// always come from the same Tier.
type Tier struct {
	Name   string
	Points int
	Color  color.RGBA
}

// DefaultTiers mirrors the classic green/orange/red table.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "low", Points: 1, Color: color.RGBA{R: 0, G: 255, B: 0, A: 255}},   // green
		{Name: "mid", Points: 2, Color: color.RGBA{R: 255, G: 165, B: 0, A: 255}}, // orange
		{Name: "high", Points: 3, Color: color.RGBA{R: 255, G: 0, B: 0, A: 255}},  // red
	}
}

// Config holds every tunable of a round. Zero values are not usable;
// start from DefaultConfig.
type Config struct {
	FrameWidth    int
	FrameHeight   int
	BallCount     int
	BallLifetime  time.Duration
	GameDuration  time.Duration
	TrailCapacity int
	HitHalfWidth  int // collision box half-width, compared with strict <
	SpawnMargin   int // balls never spawn closer than this to a frame edge
	Tiers         []Tier
}

// DefaultConfig returns the reference 640x480, 3-ball, 60s round.
func DefaultConfig() Config {
	return Config{
		FrameWidth:    640,
		FrameHeight:   480,
		BallCount:     3,
		BallLifetime:  5 * time.Second,
		GameDuration:  60 * time.Second,
		TrailCapacity: 20,
		HitHalfWidth:  20,
		SpawnMargin:   50,
		Tiers:         DefaultTiers(),
	}
}

// Validate reports the first invalid field, wrapped in ErrConfig.
func (c Config) Validate() error {
	switch {
	case c.FrameWidth <= 0 || c.FrameHeight <= 0:
		return fmt.Errorf("frame size %dx%d must be positive: %w", c.FrameWidth, c.FrameHeight, ErrConfig)
	case c.BallCount <= 0:
		return fmt.Errorf("ball count %d must be > 0: %w", c.BallCount, ErrConfig)
	case c.BallLifetime <= 0:
		return fmt.Errorf("ball lifetime %s must be > 0: %w", c.BallLifetime, ErrConfig)
	case c.GameDuration <= 0:
		return fmt.Errorf("game duration %s must be > 0: %w", c.GameDuration, ErrConfig)
	case c.TrailCapacity <= 0:
		return fmt.Errorf("trail capacity %d must be > 0: %w", c.TrailCapacity, ErrConfig)
	case c.HitHalfWidth <= 0:
		return fmt.Errorf("hit half-width %d must be > 0: %w", c.HitHalfWidth, ErrConfig)
	case c.SpawnMargin < 0:
		return fmt.Errorf("spawn margin %d must be >= 0: %w", c.SpawnMargin, ErrConfig)
	case c.FrameWidth-2*c.SpawnMargin < 0 || c.FrameHeight-2*c.SpawnMargin < 0:
		return fmt.Errorf("spawn margin %d leaves no room in %dx%d frame: %w",
			c.SpawnMargin, c.FrameWidth, c.FrameHeight, ErrConfig)
	case len(c.Tiers) == 0:
		return fmt.Errorf("tier table is empty: %w", ErrConfig)
	}
	seen := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.Points < 0 {
			return fmt.Errorf("tier %q has negative points %d: %w", t.Name, t.Points, ErrConfig)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate tier %q: %w", t.Name, ErrConfig)
		}
		seen[t.Name] = true
	}
	return nil
}

// TierByName looks up a tier in the table.
func (c Config) TierByName(name string) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}
