// Package sim runs rounds headlessly: a manual clock, a seeded engine and a
// scripted bot pointer, with no window or audio.
package sim

import (
	"fmt"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/pointer"
	"github.com/Garsondee/fingertip-catch/internal/round"
)

// Sim is a headless round harness.
type Sim struct {
	Engine *round.Engine
	Clock  *round.ManualClock
	Bot    *pointer.Bot

	cfg        round.Config
	seed       int64
	roundStart time.Time
	ticks      int // ticks since roundStart
	frameRate  int
	botSpeed   float64
	dropRate   float64
}

// Option is a builder function applied to a Sim during construction.
type Option func(*Sim)

// WithConfig sets the round configuration.
func WithConfig(cfg round.Config) Option {
	return func(s *Sim) {
		s.cfg = cfg
	}
}

// WithSeed sets the seed for both ball spawning and the bot.
func WithSeed(seed int64) Option {
	return func(s *Sim) {
		s.seed = seed
	}
}

// WithFrameRate sets ticks per simulated second.
func WithFrameRate(fps int) Option {
	return func(s *Sim) {
		s.frameRate = fps
	}
}

// WithBotSpeed sets how far the bot moves per tick.
func WithBotSpeed(v float64) Option {
	return func(s *Sim) {
		s.botSpeed = v
	}
}

// WithDropRate sets the chance per tick that the bot reports no hand.
func WithDropRate(p float64) Option {
	return func(s *Sim) {
		s.dropRate = p
	}
}

// MaxFrameRate is the highest frame rate with a non-zero frame interval.
const MaxFrameRate = int(time.Second)

// epoch is the simulated start time of every headless round.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// New constructs a Sim from the given options.
func New(opts ...Option) (*Sim, error) {
	s := &Sim{
		cfg:       round.DefaultConfig(),
		seed:      1,
		frameRate: 30,
		botSpeed:  9,
		dropRate:  0.1,
	}
	for _, o := range opts {
		o(s)
	}
	if s.frameRate <= 0 || s.frameRate > MaxFrameRate {
		return nil, fmt.Errorf("frame rate %d must be in (0, %d]: %w", s.frameRate, MaxFrameRate, round.ErrConfig)
	}
	engine, err := round.NewEngine(s.cfg, round.WithSeed(s.seed))
	if err != nil {
		return nil, err
	}
	s.Engine = engine
	s.Clock = round.NewManualClock(epoch)
	s.roundStart = epoch
	s.Bot = pointer.NewBot(engine, s.cfg.FrameWidth, s.cfg.FrameHeight, s.seed+7777)
	s.Bot.Speed = s.botSpeed
	s.Bot.DropRate = s.dropRate
	return s, nil
}

// FrameInterval is the simulated time between ticks.
func (s *Sim) FrameInterval() time.Duration {
	return time.Second / time.Duration(s.frameRate)
}

// RunTicks advances a running round up to n ticks and returns how many ran.
// Tick times are computed from the round start so they land exactly on whole
// seconds even when the frame interval does not divide a second.
func (s *Sim) RunTicks(n int) (int, error) {
	ran := 0
	for ran < n && s.Engine.IsRunning() {
		s.ticks++
		s.Clock.Set(s.roundStart.Add(time.Duration(s.ticks) * time.Second / time.Duration(s.frameRate)))
		if err := pointer.Advance(s.Engine, s.Bot, s.Clock.Now()); err != nil {
			return ran, err
		}
		ran++
	}
	return ran, nil
}

// RunRound starts a fresh round and plays it to the end.
func (s *Sim) RunRound() (round.Summary, error) {
	s.roundStart = s.Clock.Now()
	s.ticks = 0
	s.Engine.Start(s.roundStart)
	// One tick past the round duration is always enough to end it.
	maxTicks := int(s.cfg.GameDuration/s.FrameInterval()) + 2
	if _, err := s.RunTicks(maxTicks); err != nil {
		return round.Summary{}, err
	}
	if s.Engine.IsRunning() {
		return round.Summary{}, fmt.Errorf("round still running after %d ticks", maxTicks)
	}
	return s.Engine.Summary(), nil
}

// FirstTick returns the tick of the first event matching category and key,
// or -1 if none.
func (s *Sim) FirstTick(category, key string) int {
	for _, e := range s.Engine.Log().Entries() {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}
