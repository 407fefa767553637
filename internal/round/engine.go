package round

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// State is the session state of a round.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine owns a round: timer, active balls, trail and score. It is not safe
// for concurrent use; one loop drives it one tick at a time.
type Engine struct {
	cfg Config
	rng *rand.Rand
	log *EventLog

	state     State
	roundID   uuid.UUID
	score     int
	startTime time.Time
	endTime   time.Time
	balls     []Ball
	trail     *Trail
	tick      int
	nextID    int
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithRand sets the random source used for spawning.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSeed seeds a private random source for deterministic rounds.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	}
}

// WithEventLog records events into l instead of a private log.
func WithEventLog(l *EventLog) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// NewEngine validates cfg and returns an idle engine.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Tiers = append([]Tier(nil), cfg.Tiers...)
	e := &Engine{
		cfg:   cfg,
		trail: NewTrail(cfg.TrailCapacity),
		balls: make([]Ball, 0, cfg.BallCount),
	}
	for _, o := range opts {
		o(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}
	if e.log == nil {
		e.log = NewEventLog()
	}
	return e, nil
}

// Start begins a new round at now. It may be called in any state.
func (e *Engine) Start(now time.Time) {
	e.state = StateRunning
	e.roundID = uuid.New()
	e.score = 0
	e.startTime = now
	e.endTime = time.Time{}
	e.tick = 0
	e.trail.Clear()
	e.log.Reset()
	e.log.Add(Event{At: now, Category: CategoryRound, Key: KeyStart, Value: e.roundID.String()})

	e.balls = e.balls[:0]
	e.replenish(now)
}

// Restart is Start, named for the Ended → Running transition.
func (e *Engine) Restart(now time.Time) {
	e.Start(now)
}

// AdvanceFrame runs one tick: trail, collisions, expiry, replenish, timer.
// pointer is nil when no tracked point was detected this tick.
func (e *Engine) AdvanceFrame(pointer *Point, now time.Time) error {
	if e.state != StateRunning {
		return fmt.Errorf("advance frame while %s: %w", e.state, ErrInvalidState)
	}
	e.tick++

	if pointer != nil {
		e.trail.Push(*pointer)
		e.collect(*pointer, now)
	}
	e.expire(now)
	e.replenish(now)

	if now.Sub(e.startTime) >= e.cfg.GameDuration {
		e.state = StateEnded
		e.endTime = now
		e.log.Add(Event{Tick: e.tick, At: now, Category: CategoryRound, Key: KeyEnd,
			Points: e.score, Value: fmt.Sprintf("score=%d", e.score)})
	}
	return nil
}

// collect removes every ball whose hit box contains p. Overlapping balls
// are all collected in the same tick.
func (e *Engine) collect(p Point, now time.Time) {
	kept := e.balls[:0]
	for _, b := range e.balls {
		if !b.Hit(p, e.cfg.HitHalfWidth) {
			kept = append(kept, b)
			continue
		}
		e.score += b.Points()
		e.log.Add(e.ballEvent(KeyCollect, b, now))
	}
	e.balls = kept
}

func (e *Engine) expire(now time.Time) {
	kept := e.balls[:0]
	for _, b := range e.balls {
		if !b.Expired(now, e.cfg.BallLifetime) {
			kept = append(kept, b)
			continue
		}
		e.log.Add(e.ballEvent(KeyExpire, b, now))
	}
	e.balls = kept
}

func (e *Engine) replenish(now time.Time) {
	for len(e.balls) < e.cfg.BallCount {
		e.nextID++
		b := spawnBall(e.rng, &e.cfg, e.nextID, now)
		e.balls = append(e.balls, b)
		e.log.Add(e.ballEvent(KeySpawn, b, now))
	}
}

func (e *Engine) ballEvent(key string, b Ball, now time.Time) Event {
	return Event{
		Tick:     e.tick,
		At:       now,
		Category: CategoryBall,
		Key:      key,
		BallID:   b.ID,
		Tier:     b.Tier.Name,
		Points:   b.Points(),
		Value:    fmt.Sprintf("(%d,%d)", b.Pos.X, b.Pos.Y),
	}
}

// TimeRemaining returns whole seconds left in the round, never negative.
func (e *Engine) TimeRemaining(now time.Time) (int, error) {
	if e.state == StateIdle {
		return 0, fmt.Errorf("time remaining while %s: %w", e.state, ErrInvalidState)
	}
	left := e.cfg.GameDuration - now.Sub(e.startTime)
	if left < 0 {
		left = 0
	}
	return int(left / time.Second), nil
}

// IsRunning reports whether the round is in progress.
func (e *Engine) IsRunning() bool {
	return e.state == StateRunning
}

// State returns the session state.
func (e *Engine) State() State {
	return e.state
}

// Score returns the points collected this round.
func (e *Engine) Score() int {
	return e.score
}

// StartTime returns the time the current round started.
func (e *Engine) StartTime() time.Time {
	return e.startTime
}

// RoundID identifies the current round; it changes on every start.
func (e *Engine) RoundID() uuid.UUID {
	return e.roundID
}

// Tick returns the number of frames advanced this round.
func (e *Engine) Tick() int {
	return e.tick
}

// Balls returns a copy of the active balls in spawn order.
func (e *Engine) Balls() []Ball {
	return append([]Ball(nil), e.balls...)
}

// Trail returns the recorded pointer positions, oldest first.
func (e *Engine) Trail() []Point {
	return e.trail.Points()
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.Tiers = append([]Tier(nil), e.cfg.Tiers...)
	return cfg
}

// Log returns the event log for the current round.
func (e *Engine) Log() *EventLog {
	return e.log
}
