package round

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, mutate ...func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	e, err := NewEngine(cfg, WithSeed(7))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// placeBalls replaces the active set with balls at the given positions, all
// in the given tier and spawned at spawn.
func placeBalls(e *Engine, tier Tier, spawn time.Time, pos ...Point) {
	e.balls = e.balls[:0]
	for i, p := range pos {
		e.balls = append(e.balls, Ball{ID: 1000 + i, Pos: p, Tier: tier, SpawnedAt: spawn})
	}
}

func hasBall(e *Engine, id int) bool {
	for _, b := range e.Balls() {
		if b.ID == id {
			return true
		}
	}
	return false
}

func TestStartInitialisesRound(t *testing.T) {
	e := newTestEngine(t)
	if e.State() != StateIdle {
		t.Fatalf("new engine state = %s, want idle", e.State())
	}
	e.Start(t0)

	if !e.IsRunning() {
		t.Fatalf("expected running after Start, got %s", e.State())
	}
	if e.Score() != 0 {
		t.Fatalf("score = %d, want 0", e.Score())
	}
	if !e.StartTime().Equal(t0) {
		t.Fatalf("start time = %v, want %v", e.StartTime(), t0)
	}
	balls := e.Balls()
	if len(balls) != 3 {
		t.Fatalf("ball count = %d, want 3", len(balls))
	}
	for _, b := range balls {
		if !b.SpawnedAt.Equal(t0) {
			t.Errorf("ball %d spawned at %v, want %v", b.ID, b.SpawnedAt, t0)
		}
	}
	if len(e.Trail()) != 0 {
		t.Fatalf("trail should be empty after Start, got %d points", len(e.Trail()))
	}
}

func TestCollisionCollectsBallAndReplaces(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	tier := e.cfg.Tiers[2]
	placeBalls(e, tier, t0, Point{100, 100}, Point{500, 400}, Point{300, 60})

	now := t0.Add(100 * time.Millisecond)
	if err := e.AdvanceFrame(&Point{110, 108}, now); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if e.Score() != tier.Points {
		t.Fatalf("score = %d, want %d", e.Score(), tier.Points)
	}
	if hasBall(e, 1000) {
		t.Fatalf("collected ball 1000 still active")
	}
	if !hasBall(e, 1001) || !hasBall(e, 1002) {
		t.Fatalf("untouched balls were removed")
	}
	if n := len(e.Balls()); n != 3 {
		t.Fatalf("ball count after collect = %d, want 3", n)
	}
	for _, b := range e.Balls() {
		if b.ID >= 1000 {
			continue
		}
		if !b.SpawnedAt.Equal(now) {
			t.Fatalf("replacement spawned at %v, want %v", b.SpawnedAt, now)
		}
	}
}

func TestCollisionBoundaryIsExclusive(t *testing.T) {
	cases := []struct {
		name    string
		pointer Point
		hit     bool
	}{
		{"dx=20", Point{120, 100}, false},
		{"dy=20", Point{100, 120}, false},
		{"dx=-20", Point{80, 100}, false},
		{"dx=19 dy=19", Point{119, 119}, true},
		{"dx=-19 dy=-19", Point{81, 81}, true},
		{"centre", Point{100, 100}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.Start(t0)
			placeBalls(e, e.cfg.Tiers[0], t0, Point{100, 100}, Point{500, 400}, Point{400, 300})

			if err := e.AdvanceFrame(&tc.pointer, t0.Add(time.Second)); err != nil {
				t.Fatalf("AdvanceFrame: %v", err)
			}
			if got := !hasBall(e, 1000); got != tc.hit {
				t.Fatalf("pointer %v collected=%v, want %v", tc.pointer, got, tc.hit)
			}
			wantScore := 0
			if tc.hit {
				wantScore = 1
			}
			if e.Score() != wantScore {
				t.Fatalf("score = %d, want %d", e.Score(), wantScore)
			}
		})
	}
}

func TestOverlappingBallsAreAllCollected(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	placeBalls(e, e.cfg.Tiers[1], t0, Point{100, 100}, Point{110, 110}, Point{500, 400})

	if err := e.AdvanceFrame(&Point{105, 105}, t0.Add(time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if hasBall(e, 1000) || hasBall(e, 1001) {
		t.Fatalf("expected both overlapping balls collected")
	}
	if e.Score() != 4 {
		t.Fatalf("score = %d, want 4 (two mid balls)", e.Score())
	}
	if got := e.Log().CountCategory(CategoryBall, KeyCollect); got != 2 {
		t.Fatalf("collect events = %d, want 2", got)
	}
	if n := len(e.Balls()); n != 3 {
		t.Fatalf("ball count = %d, want 3", n)
	}
}

func TestAbsentPointerSkipsTrailAndCollision(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	placeBalls(e, e.cfg.Tiers[0], t0, Point{100, 100}, Point{500, 400}, Point{400, 300})

	if err := e.AdvanceFrame(nil, t0.Add(time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if len(e.Trail()) != 0 {
		t.Fatalf("trail grew without a pointer")
	}
	if e.Score() != 0 || !hasBall(e, 1000) {
		t.Fatalf("absent pointer changed score or balls")
	}
}

func TestExpiryReplacesBallAtLifetime(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	placeBalls(e, e.cfg.Tiers[0], t0, Point{100, 100}, Point{500, 400}, Point{400, 300})

	almost := t0.Add(5*time.Second - time.Millisecond)
	if err := e.AdvanceFrame(nil, almost); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	for id := 1000; id < 1003; id++ {
		if !hasBall(e, id) {
			t.Fatalf("ball %d expired before its lifetime", id)
		}
	}

	at := t0.Add(5 * time.Second)
	if err := e.AdvanceFrame(nil, at); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	balls := e.Balls()
	if len(balls) != 3 {
		t.Fatalf("ball count = %d, want 3", len(balls))
	}
	for _, b := range balls {
		if b.ID >= 1000 {
			t.Fatalf("ball %d survived past its lifetime", b.ID)
		}
		if !b.SpawnedAt.Equal(at) {
			t.Fatalf("replacement spawned at %v, want %v", b.SpawnedAt, at)
		}
	}
	if got := e.Log().CountCategory(CategoryBall, KeyExpire); got != 3 {
		t.Fatalf("expire events = %d, want 3", got)
	}
	if e.Score() != 0 {
		t.Fatalf("expiry must not score, got %d", e.Score())
	}
}

func TestTimerEndsRound(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)

	if err := e.AdvanceFrame(nil, t0.Add(59*time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if !e.IsRunning() {
		t.Fatalf("round ended early")
	}
	if left, _ := e.TimeRemaining(t0.Add(59 * time.Second)); left != 1 {
		t.Fatalf("time remaining = %d, want 1", left)
	}

	end := t0.Add(60 * time.Second)
	if err := e.AdvanceFrame(nil, end); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if e.State() != StateEnded {
		t.Fatalf("state = %s, want ended", e.State())
	}
	left, err := e.TimeRemaining(end)
	if err != nil {
		t.Fatalf("TimeRemaining after end: %v", err)
	}
	if left != 0 {
		t.Fatalf("time remaining = %d, want 0", left)
	}
	if left, _ := e.TimeRemaining(end.Add(time.Hour)); left != 0 {
		t.Fatalf("time remaining long after end = %d, want 0", left)
	}
	if _, ok := e.Log().LastOf(CategoryRound, KeyEnd); !ok {
		t.Fatalf("expected round end event")
	}
}

func TestTimerEndsRoundWhenTickIsLate(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	if err := e.AdvanceFrame(nil, t0.Add(90*time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if e.State() != StateEnded {
		t.Fatalf("state = %s, want ended", e.State())
	}
}

func TestTimeRemainingFloorsSeconds(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 60},
		{500 * time.Millisecond, 59},
		{30*time.Second + 999*time.Millisecond, 29},
		{59*time.Second + time.Millisecond, 0},
	}
	for _, tc := range cases {
		got, err := e.TimeRemaining(t0.Add(tc.elapsed))
		if err != nil {
			t.Fatalf("TimeRemaining(%s): %v", tc.elapsed, err)
		}
		if got != tc.want {
			t.Errorf("TimeRemaining(%s) = %d, want %d", tc.elapsed, got, tc.want)
		}
	}
}

func TestIdleGuard(t *testing.T) {
	e := newTestEngine(t)

	err := e.AdvanceFrame(&Point{100, 100}, t0)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("AdvanceFrame while idle: err = %v, want ErrInvalidState", err)
	}
	if e.State() != StateIdle || e.Score() != 0 || len(e.Balls()) != 0 ||
		len(e.Trail()) != 0 || len(e.Log().Entries()) != 0 || e.Tick() != 0 {
		t.Fatalf("idle AdvanceFrame changed state")
	}

	if _, err := e.TimeRemaining(t0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("TimeRemaining while idle: err = %v, want ErrInvalidState", err)
	}
}

func TestEndedGuard(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	if err := e.AdvanceFrame(nil, t0.Add(60*time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	score, balls, trail := e.Score(), e.Balls(), e.Trail()

	err := e.AdvanceFrame(&Point{100, 100}, t0.Add(61*time.Second))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("AdvanceFrame while ended: err = %v, want ErrInvalidState", err)
	}
	if e.Score() != score || len(e.Balls()) != len(balls) || len(e.Trail()) != len(trail) {
		t.Fatalf("ended AdvanceFrame changed state")
	}
}

func TestRestartResetsRound(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	placeBalls(e, e.cfg.Tiers[2], t0, Point{100, 100}, Point{500, 400}, Point{400, 300})
	if err := e.AdvanceFrame(&Point{100, 100}, t0.Add(time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if err := e.AdvanceFrame(&Point{200, 200}, t0.Add(60*time.Second)); err != nil {
		t.Fatalf("AdvanceFrame: %v", err)
	}
	if e.State() != StateEnded || e.Score() == 0 {
		t.Fatalf("setup: state=%s score=%d", e.State(), e.Score())
	}
	oldID := e.RoundID()

	t1 := t0.Add(2 * time.Minute)
	e.Restart(t1)
	if e.State() != StateRunning {
		t.Fatalf("state after restart = %s, want running", e.State())
	}
	if e.Score() != 0 {
		t.Fatalf("score after restart = %d, want 0", e.Score())
	}
	if len(e.Trail()) != 0 {
		t.Fatalf("trail after restart has %d points", len(e.Trail()))
	}
	if !e.StartTime().Equal(t1) {
		t.Fatalf("start time = %v, want %v", e.StartTime(), t1)
	}
	balls := e.Balls()
	if len(balls) != 3 {
		t.Fatalf("ball count after restart = %d, want 3", len(balls))
	}
	for _, b := range balls {
		if !b.SpawnedAt.Equal(t1) {
			t.Fatalf("ball %d spawned at %v, want %v", b.ID, b.SpawnedAt, t1)
		}
	}
	if e.RoundID() == oldID {
		t.Fatalf("restart kept the old round id")
	}
	if left, _ := e.TimeRemaining(t1); left != 60 {
		t.Fatalf("time remaining after restart = %d, want 60", left)
	}
}

func TestSpawnStaysInsideMargin(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.FrameWidth = 120
		c.FrameHeight = 110
		c.SpawnMargin = 50
	})
	now := t0
	e.Start(now)
	seenX := map[int]bool{}
	for i := 0; i < 500; i++ {
		now = now.Add(6 * time.Second)
		e.Start(now)
		for _, b := range e.Balls() {
			if b.Pos.X < 50 || b.Pos.X > 70 || b.Pos.Y < 50 || b.Pos.Y > 60 {
				t.Fatalf("ball spawned outside margin rectangle: %v", b.Pos)
			}
			seenX[b.Pos.X] = true
		}
	}
	if !seenX[50] || !seenX[70] {
		t.Fatalf("spawn range should include both edges, saw %v", seenX)
	}
}

func TestZeroAreaSpawnRectangle(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.FrameWidth = 100
		c.FrameHeight = 100
		c.SpawnMargin = 50
	})
	e.Start(t0)
	for _, b := range e.Balls() {
		if b.Pos != (Point{50, 50}) {
			t.Fatalf("ball at %v, want (50,50)", b.Pos)
		}
	}
}

func TestSeededEnginesAreDeterministic(t *testing.T) {
	a, _ := NewEngine(DefaultConfig(), WithSeed(99))
	b, _ := NewEngine(DefaultConfig(), WithSeed(99))
	a.Start(t0)
	b.Start(t0)
	for i := 1; i <= 300; i++ {
		now := t0.Add(time.Duration(i) * 100 * time.Millisecond)
		p := &Point{X: (i * 37) % 640, Y: (i * 53) % 480}
		if err := a.AdvanceFrame(p, now); err != nil {
			t.Fatalf("a: %v", err)
		}
		if err := b.AdvanceFrame(p, now); err != nil {
			t.Fatalf("b: %v", err)
		}
	}
	if a.Score() != b.Score() {
		t.Fatalf("scores diverged: %d vs %d", a.Score(), b.Score())
	}
	ab, bb := a.Balls(), b.Balls()
	for i := range ab {
		if ab[i].Pos != bb[i].Pos || ab[i].Tier.Name != bb[i].Tier.Name {
			t.Fatalf("ball %d diverged: %+v vs %+v", i, ab[i], bb[i])
		}
	}
}

func TestBallsReturnsCopy(t *testing.T) {
	e := newTestEngine(t)
	e.Start(t0)
	balls := e.Balls()
	balls[0].Pos = Point{-1, -1}
	if e.Balls()[0].Pos == (Point{-1, -1}) {
		t.Fatalf("Balls exposed internal storage")
	}
}
