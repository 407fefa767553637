package game

import (
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/config"
	"github.com/Garsondee/fingertip-catch/internal/pointer"
	"github.com/Garsondee/fingertip-catch/internal/round"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestGame(t *testing.T, feed pointer.Source) (*Game, *round.ManualClock) {
	t.Helper()
	s := config.Default()
	s.Seed = 3
	g, err := New(s, feed, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clock := round.NewManualClock(t0)
	g.clock = clock
	return g, clock
}

func TestCursorToFrame(t *testing.T) {
	g, _ := newTestGame(t, nil)
	cases := []struct {
		mx, my int
		want   round.Point
		ok     bool
	}{
		{borderWidth, borderWidth, round.Point{X: 0, Y: 0}, true},
		{borderWidth + 639, borderWidth + 479, round.Point{X: 639, Y: 479}, true},
		{borderWidth + 640, borderWidth + 10, round.Point{}, false},
		{borderWidth - 1, borderWidth + 10, round.Point{}, false},
		{borderWidth + 100, borderWidth + 480, round.Point{}, false},
	}
	for _, tc := range cases {
		got, ok := g.cursorToFrame(tc.mx, tc.my)
		if ok != tc.ok || got != tc.want {
			t.Errorf("cursorToFrame(%d,%d) = %v,%v want %v,%v", tc.mx, tc.my, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLayoutIncludesPanel(t *testing.T) {
	g, _ := newTestGame(t, nil)
	w, h := g.Layout(0, 0)
	if w != borderWidth*2+640+panelWidth || h != borderWidth*2+480 {
		t.Fatalf("layout = %dx%d", w, h)
	}
}

func TestStatusLinesFollowRound(t *testing.T) {
	g, clock := newTestGame(t, pointer.Fixed{Absent: true})

	if lines := g.statusLines(); len(lines) != 1 || !strings.Contains(lines[0], "SPACE") {
		t.Fatalf("idle status = %v", lines)
	}

	g.start()
	clock.Advance(10*time.Second + 500*time.Millisecond)
	lines := g.statusLines()
	if lines[0] != "Score: 0" || lines[1] != "Time Left: 49s" || lines[2] != "Pointer: tracker" {
		t.Fatalf("running status = %v", lines)
	}

	clock.Advance(50 * time.Second)
	if err := g.tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if g.engine.State() != round.StateEnded {
		t.Fatalf("state = %s, want ended", g.engine.State())
	}
	if lines := g.statusLines(); !strings.HasPrefix(lines[0], "Game Over! Your Score: 0") {
		t.Fatalf("ended status = %v", lines)
	}
}

func TestTickUsesFeedAndForwardsEvents(t *testing.T) {
	g, clock := newTestGame(t, pointer.Fixed{P: round.Point{X: 5, Y: 5}})
	g.start()
	if got := len(g.events.Recent()); got != 1 {
		t.Fatalf("panel entries after start = %d, want 1 (spawns are skipped)", got)
	}

	clock.Advance(time.Second / 60)
	if err := g.tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	trail := g.engine.Trail()
	if len(trail) != 1 || trail[0] != (round.Point{X: 5, Y: 5}) {
		t.Fatalf("trail = %v, want the feed sample", trail)
	}
	if g.seen != g.engine.Log().Len() {
		t.Fatalf("seen = %d, log len = %d", g.seen, g.engine.Log().Len())
	}
}

func TestMirrorAppliesToFeed(t *testing.T) {
	s := config.Default()
	s.Mirror = true
	g, err := New(s, pointer.Fixed{P: round.Point{X: 0, Y: 7}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p, ok := g.source().Sample(t0)
	if !ok || p != (round.Point{X: 639, Y: 7}) {
		t.Fatalf("mirrored feed sample = %v ok=%v", p, ok)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	s := config.Default()
	s.Round.BallCount = 0
	if _, err := New(s, nil, nil); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestEventPanelRingBuffer(t *testing.T) {
	p := NewEventPanel()
	p.Add(round.Event{Category: round.CategoryBall, Key: round.KeySpawn})
	if len(p.Recent()) != 0 {
		t.Fatalf("spawn events should be skipped")
	}
	for i := 0; i < panelMaxEntries+3; i++ {
		p.Add(round.Event{Tick: i, Category: round.CategoryBall, Key: round.KeyCollect, Tier: "low", Points: 1})
	}
	recent := p.Recent()
	if len(recent) != panelMaxEntries {
		t.Fatalf("len = %d, want %d", len(recent), panelMaxEntries)
	}
	if recent[0].Tick != 3 || recent[len(recent)-1].Tick != panelMaxEntries+2 {
		t.Fatalf("ring order wrong: first=%d last=%d", recent[0].Tick, recent[len(recent)-1].Tick)
	}
	if !strings.HasPrefix(recent[0].Message, "+1 low") {
		t.Fatalf("message = %q", recent[0].Message)
	}
}
