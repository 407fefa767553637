// Package tui is a terminal frontend: the mouse over the terminal grid is
// the pointer, balls and the trail are drawn as cells.
package tui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/config"
	"github.com/Garsondee/fingertip-catch/internal/pointer"
	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/Garsondee/fingertip-catch/internal/sound"
	"github.com/gdamore/tcell/v2"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	statusRows    = 1
	trailRune     = '·'
)

// App drives one engine from tcell events and a frame ticker.
type App struct {
	screen tcell.Screen
	engine *round.Engine
	clock  round.Clock
	sound  *sound.Player

	feed    pointer.Source // nil when no tracker feed is configured
	useFeed bool

	width, height  int // terminal cells
	frameW, frameH int

	mouse   round.Point
	mouseIn bool
	seen    int
	message string // summary of the last finished round
}

// New wraps an initialised screen. feed and player may be nil.
func New(screen tcell.Screen, s config.Settings, feed pointer.Source, player *sound.Player) (*App, error) {
	engine, err := round.NewEngine(s.Round, s.EngineOptions()...)
	if err != nil {
		return nil, err
	}
	if feed != nil && s.Mirror {
		feed = pointer.Mirror{Src: feed, Width: s.Round.FrameWidth}
	}
	a := &App{
		screen:  screen,
		engine:  engine,
		clock:   round.SystemClock{},
		sound:   player,
		feed:    feed,
		useFeed: feed != nil,
		frameW:  s.Round.FrameWidth,
		frameH:  s.Round.FrameHeight,
	}
	a.width, a.height = screen.Size()
	return a, nil
}

// Engine exposes the round engine.
func (a *App) Engine() *round.Engine {
	return a.engine
}

// Run polls events and ticks until quit or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse(tcell.MouseMotionEvents)
	defer a.screen.DisableMouse()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if err := a.tick(); err != nil {
				return err
			}
			a.draw()
		}
	}
}

// handleEvent returns false when the player quits.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if !a.engine.IsRunning() {
				a.start()
			}
		case 'r':
			if a.engine.State() != round.StateIdle {
				a.start()
			}
		case 'f':
			if a.feed != nil {
				a.useFeed = !a.useFeed
			}
		case 'm':
			if a.sound != nil {
				a.sound.ToggleMute()
			}
		}

	case *tcell.EventMouse:
		cx, cy := ev.Position()
		a.mouse, a.mouseIn = a.cellToFrame(cx, cy)

	case *tcell.EventResize:
		a.width, a.height = a.screen.Size()
		a.screen.Sync()
	}
	return true
}

func (a *App) start() {
	a.engine.Start(a.clock.Now())
	a.seen = 0
	a.message = ""
	a.forwardEvents()
}

func (a *App) tick() error {
	if !a.engine.IsRunning() {
		return nil
	}
	if err := pointer.Advance(a.engine, a.source(), a.clock.Now()); err != nil {
		return err
	}
	a.forwardEvents()
	if a.engine.State() == round.StateEnded {
		a.message = a.engine.Summary().String()
		log.Printf("round %s ended: score %d", a.engine.RoundID(), a.engine.Score())
	}
	return nil
}

func (a *App) source() pointer.Source {
	if a.useFeed && a.feed != nil {
		return a.feed
	}
	return pointer.Func(func(time.Time) (round.Point, bool) {
		return a.mouse, a.mouseIn
	})
}

func (a *App) forwardEvents() {
	l := a.engine.Log()
	if a.sound != nil {
		for _, ev := range l.Since(a.seen) {
			a.sound.Play(ev)
		}
	}
	a.seen = l.Len()
}

// playRows is the number of terminal rows used for the frame.
func (a *App) playRows() int {
	return a.height - statusRows
}

// cellToFrame maps a terminal cell to the frame coordinate at its centre.
func (a *App) cellToFrame(cx, cy int) (round.Point, bool) {
	rows := a.playRows()
	cy -= statusRows
	if a.width <= 0 || rows <= 0 || cx < 0 || cy < 0 || cx >= a.width || cy >= rows {
		return round.Point{}, false
	}
	x := (2*cx + 1) * a.frameW / (2 * a.width)
	y := (2*cy + 1) * a.frameH / (2 * rows)
	return round.Point{X: x, Y: y}, true
}

// frameToCell maps a frame coordinate to the terminal cell containing it.
func (a *App) frameToCell(p round.Point) (int, int) {
	cx := p.X * a.width / a.frameW
	cy := p.Y*a.playRows()/a.frameH + statusRows
	return cx, cy
}

func (a *App) draw() {
	a.screen.Clear()
	a.drawStatus()

	if a.engine.State() != round.StateIdle {
		a.drawTrail()
		for _, b := range a.engine.Balls() {
			cx, cy := a.frameToCell(b.Pos)
			c := b.Tier.Color
			style := tcell.StyleDefault.
				Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))).
				Foreground(tcell.ColorBlack).Bold(true)
			a.screen.SetContent(cx, cy, rune('0'+b.Points()%10), nil, style)
		}
	}

	if a.engine.IsRunning() && a.mouseIn && !a.useFeed {
		cx, cy := a.frameToCell(a.mouse)
		a.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true))
	}

	if a.engine.State() == round.StateEnded {
		lines := []string{fmt.Sprintf("Game Over! Your Score: %d", a.engine.Score())}
		if a.message != "" {
			lines = strings.Split(a.message, "\n")
		}
		for i, l := range lines {
			a.drawCentered(l, i)
		}
		a.drawCentered("r=restart  q=quit", len(lines)+1)
	}
	if a.engine.State() == round.StateIdle {
		a.drawCentered("Press SPACE to start", 0)
	}
	a.screen.Show()
}

// drawTrail interpolates between consecutive trail samples so fast moves
// still read as a continuous line on the coarse grid.
func (a *App) drawTrail() {
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	pts := a.engine.Trail()
	for i := 0; i+1 < len(pts); i++ {
		x0, y0 := a.frameToCell(pts[i])
		x1, y1 := a.frameToCell(pts[i+1])
		steps := maxInt(absInt(x1-x0), absInt(y1-y0))
		for s := 0; s <= steps; s++ {
			x, y := x0, y0
			if steps > 0 {
				x = x0 + (x1-x0)*s/steps
				y = y0 + (y1-y0)*s/steps
			}
			a.screen.SetContent(x, y, trailRune, nil, style)
		}
	}
}

func (a *App) drawStatus() {
	var line string
	switch a.engine.State() {
	case round.StateIdle:
		line = "Fingertip Catch  SPACE=start  q=quit"
	default:
		left, _ := a.engine.TimeRemaining(a.clock.Now())
		src := "mouse"
		if a.useFeed {
			src = "tracker"
		}
		line = "Score: " + strconv.Itoa(a.engine.Score()) +
			"  Time Left: " + strconv.Itoa(left) + "s  Pointer: " + src
	}
	a.drawText(0, 0, line, tcell.StyleDefault.Reverse(true))
}

func (a *App) drawCentered(s string, rowOffset int) {
	x := (a.width - len(s)) / 2
	y := statusRows + a.playRows()/2 + rowOffset
	a.drawText(x, y, s, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		a.screen.SetContent(x+i, y, r, nil, style)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
