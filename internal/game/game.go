package game

import (
	"fmt"
	"image/color"
	"log"
	"strconv"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/config"
	"github.com/Garsondee/fingertip-catch/internal/pointer"
	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/Garsondee/fingertip-catch/internal/sound"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the play frame.
const borderWidth = 16

// hudScale is the integer upscale factor applied to the key legend.
const hudScale = 2

// ballRadius is the drawn radius; collisions use the engine's hit box.
const ballRadius = 15

var (
	trailColor  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	frameColor  = color.RGBA{R: 18, G: 26, B: 20, A: 255}
	borderColor = color.RGBA{R: 65, G: 90, B: 65, A: 255}
)

// Game is the ebiten frontend. Update advances the engine one tick from the
// active pointer source; Draw only reads post-tick state.
type Game struct {
	width   int
	height  int
	frameW  int
	frameH  int
	offX    int // pixel offset from window left to frame left
	offY    int // pixel offset from window top to frame top
	engine  *round.Engine
	clock   round.Clock
	feed    pointer.Source // nil when no tracker feed is configured
	useFeed bool
	sound   *sound.Player
	events  *EventPanel
	seen    int // engine event log index already forwarded

	showHUD  bool
	prevKeys map[ebiten.Key]bool
	status   string // transient line under the score (clipboard result)

	// Offscreen buffer for the key legend, rendered at 1x then scaled.
	hudBuf *ebiten.Image
}

// New builds a Game from settings. feed may be nil.
func New(s config.Settings, feed pointer.Source, player *sound.Player) (*Game, error) {
	engine, err := round.NewEngine(s.Round, s.EngineOptions()...)
	if err != nil {
		return nil, err
	}
	if feed != nil && s.Mirror {
		feed = pointer.Mirror{Src: feed, Width: s.Round.FrameWidth}
	}
	g := &Game{
		width:    borderWidth + s.Round.FrameWidth + borderWidth + panelWidth,
		height:   borderWidth + s.Round.FrameHeight + borderWidth,
		frameW:   s.Round.FrameWidth,
		frameH:   s.Round.FrameHeight,
		offX:     borderWidth,
		offY:     borderWidth,
		engine:   engine,
		clock:    round.SystemClock{},
		feed:     feed,
		useFeed:  feed != nil,
		sound:    player,
		events:   NewEventPanel(),
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
	}
	return g, nil
}

// Engine exposes the round engine, mostly for tests.
func (g *Game) Engine() *round.Engine {
	return g.engine
}

func (g *Game) Update() error {
	if quit := g.handleInput(); quit {
		return ebiten.Termination
	}
	return g.tick()
}

// tick advances a running round by one frame.
func (g *Game) tick() error {
	if !g.engine.IsRunning() {
		return nil
	}
	if err := pointer.Advance(g.engine, g.source(), g.clock.Now()); err != nil {
		return err
	}
	g.forwardEvents()
	if g.engine.State() == round.StateEnded {
		log.Printf("round %s ended: score %d", g.engine.RoundID(), g.engine.Score())
	}
	return nil
}

// source returns the pointer source for this tick.
func (g *Game) source() pointer.Source {
	if g.useFeed && g.feed != nil {
		return g.feed
	}
	return pointer.Func(func(_ time.Time) (round.Point, bool) {
		return g.cursorToFrame(ebiten.CursorPosition())
	})
}

// cursorToFrame maps window coordinates to frame coordinates. Outside the
// frame there is no pointer.
func (g *Game) cursorToFrame(mx, my int) (round.Point, bool) {
	x, y := mx-g.offX, my-g.offY
	if x < 0 || y < 0 || x >= g.frameW || y >= g.frameH {
		return round.Point{}, false
	}
	return round.Point{X: x, Y: y}, true
}

// forwardEvents hands new engine events to the sound player and the panel.
func (g *Game) forwardEvents() {
	l := g.engine.Log()
	for _, ev := range l.Since(g.seen) {
		g.events.Add(ev)
		if g.sound != nil {
			g.sound.Play(ev)
		}
	}
	g.seen = l.Len()
}

// start begins (or restarts) a round.
func (g *Game) start() {
	g.engine.Start(g.clock.Now())
	g.seen = 0
	g.status = ""
	g.forwardEvents()
}

// handleInput processes keypresses (edge-triggered). Returns true on quit.
func (g *Game) handleInput() bool {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}
	defer func() { g.prevKeys = currentKeys }()

	if pressed(ebiten.KeyEscape) {
		return true
	}

	// Space: start from idle. R: restart at any time.
	if pressed(ebiten.KeySpace) && g.engine.State() != round.StateRunning {
		g.start()
	}
	if pressed(ebiten.KeyR) && g.engine.State() != round.StateIdle {
		g.start()
	}

	// C: copy the round summary once the round is over.
	if pressed(ebiten.KeyC) && g.engine.State() == round.StateEnded {
		g.copySummary()
	}

	// F: switch between tracker feed and mouse.
	if pressed(ebiten.KeyF) && g.feed != nil {
		g.useFeed = !g.useFeed
	}

	// M: mute.
	if pressed(ebiten.KeyM) && g.sound != nil {
		g.sound.ToggleMute()
	}

	// H: toggle key legend.
	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	return false
}

func (g *Game) copySummary() {
	if err := clipboard.WriteAll(g.engine.Summary().String()); err != nil {
		// Atotto needs a clipboard backend on Linux (xclip/xsel).
		log.Println("clipboard copy failed:", err)
		g.status = "Copy failed (no clipboard backend)"
		return
	}
	g.status = "Summary copied to clipboard."
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	ox := float32(g.offX)
	oy := float32(g.offY)
	fw := float32(g.frameW)
	fh := float32(g.frameH)
	vector.FillRect(screen, ox, oy, fw, fh, frameColor, false)
	vector.StrokeRect(screen, ox-1, oy-1, fw+2, fh+2, 2.0, borderColor, false)

	g.drawTrail(screen)
	g.drawBalls(screen)

	for i, line := range g.statusLines() {
		ebitenutil.DebugPrintAt(screen, line, g.offX+8, g.offY+6+i*16)
	}

	g.events.Draw(screen, g.offX+g.frameW+borderWidth, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
}

// drawTrail connects consecutive trail points with thick segments.
func (g *Game) drawTrail(screen *ebiten.Image) {
	pts := g.engine.Trail()
	ox := float32(g.offX)
	oy := float32(g.offY)
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		vector.StrokeLine(screen,
			ox+float32(a.X), oy+float32(a.Y),
			ox+float32(b.X), oy+float32(b.Y),
			5, trailColor, true)
	}
	if n := len(pts); n > 0 && g.engine.IsRunning() {
		tip := pts[n-1]
		vector.StrokeCircle(screen, ox+float32(tip.X), oy+float32(tip.Y), 6, 1.5, color.White, true)
	}
}

// drawBalls renders each active ball as a filled tier-coloured disc with
// its point value on top.
func (g *Game) drawBalls(screen *ebiten.Image) {
	if g.engine.State() == round.StateIdle {
		return
	}
	for _, b := range g.engine.Balls() {
		cx := float32(g.offX + b.Pos.X)
		cy := float32(g.offY + b.Pos.Y)
		vector.FillCircle(screen, cx, cy, ballRadius, b.Tier.Color, true)
		label := strconv.Itoa(b.Points())
		text.Draw(screen, label, basicfont.Face7x13, g.offX+b.Pos.X-3*len(label), g.offY+b.Pos.Y+4, color.White)
	}
}

// statusLines is the score/time block drawn in the frame's top-left corner.
func (g *Game) statusLines() []string {
	switch g.engine.State() {
	case round.StateIdle:
		return []string{"Press SPACE to start"}
	case round.StateEnded:
		lines := []string{
			fmt.Sprintf("Game Over! Your Score: %d", g.engine.Score()),
			"R=restart  C=copy summary",
		}
		if g.status != "" {
			lines = append(lines, g.status)
		}
		return lines
	}
	left, _ := g.engine.TimeRemaining(g.clock.Now())
	src := "mouse"
	if g.useFeed {
		src = "tracker"
	}
	return []string{
		fmt.Sprintf("Score: %d", g.engine.Score()),
		fmt.Sprintf("Time Left: %ds", left),
		"Pointer: " + src,
	}
}

// drawHUD renders keyboard shortcut hints in the bottom-left corner.
// Text is drawn into hudBuf at 1x then composited onto the screen at hudScale.
func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		"SPACE=start  R=restart  ESC=quit",
		"M=mute  H=toggle help",
	}
	if g.feed != nil {
		lines = append(lines, "F=switch mouse/tracker")
	}

	const lineH = 12 // debug font line height at 1x
	const charW = 6  // debug font char width at 1x
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	if g.hudBuf == nil {
		g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	}
	bufH := float32(g.height / hudScale)
	bx := float32(g.offX / hudScale)
	by := bufH - boxH - float32(g.offY/hudScale)

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH,
		color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH,
		1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)

	for i, line := range lines {
		tx := int(bx) + padX
		ty := int(by) + padY + i*lineH
		ebitenutil.DebugPrintAt(g.hudBuf, line, tx, ty)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// WindowSize returns the logical screen size.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}
