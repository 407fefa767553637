package game

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelWidth      = 220
	panelMaxEntries = 40
	panelLineHeight = 14
)

// PanelEntry is a single line in the event panel.
type PanelEntry struct {
	Tick    int
	Message string
	Color   color.RGBA
}

// EventPanel is a ring buffer of round events rendered beside the frame.
type EventPanel struct {
	entries []PanelEntry
	head    int
	count   int
}

// NewEventPanel creates a panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]PanelEntry, panelMaxEntries),
	}
}

// Add records an engine event. Spawns are too frequent to be interesting
// and are skipped.
func (p *EventPanel) Add(ev round.Event) {
	entry, ok := panelEntryFor(ev)
	if !ok {
		return
	}
	p.entries[p.head] = entry
	p.head = (p.head + 1) % panelMaxEntries
	if p.count < panelMaxEntries {
		p.count++
	}
}

func panelEntryFor(ev round.Event) (PanelEntry, bool) {
	e := PanelEntry{Tick: ev.Tick}
	switch {
	case ev.Category == round.CategoryBall && ev.Key == round.KeyCollect:
		e.Message = fmt.Sprintf("+%d %s %s", ev.Points, ev.Tier, ev.Value)
		e.Color = color.RGBA{R: 90, G: 220, B: 90, A: 255}
	case ev.Category == round.CategoryBall && ev.Key == round.KeyExpire:
		e.Message = fmt.Sprintf("missed %s", ev.Tier)
		e.Color = color.RGBA{R: 110, G: 110, B: 110, A: 255}
	case ev.Category == round.CategoryRound && ev.Key == round.KeyStart:
		e.Message = "round start"
		e.Color = color.RGBA{R: 70, G: 110, B: 210, A: 255}
	case ev.Category == round.CategoryRound && ev.Key == round.KeyEnd:
		e.Message = "game over " + ev.Value
		e.Color = color.RGBA{R: 210, G: 70, B: 70, A: 255}
	default:
		return PanelEntry{}, false
	}
	return e, true
}

// Recent returns entries in chronological order (oldest first).
func (p *EventPanel) Recent() []PanelEntry {
	result := make([]PanelEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + panelMaxEntries) % panelMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

// Draw renders the panel with its left edge at panelX.
func (p *EventPanel) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(panelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(panelWidth), 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 0)

	entries := p.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / panelLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	y := 20
	for _, e := range entries[startIdx:] {
		vector.FillRect(screen, float32(panelX+5), float32(y+5), 3, 5, e.Color, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%4d %s", e.Tick, e.Message), panelX+12, y)
		y += panelLineHeight
	}
}
