// Package sound plays short tones for round events.
package sound

import (
	"log"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Speaker hooks; tests replace them to run without an audio device.
var (
	openSpeaker = func() error {
		return speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	}
	playStreamer = func(s beep.Streamer) { speaker.Play(s) }
	closeSpeaker = speaker.Close
)

// Player plays tones on the default audio device. The device is opened the
// first time the player is unmuted; if that fails the player stays silent.
type Player struct {
	muted  bool
	ready  bool
	failed bool
}

// NewPlayer returns a player, opening the speaker unless muted.
func NewPlayer(muted bool) *Player {
	p := &Player{}
	p.SetMuted(muted)
	return p
}

// Muted reports whether tones are suppressed.
func (p *Player) Muted() bool {
	return p.muted
}

// SetMuted mutes or unmutes the player. Unmuting opens the speaker if it has
// not been opened yet. Audio is optional, so an open failure is logged once.
func (p *Player) SetMuted(muted bool) {
	p.muted = muted
	if muted || p.ready || p.failed {
		return
	}
	if err := openSpeaker(); err != nil {
		log.Printf("audio initialization failed: %v", err)
		p.failed = true
		return
	}
	p.ready = true
}

// ToggleMute flips the mute state and returns the new one.
func (p *Player) ToggleMute() bool {
	p.SetMuted(!p.muted)
	return p.muted
}

// Play sounds the tone for e. Only collections and round end make noise.
func (p *Player) Play(e round.Event) {
	freq, d, ok := toneFor(e)
	if !ok || !p.ready || p.muted {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	playStreamer(beep.Take(sampleRate.N(d), sine))
}

// Close releases the speaker.
func (p *Player) Close() {
	if p.ready {
		closeSpeaker()
		p.ready = false
	}
}

// toneFor maps an event to a tone: higher tiers chirp higher.
func toneFor(e round.Event) (freq float64, d time.Duration, ok bool) {
	switch {
	case e.Category == round.CategoryBall && e.Key == round.KeyCollect:
		return 440 + 220*float64(e.Points), 60 * time.Millisecond, true
	case e.Category == round.CategoryRound && e.Key == round.KeyEnd:
		return 220, 400 * time.Millisecond, true
	}
	return 0, 0, false
}
