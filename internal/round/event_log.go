package round

import (
	"fmt"
	"strings"
	"time"
)

// Event categories and keys recorded by the engine.
const (
	CategoryRound = "round"
	CategoryBall  = "ball"

	KeyStart   = "start"
	KeyEnd     = "end"
	KeySpawn   = "spawn"
	KeyCollect = "collect"
	KeyExpire  = "expire"
)

// Event is one recorded engine event.
type Event struct {
	Tick     int
	At       time.Time
	Category string // round, ball
	Key      string // start, end, spawn, collect, expire
	BallID   int    // 0 for round events
	Tier     string
	Points   int
	Value    string
}

// String formats the event as a fixed-width log line.
//
//	[T=0042] ball    collect    #7 high +3
func (e Event) String() string {
	if e.Category == CategoryBall {
		return fmt.Sprintf("[T=%04d] %-7s %-10s #%d %s +%d",
			e.Tick, e.Category, e.Key, e.BallID, e.Tier, e.Points)
	}
	return fmt.Sprintf("[T=%04d] %-7s %-10s %s", e.Tick, e.Category, e.Key, e.Value)
}

// EventLog collects engine events for the current round. It is unbounded;
// a round is short and Reset is called on every start.
type EventLog struct {
	entries []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Add records an event.
func (l *EventLog) Add(e Event) {
	l.entries = append(l.entries, e)
}

// Reset drops all entries.
func (l *EventLog) Reset() {
	l.entries = l.entries[:0]
}

// Entries returns all recorded events.
func (l *EventLog) Entries() []Event {
	return l.entries
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	return len(l.entries)
}

// Since returns events recorded at or after index i. Frontends keep the
// index they last saw to react to new collections.
func (l *EventLog) Since(i int) []Event {
	if i < 0 {
		i = 0
	}
	if i >= len(l.entries) {
		return nil
	}
	return l.entries[i:]
}

// Filter returns events matching category and/or key.
// Pass empty string to match any value for that field.
func (l *EventLog) Filter(category, key string) []Event {
	var out []Event
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// CountCategory returns how many events match category and key.
func (l *EventLog) CountCategory(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent event matching category+key, or false if none.
func (l *EventLog) LastOf(category, key string) (Event, bool) {
	events := l.Filter(category, key)
	if len(events) == 0 {
		return Event{}, false
	}
	return events[len(events)-1], true
}

// Format renders the whole log, one event per line.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
