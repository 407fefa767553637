package pointer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/gorilla/websocket"
)

// Sample is one message from a tracker. With Normalized set, X and Y are
// landmark coordinates in [0,1] and are scaled to the frame; otherwise they
// are frame units. Present=false reports that no hand is visible.
type Sample struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Normalized bool    `json:"normalized,omitempty"`
	Present    *bool   `json:"present,omitempty"`
}

type feedReply struct {
	Error string `json:"error,omitempty"`
}

// feedIdleTimeout drops trackers that stop sending.
const feedIdleTimeout = 10 * time.Second

var errOutOfFrame = errors.New("pointer: sample outside frame")

// Feed is a websocket endpoint that external hand trackers stream samples
// into. The most recent sample wins; samples older than the stale window
// read as no hand.
type Feed struct {
	width, height int
	stale         time.Duration
	secret        []byte
	clock         round.Clock
	upgrader      websocket.Upgrader

	mu      sync.Mutex
	last    round.Point
	present bool
	at      time.Time
	writer  *websocket.Conn // connection that sent last; nil for Push
	clients int
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithSecret requires an HS256 token signed with secret on every connection.
func WithSecret(secret string) FeedOption {
	return func(f *Feed) {
		if secret != "" {
			f.secret = []byte(secret)
		}
	}
}

// WithClock stamps incoming samples with c instead of the wall clock.
func WithClock(c round.Clock) FeedOption {
	return func(f *Feed) {
		f.clock = c
	}
}

// NewFeed creates a feed for a width x height frame.
func NewFeed(width, height int, stale time.Duration, opts ...FeedOption) *Feed {
	f := &Feed{
		width:  width,
		height: height,
		stale:  stale,
		clock:  round.SystemClock{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Sample returns the latest fresh sample.
func (f *Feed) Sample(now time.Time) (round.Point, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.present || now.Sub(f.at) > f.stale {
		return round.Point{}, false
	}
	return f.last, true
}

// Clients returns the number of connected trackers.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clients
}

// Push records s as the latest sample.
func (f *Feed) Push(s Sample) error {
	return f.push(s, nil)
}

func (f *Feed) push(s Sample, from *websocket.Conn) error {
	now := f.clock.Now()
	if s.Present != nil && !*s.Present {
		f.mu.Lock()
		f.present = false
		f.at = now
		f.writer = from
		f.mu.Unlock()
		return nil
	}
	p, err := f.toFrame(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.last = p
	f.present = true
	f.at = now
	f.writer = from
	f.mu.Unlock()
	return nil
}

func (f *Feed) toFrame(s Sample) (round.Point, error) {
	if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsInf(s.X, 0) || math.IsInf(s.Y, 0) {
		return round.Point{}, fmt.Errorf("non-finite sample (%v,%v): %w", s.X, s.Y, errOutOfFrame)
	}
	if s.Normalized {
		// Landmarks may overshoot [0,1] slightly at the frame edge.
		p := round.Point{X: int(s.X * float64(f.width)), Y: int(s.Y * float64(f.height))}
		return Clamp(p, f.width, f.height), nil
	}
	p := round.Point{X: int(math.Round(s.X)), Y: int(math.Round(s.Y))}
	if p.X < 0 || p.X >= f.width || p.Y < 0 || p.Y >= f.height {
		return round.Point{}, fmt.Errorf("sample (%d,%d) in %dx%d frame: %w", p.X, p.Y, f.width, f.height, errOutOfFrame)
	}
	return p, nil
}

// Handler serves /feed (websocket) and /healthz.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", f.handleFeed)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	return mux
}

func (f *Feed) handleFeed(w http.ResponseWriter, r *http.Request) {
	tracker := "anonymous"
	if f.secret != nil {
		name, err := parseToken(f.secret, requestToken(r))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		tracker = name
	}
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("feed upgrade:", err)
		return
	}
	f.reader(conn, tracker)
}

func (f *Feed) reader(conn *websocket.Conn, tracker string) {
	f.mu.Lock()
	f.clients++
	f.mu.Unlock()
	log.Printf("feed: tracker %q connected from %s", tracker, conn.RemoteAddr())

	defer func() {
		conn.Close()
		f.mu.Lock()
		f.clients--
		// Only the tracker that owns the current sample takes it away.
		if f.writer == conn {
			f.present = false
			f.writer = nil
		}
		f.mu.Unlock()
		log.Printf("feed: tracker %q disconnected", tracker)
	}()

	conn.SetReadLimit(1024)
	for {
		// The upgrade inherits the HTTP server deadlines; renew per message.
		_ = conn.SetReadDeadline(time.Now().Add(feedIdleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("feed: tracker %q read: %v", tracker, err)
			}
			return
		}
		var s Sample
		if err := json.Unmarshal(data, &s); err != nil {
			err = fmt.Errorf("bad sample: %w", err)
			if !f.reply(conn, err) {
				return
			}
			continue
		}
		if err := f.push(s, conn); err != nil {
			if !f.reply(conn, err) {
				return
			}
		}
	}
}

// reply reports a rejected sample back to the tracker.
func (f *Feed) reply(conn *websocket.Conn, err error) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	return conn.WriteJSON(feedReply{Error: err.Error()}) == nil
}

// ListenAndServe serves the feed on addr until ctx is cancelled.
func (f *Feed) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("feed listen: %w", err)
	}
	return f.Serve(ctx, ln)
}

// Serve accepts tracker connections on ln until ctx is cancelled or the
// server fails. ln is closed on return.
func (f *Feed) Serve(ctx context.Context, ln net.Listener) error {
	s := &http.Server{
		Handler:      f.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	log.Println("feed listening on", ln.Addr())
	if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
