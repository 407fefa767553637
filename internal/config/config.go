package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CATCH_"

// Settings is everything a frontend needs to run rounds.
type Settings struct {
	Round round.Config

	WindowScale float64       // desktop window size multiplier
	FeedAddr    string        // websocket pointer feed listen address, "" = disabled
	FeedSecret  string        // HS256 secret for feed tokens, "" = no auth
	FeedStale   time.Duration // feed samples older than this read as absent
	Mirror      bool          // flip pointer X, like a selfie camera
	Mute        bool
	Seed        int64 // 0 = seed from the clock
}

// Default returns the reference settings.
func Default() Settings {
	return Settings{
		Round:       round.DefaultConfig(),
		WindowScale: 1.5,
		FeedStale:   250 * time.Millisecond,
	}
}

// Validate checks the round config and the frontend knobs.
func (s Settings) Validate() error {
	if err := s.Round.Validate(); err != nil {
		return err
	}
	if s.WindowScale <= 0 {
		return fmt.Errorf("window scale %.2f must be > 0: %w", s.WindowScale, round.ErrConfig)
	}
	if s.FeedStale <= 0 {
		return fmt.Errorf("feed stale window %s must be > 0: %w", s.FeedStale, round.ErrConfig)
	}
	return nil
}

// Load builds Settings from defaults, then envFile (if it exists), then the
// process environment, then command-line flags registered on flags.
func Load(flags *flag.FlagSet, args []string, envFile string) (Settings, error) {
	s := Default()

	env, err := readEnv(envFile)
	if err != nil {
		return s, err
	}
	if err := s.applyEnv(env); err != nil {
		return s, err
	}

	s.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return s, err
	}
	return s, s.Validate()
}

// readEnv merges envFile with the process environment; the process wins.
func readEnv(envFile string) (map[string]string, error) {
	env := map[string]string{}
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			env = fileEnv
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			env[EnvPrefix+k] = v
		}
	}
	return env, nil
}

var envKeys = []string{
	"FRAME_WIDTH", "FRAME_HEIGHT", "BALL_COUNT", "BALL_LIFETIME", "GAME_DURATION",
	"TRAIL_CAPACITY", "HIT_HALF_WIDTH", "SPAWN_MARGIN",
	"WINDOW_SCALE", "FEED_ADDR", "FEED_SECRET", "FEED_STALE", "MIRROR", "MUTE", "SEED",
}

func (s *Settings) applyEnv(env map[string]string) error {
	ints := map[string]*int{
		"FRAME_WIDTH":    &s.Round.FrameWidth,
		"FRAME_HEIGHT":   &s.Round.FrameHeight,
		"BALL_COUNT":     &s.Round.BallCount,
		"TRAIL_CAPACITY": &s.Round.TrailCapacity,
		"HIT_HALF_WIDTH": &s.Round.HitHalfWidth,
		"SPAWN_MARGIN":   &s.Round.SpawnMargin,
	}
	durations := map[string]*time.Duration{
		"BALL_LIFETIME": &s.Round.BallLifetime,
		"GAME_DURATION": &s.Round.GameDuration,
		"FEED_STALE":    &s.FeedStale,
	}
	bools := map[string]*bool{
		"MIRROR": &s.Mirror,
		"MUTE":   &s.Mute,
	}

	for _, k := range envKeys {
		v, ok := env[EnvPrefix+k]
		if !ok || v == "" {
			continue
		}
		var err error
		switch {
		case ints[k] != nil:
			*ints[k], err = strconv.Atoi(v)
		case durations[k] != nil:
			*durations[k], err = time.ParseDuration(v)
		case bools[k] != nil:
			*bools[k], err = strconv.ParseBool(v)
		case k == "WINDOW_SCALE":
			s.WindowScale, err = strconv.ParseFloat(v, 64)
		case k == "SEED":
			s.Seed, err = strconv.ParseInt(v, 10, 64)
		case k == "FEED_ADDR":
			s.FeedAddr = v
		case k == "FEED_SECRET":
			s.FeedSecret = v
		}
		if err != nil {
			return fmt.Errorf("%s%s=%q: %w", EnvPrefix, k, v, err)
		}
	}
	return nil
}

// RegisterFlags binds every setting to flags using the current values as defaults.
func (s *Settings) RegisterFlags(flags *flag.FlagSet) {
	flags.IntVar(&s.Round.FrameWidth, "width", s.Round.FrameWidth, "frame width")
	flags.IntVar(&s.Round.FrameHeight, "height", s.Round.FrameHeight, "frame height")
	flags.IntVar(&s.Round.BallCount, "balls", s.Round.BallCount, "number of active balls")
	flags.DurationVar(&s.Round.BallLifetime, "lifetime", s.Round.BallLifetime, "ball lifetime")
	flags.DurationVar(&s.Round.GameDuration, "duration", s.Round.GameDuration, "round duration")
	flags.IntVar(&s.Round.TrailCapacity, "trail", s.Round.TrailCapacity, "trail length in samples")
	flags.IntVar(&s.Round.HitHalfWidth, "hit", s.Round.HitHalfWidth, "hit box half-width")
	flags.IntVar(&s.Round.SpawnMargin, "margin", s.Round.SpawnMargin, "spawn margin from frame edges")
	flags.Float64Var(&s.WindowScale, "scale", s.WindowScale, "window scale")
	flags.StringVar(&s.FeedAddr, "feed", s.FeedAddr, "pointer feed listen address (e.g. :8081)")
	flags.StringVar(&s.FeedSecret, "feed-secret", s.FeedSecret, "HS256 secret required on feed tokens")
	flags.DurationVar(&s.FeedStale, "feed-stale", s.FeedStale, "feed samples older than this count as no hand")
	flags.BoolVar(&s.Mirror, "mirror", s.Mirror, "mirror pointer X")
	flags.BoolVar(&s.Mute, "mute", s.Mute, "disable sound")
	flags.Int64Var(&s.Seed, "seed", s.Seed, "RNG seed (0 = time based)")
}

// EngineOptions returns the round options implied by the settings.
func (s Settings) EngineOptions() []round.Option {
	if s.Seed == 0 {
		return nil
	}
	return []round.Option{round.WithSeed(s.Seed)}
}
