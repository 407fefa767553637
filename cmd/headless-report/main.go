package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Garsondee/fingertip-catch/internal/config"
	"github.com/Garsondee/fingertip-catch/internal/round"
	"github.com/Garsondee/fingertip-catch/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64

	score      int
	collected  map[string]int
	expired    int
	spawned    int
	ticks      int
	firstCatch int // tick of the first collection, -1 if none
}

func main() {
	var runs int
	var fps int
	var seedBase int64
	var seedStep int64
	var botSpeed float64
	var dropRate float64

	fs := flag.NewFlagSet("headless-report", flag.ExitOnError)
	fs.IntVar(&runs, "runs", 5, "number of headless rounds")
	fs.IntVar(&fps, "fps", 30, "simulated ticks per second")
	fs.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	fs.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	fs.Float64Var(&botSpeed, "bot-speed", 9, "bot pointer speed in frame units per tick")
	fs.Float64Var(&dropRate, "drop", 0.1, "chance per tick that the bot loses tracking")

	settings, err := config.Load(fs, os.Args[1:], ".env")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if fps <= 0 || fps > sim.MaxFrameRate {
		fmt.Printf("error: -fps must be in 1..%d\n", sim.MaxFrameRate)
		return
	}

	cfg := settings.Round
	fmt.Printf("=== Headless Round Report ===\n")
	fmt.Printf("runs=%d fps=%d duration=%s balls=%d lifetime=%s seed_base=%d seed_step=%d bot_speed=%.1f drop=%.2f\n\n",
		runs, fps, cfg.GameDuration, cfg.BallCount, cfg.BallLifetime, seedBase, seedStep, botSpeed, dropRate)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		s, err := sim.New(
			sim.WithConfig(cfg),
			sim.WithSeed(seed),
			sim.WithFrameRate(fps),
			sim.WithBotSpeed(botSpeed),
			sim.WithDropRate(dropRate),
		)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		stats, err := runRound(i+1, seed, s)
		if err != nil {
			fmt.Printf("error: run %d: %v\n", i+1, err)
			return
		}
		all = append(all, stats)
		printRun(stats, cfg.Tiers)
	}

	printAggregate(all, cfg.Tiers)
}

func runRound(runIndex int, seed int64, s *sim.Sim) (runStats, error) {
	sum, err := s.RunRound()
	if err != nil {
		return runStats{}, err
	}
	return runStats{
		runIndex:   runIndex,
		seed:       seed,
		score:      sum.Score,
		collected:  sum.Collected,
		expired:    sum.Expired,
		spawned:    sum.Spawned,
		ticks:      sum.Ticks,
		firstCatch: s.FirstTick(round.CategoryBall, round.KeyCollect),
	}, nil
}

func totalCollected(rs runStats) int {
	n := 0
	for _, c := range rs.collected {
		n += c
	}
	return n
}

// catchRate is the share of removed balls that were collected rather than
// left to expire.
func catchRate(rs runStats) float64 {
	caught := totalCollected(rs)
	if caught+rs.expired == 0 {
		return 0
	}
	return float64(caught) / float64(caught+rs.expired)
}

func tierCounts(counts map[string]int, tiers []round.Tier) string {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		parts = append(parts, fmt.Sprintf("%s=%d", t.Name, counts[t.Name]))
	}
	return strings.Join(parts, " ")
}

func printRun(rs runStats, tiers []round.Tier) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("score=%d ticks=%d first_catch=%d\n", rs.score, rs.ticks, rs.firstCatch)
	fmt.Printf("collected: %s (total=%d) expired=%d spawned=%d catch_rate=%.2f\n\n",
		tierCounts(rs.collected, tiers), totalCollected(rs), rs.expired, rs.spawned, catchRate(rs))
}

func printAggregate(all []runStats, tiers []round.Tier) {
	if len(all) == 0 {
		return
	}
	scores := make([]int, 0, len(all))
	sumScore, sumExpired, sumCaught := 0, 0, 0
	tierTotals := map[string]int{}
	firstCatches := make([]int, 0, len(all))
	for _, rs := range all {
		scores = append(scores, rs.score)
		sumScore += rs.score
		sumExpired += rs.expired
		sumCaught += totalCollected(rs)
		for name, c := range rs.collected {
			tierTotals[name] += c
		}
		firstCatches = append(firstCatches, rs.firstCatch)
	}
	sort.Ints(scores)

	fmt.Printf("=== Aggregate (%d runs) ===\n", len(all))
	fmt.Printf("score: avg=%.1f median=%d min=%d max=%d\n",
		avg(sumScore, len(all)), median(scores), scores[0], scores[len(scores)-1])
	fmt.Printf("collected: %s avg_per_run=%.1f\n", tierCounts(tierTotals, tiers), avg(sumCaught, len(all)))
	fmt.Printf("expired: avg_per_run=%.1f\n", avg(sumExpired, len(all)))
	fmt.Printf("first_catch_tick: %s\n", avgTickString(firstCatches))
}

func avg(sum int, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// median expects sorted input.
func median(sorted []int) int {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)/2]
}

func avgTickString(vals []int) string {
	sum, n := 0, 0
	for _, v := range vals {
		if v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f (%d/%d runs)", avg(sum, n), n, len(vals))
}
