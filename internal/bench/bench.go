// Package bench runs one or more registered schedulers against the
// same request and reports timing and quality statistics, the
// "Algorithm benchmarker" named by spec §5.5.
package bench

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campusplan/scheduler/internal/engine"
)

// RunStats is one scheduler's outcome for one run: wall-clock time,
// how many candidates it finalized, and the best preference score
// among them. Err is set when the run itself failed (not merely
// "found nothing feasible", which is NoFeasibleSchedule and still
// reported with a zero ResultCount).
type RunStats struct {
	Algorithm   string
	Duration    time.Duration
	ResultCount int
	BestScore   float64
	Err         error
}

// Compare runs every named algorithm once against req concurrently and
// returns one RunStats per name, ordered by BestScore descending, ties
// broken by Duration ascending.
//
// Grounded on the teacher's cmd/api/main.go, which dials out to
// several solver configurations side by side; generalized here with
// errgroup the way engine.runCompareAll races candidates, except
// Compare keeps every algorithm's stats instead of only the winner.
func Compare(ctx context.Context, req engine.Request, names []string) ([]RunStats, error) {
	stats := make([]RunStats, len(names))
	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			stats[i] = runOne(gctx, req, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].BestScore != stats[j].BestScore {
			return stats[i].BestScore > stats[j].BestScore
		}
		return stats[i].Duration < stats[j].Duration
	})
	return stats, nil
}

func runOne(ctx context.Context, req engine.Request, name string) RunStats {
	req.Choice = engine.AlgorithmChoice{Mode: engine.Named, Name: name}
	start := time.Now()
	result, err := engine.Generate(ctx, req)
	duration := time.Since(start)

	if err != nil {
		if err.Kind == engine.NoFeasibleSchedule {
			return RunStats{Algorithm: name, Duration: duration}
		}
		return RunStats{Algorithm: name, Duration: duration, Err: err}
	}
	best := 0.0
	if len(result.Candidates) > 0 {
		best = result.Candidates[0].Score
	}
	return RunStats{Algorithm: name, Duration: duration, ResultCount: len(result.Candidates), BestScore: best}
}

// TrialSummary aggregates repeated trials of one stochastic algorithm
// (Simulated Annealing, Tabu Search, Genetic, PSO, Hybrid all vary run
// to run), the statistic a caller needs before trusting a single run's
// BestScore.
type TrialSummary struct {
	Algorithm   string
	Trials      int
	MeanScore   float64
	StdDevScore float64
	MeanElapsed time.Duration
	Failures    int
}

// RunTrials runs algorithm name req.Limits... trials times and
// summarizes the resulting best scores.
func RunTrials(ctx context.Context, req engine.Request, name string, trials int) TrialSummary {
	summary := TrialSummary{Algorithm: name, Trials: trials}
	scores := make([]float64, 0, trials)
	var totalElapsed time.Duration

	for i := 0; i < trials; i++ {
		if ctx.Err() != nil {
			break
		}
		trialReq := req
		trialReq.Seed = req.Seed + int64(i)
		stat := runOne(ctx, trialReq, name)
		totalElapsed += stat.Duration
		if stat.Err != nil || stat.ResultCount == 0 {
			summary.Failures++
			continue
		}
		scores = append(scores, stat.BestScore)
	}

	if len(scores) > 0 {
		summary.MeanScore = mean(scores)
		summary.StdDevScore = stddev(scores, summary.MeanScore)
	}
	if trials > 0 {
		summary.MeanElapsed = totalElapsed / time.Duration(trials)
	}
	return summary
}

func mean(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

func stddev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	total := 0.0
	for _, x := range xs {
		d := x - m
		total += d * d
	}
	return math.Sqrt(total / float64(len(xs)-1))
}
