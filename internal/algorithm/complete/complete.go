// Package complete implements the exhaustive-search family: DFS, BFS,
// IDDFS, and A*, all exploring partial schedules built incrementally
// group-by-group (spec §5.1's "Complete Search" category).
package complete

import (
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/search"
)

// withOption appends every section an option carries to a partial
// schedule. A skip option leaves the schedule untouched.
func withOption(s schedule.Schedule, opt search.Option) schedule.Schedule {
	if opt.IsSkip {
		return s
	}
	for _, c := range opt.Sections {
		s = s.With(c)
	}
	return s
}

// reachedLimit reports whether the result pool already has as many
// schedules as the caller asked for.
func reachedLimit(results []schedule.Schedule, limits evaluator.Limits) bool {
	return limits.MaxResults > 0 && len(results) >= limits.MaxResults
}

// emitProgress sends a non-blocking progress update, dropping it
// silently if the channel isn't ready — progress reporting must never
// slow down the search it's reporting on (spec §5.4).
func emitProgress(ch chan<- engine.ProgressEvent, algorithm string, explored, frontier int, best float64) {
	if ch == nil {
		return
	}
	select {
	case ch <- engine.ProgressEvent{Algorithm: algorithm, Explored: explored, Frontier: frontier, BestScore: best}:
	default:
	}
}
