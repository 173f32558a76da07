// Package selector implements the algorithm-selection rubric: a static
// heuristic over problem shape that recommends one registered
// scheduler name without having to run every algorithm first (spec
// §5.2's Auto mode, made independently callable so a CLI can show its
// reasoning before committing to a run).
package selector

import (
	"fmt"
	"time"

	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/search"
)

// Shape summarizes the dimensions the rubric reasons about.
type Shape struct {
	GroupCount      int
	BranchingFactor float64 // product of per-group option counts, capped
	MandatoryRatio  float64 // mandatory groups / total groups
}

const branchingCap = 1_000_000

// Describe derives a Shape from a prepared search space.
func Describe(prepared *search.PreparedSearch) Shape {
	var mandatory int
	branching := 1.0
	for _, g := range prepared.Groups {
		branching *= float64(len(g.Options))
		if branching > branchingCap {
			branching = branchingCap
		}
		if g.Policy.String() == "Mandatory" {
			mandatory++
		}
	}
	ratio := 0.0
	if len(prepared.Groups) > 0 {
		ratio = float64(mandatory) / float64(len(prepared.Groups))
	}
	return Shape{
		GroupCount:      len(prepared.Groups),
		BranchingFactor: branching,
		MandatoryRatio:  ratio,
	}
}

// Recommendation is the selector's output: the recommended algorithm
// name (always a name engine.Names() would list once that package's
// algorithms are imported) and a short human-readable reason.
type Recommendation struct {
	Algorithm string
	Reason    string
}

// Recommend picks one algorithm name for the given problem shape and
// limits. The thresholds follow a simple principle: small enough
// search spaces go to depth-first enumeration; tightly time-boxed ones
// get a fast single-solution local search; mostly-mandatory ones of up
// to 25 groups get A*; other problems with many groups get
// population-based search; everything else gets the hybrid.
func Recommend(prepared *search.PreparedSearch, limits evaluator.Limits) Recommendation {
	shape := Describe(prepared)

	switch {
	case shape.BranchingFactor <= 5000:
		return Recommendation{
			Algorithm: "dfs",
			Reason:    fmt.Sprintf("branching factor %.0f is small enough to search exhaustively", shape.BranchingFactor),
		}
	case limits.Timeout > 0 && limits.Timeout < 2*time.Second:
		return Recommendation{
			Algorithm: "hillclimb",
			Reason:    "a tight time budget favors a fast single-solution local search over population-based search",
		}
	case shape.MandatoryRatio >= 0.8 && shape.GroupCount <= 25:
		return Recommendation{
			Algorithm: "astar",
			Reason:    "mostly-mandatory groups keep the heuristic tight enough for best-first search to pay off",
		}
	case shape.GroupCount > 15:
		return Recommendation{
			Algorithm: "genetic",
			Reason:    "a large number of groups favors population-based search over exhaustive enumeration",
		}
	default:
		return Recommendation{
			Algorithm: "hybrid",
			Reason:    "mid-sized, mixed-constraint problems benefit from population search refined by annealing",
		}
	}
}
