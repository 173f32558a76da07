// Package search builds the PreparedSearch: per-group option sets
// enumerated from a filtered catalog, ordered for maximal pruning
// (spec §4.4).
package search

import (
	"sort"

	"github.com/samber/lo"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/scorer"
)

// Option is one valid combination of sections from a single group: at
// most one section per present type, or the synthetic "skip" for an
// Optional group.
type Option struct {
	Sections []course.Course
	IsSkip   bool
	// Estimate is a quick preference-score estimate for this option in
	// isolation; BestEstimate takes the per-group maximum of it as A*'s
	// heuristic bound (§4.5.1). Options are not reordered by it.
	Estimate float64
}

// GroupOptions is every valid option for one group, plus its policy.
type GroupOptions struct {
	MainCode string
	Policy   course.SelectionPolicy
	Options  []Option
}

// BestEstimate returns the highest Estimate across this group's
// options — the per-group contribution A*'s heuristic assumes is
// reachable for every remaining group.
func (g GroupOptions) BestEstimate() float64 {
	best := 0.0
	for i, opt := range g.Options {
		if i == 0 || opt.Estimate > best {
			best = opt.Estimate
		}
	}
	return best
}

// OptionsBySectionCode returns options ordered by the lexicographic
// code of their first section, the deterministic order non-best-first
// schedulers (DFS, BFS, IDDFS) use (§4.4: "by section code otherwise").
func (g GroupOptions) OptionsBySectionCode() []Option {
	out := append([]Option(nil), g.Options...)
	sort.Slice(out, func(i, j int) bool {
		return optionCode(out[i]) < optionCode(out[j])
	})
	return out
}

func optionCode(o Option) string {
	if o.IsSkip || len(o.Sections) == 0 {
		return ""
	}
	return o.Sections[0].Code
}

// PreparedSearch is the builder's output: groups ordered
// most-constrained-first (spec §4.4).
type PreparedSearch struct {
	Groups []GroupOptions
}

// MandatoryMainCodes returns the main codes of every Mandatory group,
// for §4.1's is_feasible_final check.
func (p *PreparedSearch) MandatoryMainCodes() []string {
	return lo.FilterMap(p.Groups, func(g GroupOptions, _ int) (string, bool) {
		return g.MainCode, g.Policy == course.Mandatory
	})
}

// Build groups the (already filtered) catalog, enumerates per-group
// options, and orders everything for search. A group absent from
// selection is treated as Excluded: the caller's selection map is the
// sole source of truth for what's in play (see DESIGN.md).
//
// removedByPrereq names, for every main code that lost every section
// to transcript-based prerequisite filtering before catalog reached
// Build, the first unmet prerequisite seen — so a Mandatory group that
// vanished this way is reported as PrerequisiteUnmet rather than
// MandatoryMissing (§4.2 Scenario D). limits bounds the ECTS cap: if
// the cheapest possible combination of every Mandatory group already
// exceeds it, the cap is structurally unreachable regardless of which
// options a search would pick (§4.2's max_ects=0 boundary case).
//
// Grounded on the teacher's internal/loader/domain_builder.go, which
// stages raw rows into grouped domain objects before the solver runs,
// generalized here from "university-wide activities" to "one student's
// group/option search space".
func Build(catalog []course.Course, selection map[string]course.SelectionPolicy, prefs scorer.Prefs, limits evaluator.Limits, removedByPrereq map[string]string) (*PreparedSearch, *evaluator.Reason) {
	byMainCode := course.GroupCatalog(catalog)

	var groups []GroupOptions
	for mainCode, policy := range selection {
		if policy == course.Excluded {
			continue
		}
		g, ok := byMainCode[mainCode]
		if !ok {
			if policy == course.Mandatory {
				if prereq, filtered := removedByPrereq[mainCode]; filtered {
					return nil, &evaluator.Reason{Kind: evaluator.PrerequisiteUnmet, Code: prereq}
				}
				return nil, &evaluator.Reason{Kind: evaluator.MandatoryMissing, Code: mainCode}
			}
			continue
		}

		options := enumerateOptions(g, prefs)
		if policy == course.Optional {
			options = append(options, Option{IsSkip: true})
		}
		if len(options) == 0 {
			if policy == course.Mandatory {
				return nil, &evaluator.Reason{Kind: evaluator.MandatoryMissing, Code: mainCode}
			}
			continue
		}

		groups = append(groups, GroupOptions{MainCode: mainCode, Policy: policy, Options: options})
	}

	if len(groups) == 0 {
		return nil, &evaluator.Reason{Kind: evaluator.OptionProductEmpty}
	}

	minMandatoryECTS := 0
	for _, g := range groups {
		if g.Policy == course.Mandatory {
			minMandatoryECTS += cheapestOptionECTS(g.Options)
		}
	}
	if minMandatoryECTS > limits.MaxECTS {
		return nil, &evaluator.Reason{Kind: evaluator.EctsCapUnreachable}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Options) != len(groups[j].Options) {
			return len(groups[i].Options) < len(groups[j].Options)
		}
		return groups[i].MainCode < groups[j].MainCode
	})

	return &PreparedSearch{Groups: groups}, nil
}

// cheapestOptionECTS returns the lowest total ECTS among opts, the
// floor a Mandatory group contributes to any final schedule.
func cheapestOptionECTS(opts []Option) int {
	min := -1
	for _, o := range opts {
		total := 0
		for _, c := range o.Sections {
			total += c.ECTS
		}
		if min == -1 || total < min {
			min = total
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

// enumerateOptions produces every valid one-section-per-type
// combination for a group, dropping combinations with an internal time
// conflict (§4.4).
func enumerateOptions(g *course.Group, prefs scorer.Prefs) []Option {
	types := make([]course.Type, 0, len(g.ByType))
	for t := range g.ByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	combos := [][]course.Course{{}}
	for _, t := range types {
		sections := append([]course.Course(nil), g.ByType[t]...)
		sort.Slice(sections, func(i, j int) bool { return sections[i].Code < sections[j].Code })

		var next [][]course.Course
		for _, combo := range combos {
			for _, sec := range sections {
				if internalConflict(combo, sec) {
					continue
				}
				extended := append(append([]course.Course(nil), combo...), sec)
				next = append(next, extended)
			}
		}
		combos = next
	}

	nonEmpty := lo.Filter(combos, func(combo []course.Course, _ int) bool { return len(combo) > 0 })
	return lo.Map(nonEmpty, func(combo []course.Course, _ int) Option {
		return Option{
			Sections: combo,
			Estimate: scorer.Score(schedule.New(combo), prefs),
		}
	})
}

func internalConflict(combo []course.Course, candidate course.Course) bool {
	for _, c := range combo {
		if course.OverlapCount(c, candidate) > 0 {
			return true
		}
	}
	return false
}
