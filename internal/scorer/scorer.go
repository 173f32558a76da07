// Package scorer implements the weighted multi-objective preference
// score described in spec §4.3: a dot product of non-negative weights
// and deterministic [0,1] component values.
package scorer

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/timeslot"
)

// Option names one preference component from the §4.3 table.
type Option int

const (
	PreferFewerConflicts Option = iota
	PreferMoreECTS
	PreferFewerECTS
	PreferMorning
	PreferAfternoon
	Compactness
	FreeDays
	PreferredCampus
	PreferredTeacher
)

var optionNames = map[string]Option{
	"prefer_fewer_conflicts": PreferFewerConflicts,
	"prefer_more_ects":       PreferMoreECTS,
	"prefer_fewer_ects":      PreferFewerECTS,
	"prefer_morning":         PreferMorning,
	"prefer_afternoon":       PreferAfternoon,
	"compactness":            Compactness,
	"free_days":              FreeDays,
	"preferred_campus":       PreferredCampus,
	"preferred_teacher":      PreferredTeacher,
}

// ParseOption maps a raw option name to its Option constant. Unknown
// names are rejected by the caller (spec §6: "unknown names are
// rejected"), so ParseOption returns an error rather than a zero value.
func ParseOption(name string) (Option, error) {
	opt, ok := optionNames[name]
	if !ok {
		return 0, fmt.Errorf("scorer: unknown preference option %q", name)
	}
	return opt, nil
}

const (
	morningPeriodEnd   = 5  // periods 1-5
	afternoonPeriodEnd = 10 // periods 6-10
)

// Prefs is the weighted configuration of §4.3. Weights are
// non-negative; all-zero means "any order" and the §3.2.6 tie-break
// governs instead.
type Prefs struct {
	Weights          map[Option]float64
	FreeDays         map[timeslot.Day]struct{}
	PreferredCampus  string
	PreferredTeacher string
	// TargetECTS is the reference point for prefer_fewer_ects: higher
	// score the closer total ECTS gets to TargetECTS without exceeding
	// it.
	TargetECTS int
	// MaxECTS normalizes prefer_more_ects; callers pass the effective
	// cap so the component stays in [0,1].
	MaxECTS int
}

// Weight returns the configured weight for opt, defaulting to 0.
func (p Prefs) Weight(opt Option) float64 {
	if p.Weights == nil {
		return 0
	}
	return p.Weights[opt]
}

// IsZero reports whether every weight is zero, in which case ranking
// falls back entirely to the §3.2.6 tie-break tuple.
func (p Prefs) IsZero() bool {
	for _, w := range p.Weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// Score computes the weighted dot product of component values for s.
func Score(s schedule.Schedule, p Prefs) float64 {
	total := 0.0
	for opt, weight := range p.Weights {
		if weight <= 0 {
			continue
		}
		total += weight * clamp01(component(opt, s, p))
	}
	if total != total { // NaN guard: §4.5.5 "clamp to 0 and continue"
		return 0
	}
	return total
}

func component(opt Option, s schedule.Schedule, p Prefs) float64 {
	switch opt {
	case PreferFewerConflicts:
		return fewerConflicts(s)
	case PreferMoreECTS:
		return moreECTS(s, p.MaxECTS)
	case PreferFewerECTS:
		return fewerECTS(s, p.TargetECTS)
	case PreferMorning:
		return sessionFraction(s, func(period int) bool { return period <= morningPeriodEnd })
	case PreferAfternoon:
		return sessionFraction(s, func(period int) bool {
			return period > morningPeriodEnd && period <= afternoonPeriodEnd
		})
	case Compactness:
		return compactness(s)
	case FreeDays:
		return freeDaysSatisfaction(s, p.FreeDays)
	case PreferredCampus:
		return fraction(s, func(c course.Course) bool { return c.Campus != "" && c.Campus == p.PreferredCampus })
	case PreferredTeacher:
		return fraction(s, func(c course.Course) bool { return c.Teacher != "" && c.Teacher == p.PreferredTeacher })
	default:
		return 0
	}
}

func fewerConflicts(s schedule.Schedule) float64 {
	return 1 / (1 + float64(s.ConflictCount()))
}

func moreECTS(s schedule.Schedule, maxECTS int) float64 {
	if maxECTS <= 0 {
		return 0
	}
	return clamp01(float64(s.TotalECTS()) / float64(maxECTS))
}

func fewerECTS(s schedule.Schedule, target int) float64 {
	total := s.TotalECTS()
	if target <= 0 || total > target {
		return 0
	}
	return float64(total) / float64(target)
}

func sessionFraction(s schedule.Schedule, match func(period int) bool) float64 {
	total, hit := 0, 0
	for _, c := range s.Courses {
		for _, slot := range c.Slots {
			total++
			if match(slot.Period) {
				hit++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}

func fraction(s schedule.Schedule, match func(course.Course) bool) float64 {
	if len(s.Courses) == 0 {
		return 0
	}
	hit := lo.CountBy(s.Courses, match)
	return float64(hit) / float64(len(s.Courses))
}

// freeDaysSatisfaction computes the FreeDays component for Score.
func freeDaysSatisfaction(s schedule.Schedule, freeDays map[timeslot.Day]struct{}) float64 {
	if len(freeDays) == 0 {
		return 0
	}
	busy := make(map[timeslot.Day]struct{})
	for _, c := range s.Courses {
		for _, slot := range c.Slots {
			busy[slot.Day] = struct{}{}
		}
	}
	satisfied := 0
	for d := range freeDays {
		if _, occupied := busy[d]; !occupied {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(freeDays))
}

// compactness scores fewer idle gaps within each active day higher,
// grounded on the teacher's gap-penalty accounting in
// internal/solver/simulated_annealing.go (calculateCost's mirror/gap
// bookkeeping), generalized from fixed 35-block weeks to arbitrary
// per-course slot sets.
func compactness(s schedule.Schedule) float64 {
	byDay := make(map[timeslot.Day][]int)
	for _, c := range s.Courses {
		for _, slot := range c.Slots {
			byDay[slot.Day] = append(byDay[slot.Day], slot.Period)
		}
	}
	if len(byDay) == 0 {
		return 1
	}
	totalGaps, totalSpan := 0, 0
	for _, periods := range byDay {
		sort.Ints(periods)
		if len(periods) < 2 {
			continue
		}
		span := periods[len(periods)-1] - periods[0]
		totalSpan += span
		totalGaps += span - (len(periods) - 1)
	}
	if totalSpan == 0 {
		return 1
	}
	return clamp01(1 - float64(totalGaps)/float64(totalSpan))
}

func clamp01(v float64) float64 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
