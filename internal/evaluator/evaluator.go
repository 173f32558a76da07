// Package evaluator implements the conflict and constraint checks used
// to prune partial schedules and validate finished ones (spec §4.1).
// The evaluator never raises: infeasibility is a value, not an error
// (spec §9 "feasibility is a value, not a thrown flow").
package evaluator

import (
	"fmt"
	"time"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/schedule"
)

// Limits bounds the search, per spec §3.1.
type Limits struct {
	MaxResults int
	MaxECTS    int
	// MaxECTSExplicit marks MaxECTS as a caller-supplied override rather
	// than an unset zero value, so an explicit 0 is never confused with
	// "let the GPA rule decide" (§4.2: "explicit override always wins").
	MaxECTSExplicit bool
	AllowConflicts  bool
	MaxConflicts    int
	Timeout         time.Duration
}

// Normalize applies the spec §9 equivalence: allow_conflicts=false is
// strictly equivalent to max_conflicts=0.
func (l Limits) Normalize() Limits {
	if !l.AllowConflicts {
		l.MaxConflicts = 0
	}
	return l
}

// ReasonKind enumerates the structured infeasibility taxonomy of §4.1
// and §7.
type ReasonKind int

const (
	EctsCapExceeded ReasonKind = iota
	ConflictBudgetExceeded
	PrerequisiteUnmet
	DuplicateGroup
	MandatoryMissing
	EctsCapUnreachable
	OptionProductEmpty
)

func (k ReasonKind) String() string {
	switch k {
	case EctsCapExceeded:
		return "EctsCapExceeded"
	case ConflictBudgetExceeded:
		return "ConflictBudgetExceeded"
	case PrerequisiteUnmet:
		return "PrerequisiteUnmet"
	case DuplicateGroup:
		return "DuplicateGroup"
	case MandatoryMissing:
		return "MandatoryMissing"
	case EctsCapUnreachable:
		return "EctsCapUnreachable"
	case OptionProductEmpty:
		return "OptionProductEmpty"
	default:
		return "Unknown"
	}
}

// Reason is the structured explanation attached to an empty result
// (§4.1, §7).
type Reason struct {
	Kind ReasonKind
	Code string // course code or main code, when the kind carries one
}

func (r Reason) Error() string {
	if r.Code == "" {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.Code)
}

// Conflicts reports whether two courses share a TimeSlot (§4.1).
func Conflicts(a, b course.Course) bool {
	return course.OverlapCount(a, b) > 0
}

// CountConflicts sums the schedule's pairwise overlapping slots (§4.1).
func CountConflicts(s schedule.Schedule) int {
	return s.ConflictCount()
}

// IsFeasiblePartial fails fast when a partial schedule cannot recover:
// ECTS cap exceeded, conflict budget exceeded, an unmet prerequisite,
// or a duplicate main code (§4.1).
func IsFeasiblePartial(partial schedule.Schedule, limits Limits, completed map[string]struct{}, prereqsRequired bool) (bool, *Reason) {
	limits = limits.Normalize()

	if mc, dup := partial.HasDuplicateMainCode(); dup {
		return false, &Reason{Kind: DuplicateGroup, Code: mc}
	}

	if total := partial.TotalECTS(); total > limits.MaxECTS {
		return false, &Reason{Kind: EctsCapExceeded}
	}

	if cc := partial.ConflictCount(); cc > limits.MaxConflicts {
		return false, &Reason{Kind: ConflictBudgetExceeded}
	}

	if prereqsRequired {
		for _, c := range partial.Courses {
			if reason := unmetPrerequisite(c, completed); reason != nil {
				return false, reason
			}
		}
	}

	return true, nil
}

// IsFeasibleFinal additionally requires every mandatory group to be
// represented (§4.1, §3.2 invariant 4).
func IsFeasibleFinal(s schedule.Schedule, limits Limits, mandatoryGroups []string, completed map[string]struct{}, prereqsRequired bool) (bool, *Reason) {
	if ok, reason := IsFeasiblePartial(s, limits, completed, prereqsRequired); !ok {
		return false, reason
	}

	present := s.MainCodes()
	for _, mc := range mandatoryGroups {
		if _, ok := present[mc]; !ok {
			return false, &Reason{Kind: MandatoryMissing, Code: mc}
		}
	}
	return true, nil
}

func unmetPrerequisite(c course.Course, completed map[string]struct{}) *Reason {
	for _, prereq := range c.Prerequisites {
		if _, ok := completed[prereq]; !ok {
			return &Reason{Kind: PrerequisiteUnmet, Code: prereq}
		}
	}
	return nil
}
