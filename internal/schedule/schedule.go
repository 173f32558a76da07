// Package schedule holds the Schedule aggregate: an ordered, duplicate
// free set of courses plus its derived totals.
package schedule

import (
	"sort"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/campusplan/scheduler/internal/course"
)

// Schedule is an ordered set of courses with no two sharing a main
// code (§3.1 invariant 1).
type Schedule struct {
	Courses []course.Course
}

// New builds a Schedule from a defensive copy of courses. It does not
// deduplicate by main code: callers that assemble schedules
// incrementally never offer two courses with the same main code.
func New(courses []course.Course) Schedule {
	cp := make([]course.Course, len(courses))
	copy(cp, courses)
	return Schedule{Courses: cp}
}

// TotalECTS sums credits across every course in the schedule.
func (s Schedule) TotalECTS() int {
	total := 0
	for _, c := range s.Courses {
		total += c.ECTS
	}
	return total
}

// ConflictCount sums, over every unordered pair, one count per
// overlapping slot shared by that pair — the tie-break policy fixed by
// spec §4.1 ("a course with two overlapping periods with one other
// course increments by 2").
func (s Schedule) ConflictCount() int {
	total := 0
	for i := 0; i < len(s.Courses); i++ {
		for j := i + 1; j < len(s.Courses); j++ {
			total += course.OverlapCount(s.Courses[i], s.Courses[j])
		}
	}
	return total
}

// HasDuplicateMainCode reports whether two courses in the schedule
// share a main code (§3.1 invariant 1, §3.2 invariant 3).
func (s Schedule) HasDuplicateMainCode() (mainCode string, dup bool) {
	seen := make(map[string]struct{}, len(s.Courses))
	for _, c := range s.Courses {
		mc := c.MainCode()
		if _, ok := seen[mc]; ok {
			return mc, true
		}
		seen[mc] = struct{}{}
	}
	return "", false
}

// MainCodes returns the set of main codes represented in the schedule.
func (s Schedule) MainCodes() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Courses))
	for _, c := range s.Courses {
		out[c.MainCode()] = struct{}{}
	}
	return out
}

// CodeTuple returns the sorted course-code tuple used for the
// tie-break (§3.2.6) and for round-trip reconstruction (§8 invariant 6).
func (s Schedule) CodeTuple() []string {
	codes := make([]string, len(s.Courses))
	for i, c := range s.Courses {
		codes[i] = c.Code
	}
	sort.Strings(codes)
	return codes
}

// Fingerprint is a deterministic hash of the schedule's code tuple,
// used to dedupe result pools across algorithms without carrying full
// course values around.
func (s Schedule) Fingerprint() (uint64, error) {
	return hashstructure.Hash(s.CodeTuple(), hashstructure.FormatV2, nil)
}

// With returns a new Schedule with c appended, leaving s untouched.
// Partial schedules built during search are owned exclusively by the
// exploring worker (§3.3); With lets that worker branch without
// aliasing another branch's slice.
func (s Schedule) With(c course.Course) Schedule {
	next := make([]course.Course, len(s.Courses)+1)
	copy(next, s.Courses)
	next[len(s.Courses)] = c
	return Schedule{Courses: next}
}

// Without returns a new Schedule with the course at index i removed —
// the backtrack step for stack-based searchers.
func (s Schedule) Without(i int) Schedule {
	next := make([]course.Course, 0, len(s.Courses)-1)
	next = append(next, s.Courses[:i]...)
	next = append(next, s.Courses[i+1:]...)
	return Schedule{Courses: next}
}

// Sorted returns a defensive copy of the schedule's courses ordered by
// code, used for deterministic exports.
func (s Schedule) Sorted() []course.Course {
	cp := make([]course.Course, len(s.Courses))
	copy(cp, s.Courses)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Code < cp[j].Code })
	return cp
}
