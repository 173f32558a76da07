// Package transcript implements the transcript-aware smart filter
// (spec §4.2): prerequisite-based section removal and the GPA-adjusted
// ECTS cap.
package transcript

import (
	"sort"

	"github.com/campusplan/scheduler/internal/course"
)

// View is the read-only input described by §3.1: completed course main
// codes plus a GPA in [0.0, 4.0].
type View struct {
	CompletedCourseCodes map[string]struct{}
	GPA                  float64
}

// NewView builds a View from a slice of completed main codes.
func NewView(completed []string, gpa float64) View {
	set := make(map[string]struct{}, len(completed))
	for _, code := range completed {
		set[code] = struct{}{}
	}
	return View{CompletedCourseCodes: set, GPA: gpa}
}

// EffectiveMaxECTS applies the §4.2 GPA rule unless explicitOverride is
// non-nil, in which case the explicit value always wins.
func EffectiveMaxECTS(v *View, explicitOverride *int) int {
	if explicitOverride != nil {
		return *explicitOverride
	}
	if v == nil {
		return 0
	}
	switch {
	case v.GPA >= 3.5:
		return 42
	case v.GPA >= 2.5:
		return 37
	default:
		return 31
	}
}

// Filter removes from catalog any section whose prerequisites are not
// a subset of v.CompletedCourseCodes. It produces no error — §4.2:
// "This step runs once ... It produces no error." It also reports, for
// every main code that lost every one of its sections this way, the
// first unmet prerequisite seen on one of them — search.Build needs
// this to tell "filtered away by prerequisites" apart from "never in
// the catalog" when a Mandatory group comes up empty.
func Filter(catalog []course.Course, v *View, enabled bool) ([]course.Course, map[string]string) {
	if !enabled || v == nil {
		return catalog, nil
	}
	out := make([]course.Course, 0, len(catalog))
	survived := map[string]bool{}
	removedByPrereq := map[string]string{}
	for _, c := range catalog {
		mc := c.MainCode()
		if satisfiesPrerequisites(c, v.CompletedCourseCodes) {
			out = append(out, c)
			survived[mc] = true
			continue
		}
		if _, seen := removedByPrereq[mc]; !seen {
			removedByPrereq[mc] = firstUnmetPrerequisite(c, v.CompletedCourseCodes)
		}
	}
	for mc := range survived {
		delete(removedByPrereq, mc)
	}
	return out, removedByPrereq
}

// DetectCycle walks the prerequisite graph keyed by main code with a
// DFS over a three-color visiting set and reports the first cycle it
// finds, as the cycle's main codes in traversal order (nil if the
// graph is acyclic). Generate runs this before Filter's removal pass:
// without it, a cycle like A requires B, B requires A would be
// silently treated as two independent unmet-prerequisite removals
// instead of being reported as a cycle in its own right.
func DetectCycle(catalog []course.Course) []string {
	edges := map[string][]string{}
	for _, c := range catalog {
		edges[c.MainCode()] = append(edges[c.MainCode()], c.Prerequisites...)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var path []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		switch state[node] {
		case done:
			return false
		case visiting:
			start := 0
			for i, n := range path {
				if n == node {
					start = i
					break
				}
			}
			cycle = append(append([]string{}, path[start:]...), node)
			return true
		}
		state[node] = visiting
		path = append(path, node)
		for _, next := range edges[node] {
			if visit(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		state[node] = done
		return false
	}

	nodes := make([]string, 0, len(edges))
	for mc := range edges {
		nodes = append(nodes, mc)
	}
	sort.Strings(nodes)
	for _, mc := range nodes {
		if state[mc] == unvisited && visit(mc) {
			return cycle
		}
	}
	return nil
}

func satisfiesPrerequisites(c course.Course, completed map[string]struct{}) bool {
	return firstUnmetPrerequisite(c, completed) == ""
}

func firstUnmetPrerequisite(c course.Course, completed map[string]struct{}) string {
	for _, prereq := range c.Prerequisites {
		if _, ok := completed[prereq]; !ok {
			return prereq
		}
	}
	return ""
}
