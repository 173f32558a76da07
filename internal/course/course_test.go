package course_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func mon(period int) timeslot.Slot { return timeslot.Slot{Day: timeslot.Monday, Period: period} }

func TestMainCode(t *testing.T) {
	require.Equal(t, "COMP1111", course.MainCode("COMP1111.1"))
	require.Equal(t, "COMP1111", course.MainCode("COMP1111"))
	require.Equal(t, "COMP1111", course.Course{Code: "COMP1111.2"}.MainCode())
}

func TestOverlapCount(t *testing.T) {
	a := course.Course{Code: "A.1", Slots: []timeslot.Slot{mon(1), mon(2)}}
	b := course.Course{Code: "B.1", Slots: []timeslot.Slot{mon(2), mon(3)}}
	c := course.Course{Code: "C.1", Slots: []timeslot.Slot{mon(4)}}

	require.Equal(t, 1, course.OverlapCount(a, b))
	require.Equal(t, 0, course.OverlapCount(a, c))
	require.True(t, a.Overlaps(b))
	require.False(t, a.Overlaps(c))
}

func TestGroupCatalogPartitionsByMainCodeAndType(t *testing.T) {
	catalog := []course.Course{
		{Code: "COMP1111.1", Type: course.Lecture},
		{Code: "COMP1111.2", Type: course.Lab},
		{Code: "COMP2222.1", Type: course.Lecture},
	}

	groups := course.GroupCatalog(catalog)
	require.Len(t, groups, 2)

	g := groups["COMP1111"]
	require.NotNil(t, g)
	require.Len(t, g.ByType[course.Lecture], 1)
	require.Len(t, g.ByType[course.Lab], 1)

	sections := g.Sections()
	require.Len(t, sections, 2)
	require.Equal(t, "COMP1111.1", sections[0].Code) // Lecture sorts before Lab
}

func TestSortedSlots(t *testing.T) {
	c := course.Course{Slots: []timeslot.Slot{mon(3), mon(1), {Day: timeslot.Tuesday, Period: 1}}}
	sorted := c.SortedSlots()
	require.Equal(t, mon(1), sorted[0])
	require.Equal(t, mon(3), sorted[1])
}
