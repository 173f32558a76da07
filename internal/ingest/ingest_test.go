package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/ingest"
	"github.com/campusplan/scheduler/internal/timeslot"
)

func TestRowToCourseParsesSlotsAndObservesWeekend(t *testing.T) {
	grid := timeslot.DefaultGrid()
	row := ingest.Row{
		Code:          "CS101.1",
		Name:          "Intro to CS",
		ECTS:          6,
		Type:          "Lecture",
		Slots:         "Monday-1; Saturday-2",
		Prerequisites: "CS100, MATH100",
	}

	c, err := row.ToCourse(grid)
	require.NoError(t, err)
	require.Equal(t, "CS101.1", c.Code)
	require.Equal(t, course.Lecture, c.Type)
	require.Len(t, c.Slots, 2)
	require.Equal(t, []string{"CS100", "MATH100"}, c.Prerequisites)
	require.Contains(t, grid.ActiveDays(), timeslot.Saturday)
}

func TestRowToCourseRejectsMissingRequiredFields(t *testing.T) {
	row := ingest.Row{Type: "Lecture"}
	_, err := row.ToCourse(timeslot.DefaultGrid())
	require.Error(t, err)
}

func TestRowToCourseRejectsMalformedSlot(t *testing.T) {
	row := ingest.Row{Code: "A.1", Type: "Lecture", Slots: "NotADay"}
	_, err := row.ToCourse(timeslot.DefaultGrid())
	require.Error(t, err)
}

func TestRowToCourseRejectsOutOfRangePeriod(t *testing.T) {
	row := ingest.Row{Code: "A.1", Type: "Lecture", Slots: "Monday-99"}
	_, err := row.ToCourse(timeslot.DefaultGrid())
	require.Error(t, err)
}

func TestParseCSVRoundTrip(t *testing.T) {
	csv := "code,name,ects,type,slots\n" +
		"A.1,Algorithms,5,Lecture,Monday-1\n" +
		"A.L1,Algorithms Lab,0,Lab,Tuesday-2\n"

	courses, err := ingest.ParseCSV(strings.NewReader(csv), timeslot.DefaultGrid())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, "A.1", courses[0].Code)
	require.Equal(t, 5, courses[0].ECTS)
	require.Equal(t, course.Lab, courses[1].Type)
}

func TestParseCSVEmptyReturnsNoCourses(t *testing.T) {
	courses, err := ingest.ParseCSV(strings.NewReader(""), timeslot.DefaultGrid())
	require.NoError(t, err)
	require.Empty(t, courses)
}

func TestParseJSONRoundTrip(t *testing.T) {
	body := `[{"code":"B.1","name":"Data Structures","ects":5,"type":"Lecture","slots":"Wednesday-3"}]`

	courses, err := ingest.ParseJSON(strings.NewReader(body), timeslot.DefaultGrid())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "B.1", courses[0].Code)
	require.Equal(t, timeslot.Wednesday, courses[0].Slots[0].Day)
}

func TestParseJSONPropagatesRowError(t *testing.T) {
	body := `[{"code":"","type":"Lecture"}]`
	_, err := ingest.ParseJSON(strings.NewReader(body), timeslot.DefaultGrid())
	require.Error(t, err)
}
