// Package ingest adapts external CSV/JSON catalog rows into
// course.Course values, the only place raw, untrusted input enters the
// engine (spec §6's ingestion contract). This is a boundary adapter,
// not part of the core algorithm surface.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/timeslot"
)

// Row is the wire shape of one catalog entry, validated at the
// boundary before it's turned into a course.Course. Slots use
// "Day-Period" pairs (e.g. "Monday-3"), semicolon separated;
// Prerequisites/Corequisites are comma-separated main codes.
type Row struct {
	Code          string `json:"code" csv:"code" validate:"required"`
	Name          string `json:"name" csv:"name"`
	ECTS          int    `json:"ects" csv:"ects" validate:"gte=0"`
	Type          string `json:"type" csv:"type" validate:"required,oneof=Lecture Lab ProblemSession"`
	Slots         string `json:"slots" csv:"slots"`
	Teacher       string `json:"teacher" csv:"teacher"`
	Faculty       string `json:"faculty" csv:"faculty"`
	Department    string `json:"department" csv:"department"`
	Campus        string `json:"campus" csv:"campus"`
	Prerequisites string `json:"prerequisites" csv:"prerequisites"`
	Corequisites  string `json:"corequisites" csv:"corequisites"`
}

var validate = validator.New()

// ToCourse validates r and converts it to a course.Course, observing
// any weekend day it references against grid so the active-day set
// (spec §6) stays accurate.
func (r Row) ToCourse(grid *timeslot.Grid) (course.Course, error) {
	if err := validate.Struct(r); err != nil {
		return course.Course{}, fmt.Errorf("ingest: invalid row %q: %w", r.Code, err)
	}

	slots, err := parseSlots(r.Slots, grid)
	if err != nil {
		return course.Course{}, fmt.Errorf("ingest: row %q: %w", r.Code, err)
	}

	return course.Course{
		Code:          r.Code,
		Name:          r.Name,
		ECTS:          r.ECTS,
		Type:          parseType(r.Type),
		Slots:         slots,
		Teacher:       r.Teacher,
		Faculty:       r.Faculty,
		Department:    r.Department,
		Campus:        r.Campus,
		Prerequisites: splitCodes(r.Prerequisites),
		Corequisites:  splitCodes(r.Corequisites),
	}, nil
}

func parseType(s string) course.Type {
	switch s {
	case "Lab":
		return course.Lab
	case "ProblemSession":
		return course.ProblemSession
	default:
		return course.Lecture
	}
}

func splitCodes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseSlots(s string, grid *timeslot.Grid) ([]timeslot.Slot, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	out := make([]timeslot.Slot, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		dayPart, periodPart, ok := strings.Cut(p, "-")
		if !ok {
			return nil, fmt.Errorf("malformed slot %q, want Day-Period", p)
		}
		day, err := timeslot.ParseDay(dayPart)
		if err != nil {
			return nil, err
		}
		period, err := strconv.Atoi(periodPart)
		if err != nil {
			return nil, fmt.Errorf("malformed period in slot %q: %w", p, err)
		}
		if grid != nil && !grid.ValidPeriod(period) {
			return nil, fmt.Errorf("period %d out of range for slot %q", period, p)
		}
		if grid != nil {
			grid.ObserveDay(day)
		}
		out = append(out, timeslot.Slot{Day: day, Period: period})
	}
	return out, nil
}

// ParseCSV reads a header + data-row CSV catalog. The header names must
// match Row's csv tags: code,name,ects,type,slots,teacher,faculty,
// department,campus,prerequisites,corequisites (any subset in any
// order; missing columns are left at their zero value). As with
// ParseJSON, a malformed row is skipped and its error collected rather
// than aborting the whole catalog.
func ParseCSV(r io.Reader, grid *timeslot.Grid) ([]course.Course, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("ingest: reading CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var out []course.Course
	var errs error
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: reading CSV row: %w", err)
		}
		row := Row{
			Code:          field(record, colIndex, "code"),
			Name:          field(record, colIndex, "name"),
			Type:          field(record, colIndex, "type"),
			Slots:         field(record, colIndex, "slots"),
			Teacher:       field(record, colIndex, "teacher"),
			Faculty:       field(record, colIndex, "faculty"),
			Department:    field(record, colIndex, "department"),
			Campus:        field(record, colIndex, "campus"),
			Prerequisites: field(record, colIndex, "prerequisites"),
			Corequisites:  field(record, colIndex, "corequisites"),
		}
		if ectsStr := field(record, colIndex, "ects"); ectsStr != "" {
			ects, err := strconv.Atoi(ectsStr)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("ingest: row %q: invalid ects %q: %w", row.Code, ectsStr, err))
				continue
			}
			row.ECTS = ects
		}

		c, err := row.ToCourse(grid)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, c)
	}
	return out, errs
}

func field(record []string, colIndex map[string]int, name string) string {
	i, ok := colIndex[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// ParseJSON reads a JSON array of Row objects. Rows are validated
// independently: a malformed row is recorded and skipped rather than
// aborting the whole catalog, and every such error is returned
// together via multierr so a caller sees the full list of bad rows
// in one pass instead of fixing them one at a time.
func ParseJSON(r io.Reader, grid *timeslot.Grid) ([]course.Course, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("ingest: decoding JSON catalog: %w", err)
	}
	out := make([]course.Course, 0, len(rows))
	var errs error
	for _, row := range rows {
		c, err := row.ToCourse(grid)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, c)
	}
	return out, errs
}
