package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/engine"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/ingest"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/timeslot"
	"github.com/campusplan/scheduler/internal/transcript"
)

// requestFlags is the CLI-surface mirror of engine.Request: every
// field a caller can set from the command line or a bound config file.
type requestFlags struct {
	catalogPath   string
	selectionPath string
	completed     []string
	gpa           float64
	weights       []string // "name=value" pairs, parsed with scorer.ParseOption
	freeDays      []string
	campus        string
	teacher       string
	targetECTS    int
	maxECTS       int
	maxResults    int
	allowConflict bool
	maxConflicts  int
	timeout       time.Duration
	filterPrereqs bool
	seed          int64
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVar(&f.catalogPath, "catalog", "", "catalog file (.csv or .json)")
	cmd.Flags().StringVar(&f.selectionPath, "selection", "", "JSON file mapping main course code to Mandatory|Optional|Excluded")
	cmd.Flags().StringSliceVar(&f.completed, "completed", nil, "main codes of courses the student already completed")
	cmd.Flags().Float64Var(&f.gpa, "gpa", 0, "student GPA in [0,4], used for the ECTS cap rule unless --max-ects is set")
	cmd.Flags().StringSliceVar(&f.weights, "weight", nil, "preference weight as name=value, repeatable")
	cmd.Flags().StringSliceVar(&f.freeDays, "free-day", nil, "day name the student would like kept free, repeatable")
	cmd.Flags().StringVar(&f.campus, "preferred-campus", "", "preferred campus")
	cmd.Flags().StringVar(&f.teacher, "preferred-teacher", "", "preferred teacher")
	cmd.Flags().IntVar(&f.targetECTS, "target-ects", 30, "target total ECTS for prefer_fewer_ects")
	cmd.Flags().IntVar(&f.maxECTS, "max-ects", 0, "explicit ECTS cap; when set (0 included) it overrides the GPA rule, when unset the GPA rule applies if --gpa or --completed is given, otherwise the cap is 0")
	cmd.Flags().IntVar(&f.maxResults, "max-results", 10, "maximum schedules to return")
	cmd.Flags().BoolVar(&f.allowConflict, "allow-conflicts", false, "allow time conflicts up to --max-conflicts")
	cmd.Flags().IntVar(&f.maxConflicts, "max-conflicts", 0, "conflict budget when --allow-conflicts is set")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "search time budget")
	cmd.Flags().BoolVar(&f.filterPrereqs, "filter-prereqs", true, "drop sections whose prerequisites aren't met")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "seed for local-search and population-based algorithms")
}

// bindConfig layers cmd's own flags under a fresh viper instance so a
// config file (--config) and SCHEDULER_* environment variables can
// override a flag's default without disturbing a value the caller
// actually passed on the command line. Grounded on
// noah-isme-sma-adp-api/pkg/config/config.go's per-instance viper.New()
// pattern, used here instead of the global singleton so generate/bench/
// compare don't bind the same flag names over each other.
func bindConfig(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	v.SetEnvPrefix("SCHEDULER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	if cfgFile != "" {
		_ = v.ReadInConfig() // already validated once by initConfig
	}
	return v
}

// explicitlySet reports whether name was actually provided by the
// caller, through the flag itself, a bound config file key, or its
// environment variable, rather than left at the flag's own default.
func explicitlySet(cmd *cobra.Command, v *viper.Viper, name string) bool {
	if cmd.Flags().Changed(name) {
		return true
	}
	if v.InConfig(name) {
		return true
	}
	envKey := "SCHEDULER_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	_, present := os.LookupEnv(envKey)
	return present
}

func (f *requestFlags) buildRequest(cmd *cobra.Command) (engine.Request, error) {
	v := bindConfig(cmd)

	f.catalogPath = v.GetString("catalog")
	f.selectionPath = v.GetString("selection")
	f.completed = v.GetStringSlice("completed")
	f.gpa = v.GetFloat64("gpa")
	f.weights = v.GetStringSlice("weight")
	f.freeDays = v.GetStringSlice("free-day")
	f.campus = v.GetString("preferred-campus")
	f.teacher = v.GetString("preferred-teacher")
	f.targetECTS = v.GetInt("target-ects")
	f.maxECTS = v.GetInt("max-ects")
	f.maxResults = v.GetInt("max-results")
	f.allowConflict = v.GetBool("allow-conflicts")
	f.maxConflicts = v.GetInt("max-conflicts")
	f.timeout = v.GetDuration("timeout")
	f.filterPrereqs = v.GetBool("filter-prereqs")
	f.seed = v.GetInt64("seed")

	grid := timeslot.DefaultGrid()

	catalog, err := loadCatalog(f.catalogPath, grid)
	if err != nil {
		return engine.Request{}, err
	}

	selection, err := loadSelection(f.selectionPath)
	if err != nil {
		return engine.Request{}, err
	}

	prefs, err := f.buildPrefs()
	if err != nil {
		return engine.Request{}, err
	}

	var txView *transcript.View
	if explicitlySet(cmd, v, "gpa") || explicitlySet(cmd, v, "completed") {
		view := transcript.NewView(f.completed, f.gpa)
		txView = &view
	}

	limits := evaluator.Limits{
		MaxResults:      f.maxResults,
		MaxECTS:         f.maxECTS,
		MaxECTSExplicit: explicitlySet(cmd, v, "max-ects"),
		AllowConflicts:  f.allowConflict,
		MaxConflicts:    f.maxConflicts,
		Timeout:         f.timeout,
	}

	return engine.Request{
		Catalog:         catalog,
		Selection:       selection,
		Prefs:           prefs,
		Limits:          limits,
		Transcript:      txView,
		FilterByPrereqs: f.filterPrereqs,
		PrereqsRequired: f.filterPrereqs,
		Seed:            f.seed,
	}, nil
}

func (f *requestFlags) buildPrefs() (scorer.Prefs, error) {
	weights := make(map[scorer.Option]float64, len(f.weights))
	for _, raw := range f.weights {
		name, valueStr, ok := strings.Cut(raw, "=")
		if !ok {
			return scorer.Prefs{}, fmt.Errorf("malformed --weight %q, want name=value", raw)
		}
		opt, err := scorer.ParseOption(strings.TrimSpace(name))
		if err != nil {
			return scorer.Prefs{}, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
		if err != nil {
			return scorer.Prefs{}, fmt.Errorf("malformed --weight %q: %w", raw, err)
		}
		weights[opt] = value
	}

	freeDays := make(map[timeslot.Day]struct{}, len(f.freeDays))
	for _, name := range f.freeDays {
		day, err := timeslot.ParseDay(strings.TrimSpace(name))
		if err != nil {
			return scorer.Prefs{}, err
		}
		freeDays[day] = struct{}{}
	}

	return scorer.Prefs{
		Weights:          weights,
		FreeDays:         freeDays,
		PreferredCampus:  f.campus,
		PreferredTeacher: f.teacher,
		TargetECTS:       f.targetECTS,
	}, nil
}

func loadCatalog(path string, grid *timeslot.Grid) ([]course.Course, error) {
	if path == "" {
		return nil, fmt.Errorf("--catalog is required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %q: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ingest.ParseJSON(file, grid)
	case ".csv":
		return ingest.ParseCSV(file, grid)
	default:
		return nil, fmt.Errorf("unsupported catalog extension %q, want .csv or .json", filepath.Ext(path))
	}
}

func loadSelection(path string) (map[string]course.SelectionPolicy, error) {
	if path == "" {
		return nil, fmt.Errorf("--selection is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selection %q: %w", path, err)
	}
	var asStrings map[string]string
	if err := json.Unmarshal(raw, &asStrings); err != nil {
		return nil, fmt.Errorf("parsing selection %q: %w", path, err)
	}
	out := make(map[string]course.SelectionPolicy, len(asStrings))
	for mainCode, policyName := range asStrings {
		policy, err := parsePolicy(policyName)
		if err != nil {
			return nil, fmt.Errorf("selection %q, course %q: %w", path, mainCode, err)
		}
		out[mainCode] = policy
	}
	return out, nil
}

func parsePolicy(name string) (course.SelectionPolicy, error) {
	switch name {
	case "Mandatory":
		return course.Mandatory, nil
	case "Optional":
		return course.Optional, nil
	case "Excluded":
		return course.Excluded, nil
	default:
		return 0, fmt.Errorf("unknown selection policy %q", name)
	}
}
