// Package engine defines the uniform scheduler contract every search,
// local-search, population-based, and hybrid algorithm implements, plus
// the single Generate entry point that drives them (spec §5).
//
// Grounded on the teacher's internal/solver/integrated_scheduler.go,
// which sequences graph-build -> coloring -> SA refinement behind one
// exported call; generalized here into a registry of interchangeable
// Schedulers behind one contract, the way database/sql's driver
// registry lets many drivers answer the same Query call.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/campusplan/scheduler/internal/course"
	"github.com/campusplan/scheduler/internal/evaluator"
	"github.com/campusplan/scheduler/internal/schedule"
	"github.com/campusplan/scheduler/internal/scorer"
	"github.com/campusplan/scheduler/internal/search"
	"github.com/campusplan/scheduler/internal/selector"
	"github.com/campusplan/scheduler/internal/transcript"
)

// input-validation range bounds (spec §3.1's Limits table).
const (
	minMaxResults   = 1
	maxMaxResults   = 100
	minMaxECTS      = 0
	maxMaxECTS      = 60
	minMaxConflicts = 0
	maxMaxConflicts = 10
	minTimeout      = time.Second
	maxTimeout      = 600 * time.Second
)

// ProgressEvent reports exploration progress from a running Scheduler.
// Schedulers send these on the caller's channel with a non-blocking
// send: when the channel is full the new event is dropped and the
// events already buffered are kept, so a slow consumer observes gaps,
// never a blocked producer.
type ProgressEvent struct {
	Algorithm string
	Explored  int
	Frontier  int
	BestScore float64
}

// RunInput bundles everything a Scheduler needs to search one prepared
// space. Schedulers must not mutate Prepared; they branch via
// schedule.Schedule's With/Without.
type RunInput struct {
	Prepared        *search.PreparedSearch
	Limits          evaluator.Limits
	Prefs           scorer.Prefs
	MandatoryCodes  []string
	Completed       map[string]struct{}
	PrereqsRequired bool
	Progress        chan<- ProgressEvent

	// Seed drives every pseudo-random choice a local-search or
	// population-based Scheduler makes. Identical Seed plus identical
	// Prepared/Limits/Prefs must reproduce identical output order (spec
	// §5.4's determinism law); complete-search algorithms ignore it, as
	// they branch in a fixed lexicographic/priority order already.
	Seed int64
}

// Scheduler is the uniform contract every algorithm implements (spec
// §5.1): a name for selection/reporting, and a Run that explores
// in.Prepared under ctx and returns whatever complete schedules it
// found. Run must itself honor ctx cancellation/deadline; Generate does
// not kill goroutines, it only stops waiting on them.
type Scheduler interface {
	Name() string
	Run(ctx context.Context, in RunInput) ([]schedule.Schedule, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Scheduler{}
)

// Register files a Scheduler under its own Name for later lookup by
// AlgorithmChoice. Algorithm packages call this from an init func, the
// same self-registration idiom database/sql drivers use.
func Register(s Scheduler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Name()] = s
}

func lookup(name string) (Scheduler, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	return s, ok
}

// Names returns every registered scheduler name, sorted, for CLI help
// text and the selector's rubric.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChoiceMode selects how Generate picks among registered Schedulers
// (spec §5.2).
type ChoiceMode int

const (
	// Named runs exactly the Scheduler matching AlgorithmChoice.Name.
	Named ChoiceMode = iota
	// Auto lets the selector package's rubric pick one Scheduler based
	// on problem shape.
	Auto
	// CompareAll races every registered Scheduler and keeps the result
	// with the best finalized top score.
	CompareAll
)

// AlgorithmChoice is the caller's algorithm selection.
type AlgorithmChoice struct {
	Mode ChoiceMode
	Name string
}

// ErrorKind enumerates the engine-level failure taxonomy (spec §7),
// distinct from evaluator.ReasonKind: these describe why the engine
// could not even attempt or finish a search, not why a particular
// schedule was infeasible.
type ErrorKind int

const (
	UnknownAlgorithm ErrorKind = iota
	BuilderInfeasible
	Canceled
	TimedOut
	NoFeasibleSchedule
	// InvalidInput marks a request rejected before search ever starts
	// (spec §7's "input errors"): a malformed catalog or an
	// out-of-range Limits field. Input carries which check failed.
	InvalidInput
	// PrerequisiteCycle marks a catalog whose prerequisite graph (keyed
	// by main code) contains a cycle, discovered before the smart
	// filter's removal pass runs. Cycle carries the cycle's main codes
	// in traversal order.
	PrerequisiteCycle
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownAlgorithm:
		return "UnknownAlgorithm"
	case BuilderInfeasible:
		return "BuilderInfeasible"
	case Canceled:
		return "Canceled"
	case TimedOut:
		return "TimedOut"
	case NoFeasibleSchedule:
		return "NoFeasibleSchedule"
	case InvalidInput:
		return "InvalidInput"
	case PrerequisiteCycle:
		return "PrerequisiteCycle"
	default:
		return "Unknown"
	}
}

// InputIssueKind enumerates the malformed-input checks Generate runs
// before dispatching into search.Build (spec §7, §6).
type InputIssueKind int

const (
	DuplicateCourseCode InputIssueKind = iota
	EmptySlots
	MaxECTSOutOfRange
	MaxResultsOutOfRange
	MaxConflictsOutOfRange
	TimeoutOutOfRange
)

func (k InputIssueKind) String() string {
	switch k {
	case DuplicateCourseCode:
		return "DuplicateCourseCode"
	case EmptySlots:
		return "EmptySlots"
	case MaxECTSOutOfRange:
		return "MaxECTSOutOfRange"
	case MaxResultsOutOfRange:
		return "MaxResultsOutOfRange"
	case MaxConflictsOutOfRange:
		return "MaxConflictsOutOfRange"
	case TimeoutOutOfRange:
		return "TimeoutOutOfRange"
	default:
		return "Unknown"
	}
}

// InputIssue names the single check that rejected a Request. Code
// carries the offending course code when Kind is DuplicateCourseCode
// or EmptySlots.
type InputIssue struct {
	Kind InputIssueKind
	Code string
}

func (i InputIssue) Error() string {
	if i.Code == "" {
		return i.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", i.Kind, i.Code)
}

// Error is the structured error Generate returns. Reason is populated
// when Kind is BuilderInfeasible or NoFeasibleSchedule; Input when Kind
// is InvalidInput; Cycle when Kind is PrerequisiteCycle.
type Error struct {
	Kind      ErrorKind
	Algorithm string
	Reason    *evaluator.Reason
	Input     *InputIssue
	Cycle     []string
	// PerAlgorithm carries every racing algorithm's outcome when Kind
	// is NoFeasibleSchedule and the request was CompareAll, so a caller
	// can still see which algorithms ran and why each came up empty.
	PerAlgorithm []AlgorithmResult
	cause        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine: %s", e.Kind)
	if e.Algorithm != "" {
		fmt.Fprintf(&b, " (%s)", e.Algorithm)
	}
	if e.Reason != nil {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Input != nil {
		fmt.Fprintf(&b, ": %s", e.Input)
	}
	if len(e.Cycle) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Cycle, " -> "))
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Candidate is one finalized schedule plus its preference score.
type Candidate struct {
	Schedule schedule.Schedule
	Score    float64
}

// AlgorithmResult is one algorithm's finalized outcome from a
// CompareAll race: either Candidates (possibly empty) or, when
// finalize rejected every raw schedule that algorithm found, the
// Reason it did.
type AlgorithmResult struct {
	Algorithm  string
	Candidates []Candidate
	Reason     *evaluator.Reason
}

// Result is Generate's successful output. RunID is a fresh identifier
// minted per call, useful for correlating one Generate invocation
// across logs, metrics labels, and a caller's own request tracing.
// PerAlgorithm is populated only for a CompareAll run: one entry per
// algorithm that raced, in Names() order, so every algorithm's metrics
// stay comparable even though Algorithm/Candidates above still carry
// just the winner (spec §5.3: "a joined result set with per-algorithm
// metadata").
type Result struct {
	RunID        string
	Algorithm    string
	Candidates   []Candidate
	PerAlgorithm []AlgorithmResult
}

// Request bundles every Generate input, per spec §3.1/§6.
type Request struct {
	Catalog         []course.Course
	Selection       map[string]course.SelectionPolicy
	Prefs           scorer.Prefs
	Limits          evaluator.Limits
	Transcript      *transcript.View
	FilterByPrereqs bool
	PrereqsRequired bool
	Choice          AlgorithmChoice
	Progress        chan<- ProgressEvent

	// Seed seeds every randomized Scheduler (see RunInput.Seed). Zero
	// is a valid, fully deterministic seed like any other; Generate
	// never substitutes a time-based value in its place.
	Seed int64
}

// Generate is the single entry point (spec §5): it builds the search
// space, runs the chosen algorithm(s) under in.Limits.Timeout, and
// finalizes the raw results into sorted, deduplicated Candidates.
func Generate(ctx context.Context, req Request) (*Result, *Error) {
	if issue := validateRequest(req); issue != nil {
		return nil, &Error{Kind: InvalidInput, Input: issue}
	}

	if req.FilterByPrereqs && req.Transcript != nil {
		if cycle := transcript.DetectCycle(req.Catalog); len(cycle) > 0 {
			return nil, &Error{Kind: PrerequisiteCycle, Cycle: cycle}
		}
	}

	limits := req.Limits.Normalize()

	// The GPA rule only ever competes with an explicit MaxECTS when a
	// transcript is present; with no transcript there is no rule to
	// override, so limits.MaxECTS is used as given either way.
	maxECTS := limits.MaxECTS
	if req.Transcript != nil {
		var override *int
		if limits.MaxECTSExplicit {
			v := limits.MaxECTS
			override = &v
		}
		maxECTS = transcript.EffectiveMaxECTS(req.Transcript, override)
	}
	limits.MaxECTS = maxECTS
	req.Prefs.MaxECTS = maxECTS

	catalog, removedByPrereq := transcript.Filter(req.Catalog, req.Transcript, req.FilterByPrereqs)

	prepared, reason := search.Build(catalog, req.Selection, req.Prefs, limits, removedByPrereq)
	if reason != nil {
		return nil, &Error{Kind: BuilderInfeasible, Reason: reason}
	}

	completed := map[string]struct{}{}
	if req.Transcript != nil {
		completed = req.Transcript.CompletedCourseCodes
	}

	in := RunInput{
		Prepared:        prepared,
		Limits:          limits,
		Prefs:           req.Prefs,
		MandatoryCodes:  prepared.MandatoryMainCodes(),
		Completed:       completed,
		PrereqsRequired: req.PrereqsRequired,
		Progress:        req.Progress,
		Seed:            req.Seed,
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if limits.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, limits.Timeout)
		defer cancel()
	}

	switch req.Choice.Mode {
	case Named:
		return runNamed(runCtx, req.Choice.Name, in, limits)
	case CompareAll:
		return runCompareAll(runCtx, in, limits)
	case Auto:
		name := selector.Recommend(prepared, limits).Algorithm
		return runNamed(runCtx, name, in, limits)
	default:
		return nil, &Error{Kind: UnknownAlgorithm}
	}
}

// validateRequest rejects a malformed request before it ever reaches
// search.Build (spec §7's input-errors taxonomy): a duplicate catalog
// code, a section with no time slots, or a Limits field outside its
// documented range. Unknown preference names are rejected earlier, at
// the boundary where a caller turns a raw name into a scorer.Option
// (see scorer.ParseOption); by the time a Request reaches Generate,
// Prefs.Weights is already keyed by valid Option values and has
// nothing left here to check.
func validateRequest(req Request) *InputIssue {
	seen := make(map[string]struct{}, len(req.Catalog))
	for _, c := range req.Catalog {
		if _, dup := seen[c.Code]; dup {
			return &InputIssue{Kind: DuplicateCourseCode, Code: c.Code}
		}
		seen[c.Code] = struct{}{}
	}
	for _, c := range req.Catalog {
		if len(c.Slots) == 0 {
			return &InputIssue{Kind: EmptySlots, Code: c.Code}
		}
	}

	limits := req.Limits
	if limits.MaxECTS < minMaxECTS || limits.MaxECTS > maxMaxECTS {
		return &InputIssue{Kind: MaxECTSOutOfRange}
	}
	if limits.MaxResults != 0 && (limits.MaxResults < minMaxResults || limits.MaxResults > maxMaxResults) {
		return &InputIssue{Kind: MaxResultsOutOfRange}
	}
	if limits.MaxConflicts < minMaxConflicts || limits.MaxConflicts > maxMaxConflicts {
		return &InputIssue{Kind: MaxConflictsOutOfRange}
	}
	if limits.Timeout != 0 && (limits.Timeout < minTimeout || limits.Timeout > maxTimeout) {
		return &InputIssue{Kind: TimeoutOutOfRange}
	}
	return nil
}

func runNamed(ctx context.Context, name string, in RunInput, limits evaluator.Limits) (*Result, *Error) {
	s, ok := lookup(name)
	if !ok {
		return nil, &Error{Kind: UnknownAlgorithm, Algorithm: name}
	}
	raw, err := s.Run(ctx, in)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &Error{Kind: TimedOut, Algorithm: name, cause: err}
		}
		if ctx.Err() == context.Canceled {
			return nil, &Error{Kind: Canceled, Algorithm: name, cause: err}
		}
	}
	return finalize(name, raw, in, limits)
}

// runCompareAll races every registered Scheduler concurrently (spec
// §5.3), grounded on the teacher's parallel dial-out style in
// cmd/api/main.go, generalized with errgroup the way
// jonathan-innis-karpenter-core's provisioning package fans out
// scheduling attempts. Every algorithm runs to its own termination
// (cancel/timeout) so its metrics stay comparable (spec §5.3: "the
// first to reach max_results does not cancel the others"); the
// returned Result keeps every one of them in PerAlgorithm, not just
// the winner (mirroring bench.Compare's RunStats, which keeps every
// algorithm's stats rather than picking one).
func runCompareAll(ctx context.Context, in RunInput, limits evaluator.Limits) (*Result, *Error) {
	names := Names()
	if len(names) == 0 {
		return nil, &Error{Kind: UnknownAlgorithm}
	}

	perAlgorithm := make([]AlgorithmResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			s, _ := lookup(name)
			raw, err := s.Run(gctx, in)
			if err != nil && gctx.Err() == nil {
				perAlgorithm[i] = AlgorithmResult{Algorithm: name}
				return nil
			}
			res, engErr := finalize(name, raw, in, limits)
			if engErr == nil {
				perAlgorithm[i] = AlgorithmResult{Algorithm: name, Candidates: res.Candidates}
			} else {
				perAlgorithm[i] = AlgorithmResult{Algorithm: name, Reason: engErr.Reason}
			}
			return nil
		})
	}
	_ = g.Wait()

	var best *AlgorithmResult
	for i := range perAlgorithm {
		ar := &perAlgorithm[i]
		if len(ar.Candidates) == 0 {
			continue
		}
		if best == nil || ar.Candidates[0].Score > best.Candidates[0].Score {
			best = ar
		}
	}
	if best == nil {
		var reason *evaluator.Reason
		for _, ar := range perAlgorithm {
			if ar.Reason != nil {
				reason = ar.Reason
				break
			}
		}
		return nil, &Error{Kind: NoFeasibleSchedule, Reason: reason, PerAlgorithm: perAlgorithm}
	}
	return &Result{
		RunID:        uuid.NewString(),
		Algorithm:    best.Algorithm,
		Candidates:   best.Candidates,
		PerAlgorithm: perAlgorithm,
	}, nil
}

// finalize validates, scores, sorts, dedupes, and truncates an
// algorithm's raw output (spec §5.4's common tail all algorithms
// share).
func finalize(algorithm string, raw []schedule.Schedule, in RunInput, limits evaluator.Limits) (*Result, *Error) {
	seen := map[uint64]struct{}{}
	candidates := make([]Candidate, 0, len(raw))
	var reason *evaluator.Reason

	for _, s := range raw {
		ok, r := evaluator.IsFeasibleFinal(s, limits, in.MandatoryCodes, in.Completed, in.PrereqsRequired)
		if !ok {
			if reason == nil {
				reason = r
			}
			continue
		}
		fp, err := s.Fingerprint()
		if err != nil {
			continue
		}
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		candidates = append(candidates, Candidate{Schedule: s, Score: scorer.Score(s, in.Prefs)})
	}

	if len(candidates) == 0 {
		if reason == nil {
			reason = &evaluator.Reason{Kind: evaluator.OptionProductEmpty}
		}
		return nil, &Error{Kind: NoFeasibleSchedule, Algorithm: algorithm, Reason: reason}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if ci, cj := candidates[i].Schedule.ConflictCount(), candidates[j].Schedule.ConflictCount(); ci != cj {
			return ci < cj
		}
		if ei, ej := candidates[i].Schedule.TotalECTS(), candidates[j].Schedule.TotalECTS(); ei != ej {
			return ei < ej
		}
		return lessTuple(candidates[i].Schedule.CodeTuple(), candidates[j].Schedule.CodeTuple())
	})

	if limits.MaxResults > 0 && len(candidates) > limits.MaxResults {
		candidates = candidates[:limits.MaxResults]
	}

	return &Result{RunID: uuid.NewString(), Algorithm: algorithm, Candidates: candidates}, nil
}

// lessTuple breaks score ties by lexicographic code tuple (spec
// §3.2.6), giving every algorithm the same deterministic ordering for
// otherwise-equal candidates.
func lessTuple(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

