package docpress

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Outcome is how a task ended.
type Outcome string

const (
	// OutcomeGenerated: a real handler output was promoted.
	OutcomeGenerated Outcome = "generated"
	// OutcomeFresh: the existing artifact is up to date.
	OutcomeFresh Outcome = "fresh"
	// OutcomeKept: the new output was undersized and the existing real
	// artifact was left untouched.
	OutcomeKept Outcome = "kept"
	// OutcomePlaceholder: only the placeholder route succeeded.
	OutcomePlaceholder Outcome = "placeholder"
	// OutcomeFailed: every matching route failed.
	OutcomeFailed Outcome = "failed"
	// OutcomeCanceled: the run was canceled before the task started.
	OutcomeCanceled Outcome = "canceled"
)

// TaskResult records one task.
type TaskResult struct {
	Key      string
	Route    string
	Outcome  Outcome
	Path     string
	Duration time.Duration
	Err      error
}

// TaskFailure is a hard failure.
type TaskFailure struct {
	Key   string
	Cause error
}

// Report summarises a run.
type Report struct {
	RunID       string
	Generated   int
	Skipped     int // fresh + kept
	Placeholder int
	Failed      int
	Canceled    int
	Failures    []TaskFailure
	Warnings    []string
	Results     []TaskResult
	Entries     int
	Available   int
	Duration    time.Duration
}

// HardFailures counts tasks for which every route failed.
func (r *Report) HardFailures() int {
	return r.Failed
}

// WriteSummary prints counts and each failure.
func (r *Report) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "generated %d, skipped %d, placeholder %d, failed %d",
		r.Generated, r.Skipped, r.Placeholder, r.Failed)
	if r.Canceled > 0 {
		fmt.Fprintf(w, ", canceled %d", r.Canceled)
	}
	fmt.Fprintf(w, " (%d registry entries, %d available) in %s\n", r.Entries, r.Available, r.Duration.Round(time.Millisecond))
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  FAIL %s: %v\n", f.Key, f.Cause)
	}
}

// runStats accumulates results across workers.
type runStats struct {
	mu       sync.Mutex
	results  []TaskResult
	warnings []string
}

func (s *runStats) record(r TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *runStats) warn(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// report builds a Report with results sorted by task key.
func (s *runStats) report(runID string) *Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := append([]TaskResult(nil), s.results...)
	sort.Slice(results, func(i, j int) bool { return results[i].Key < results[j].Key })

	r := &Report{
		RunID:    runID,
		Results:  results,
		Warnings: append([]string(nil), s.warnings...),
	}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeGenerated:
			r.Generated++
		case OutcomeFresh, OutcomeKept:
			r.Skipped++
		case OutcomePlaceholder:
			r.Placeholder++
		case OutcomeFailed:
			r.Failed++
			r.Failures = append(r.Failures, TaskFailure{Key: res.Key, Cause: res.Err})
		case OutcomeCanceled:
			r.Canceled++
		}
	}
	return r
}
