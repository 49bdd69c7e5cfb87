package sorter

import (
	"time"

	"filesort/internal/failure"
)

// Result summarizes a run. Total == sum(Counts) == Discovered - len(Failures) - len(Skipped).
type Result struct {
	RunID      string         `json:"run_id"`
	Mode       string         `json:"mode"`
	Source     string         `json:"source"`
	Dest       string         `json:"destination"`
	Discovered int            `json:"discovered"`
	Total      int            `json:"total"`
	Bytes      int64          `json:"bytes"`
	Counts     map[string]int `json:"counts"`
	Failures   []Failure      `json:"failures"`
	Skipped    []string       `json:"skipped"`
	Started    time.Time      `json:"started"`
	Finished   time.Time      `json:"finished"`
}

// Failure records a file (or unreadable directory) that could not be handled.
type Failure struct {
	Name   string       `json:"name"`
	Path   string       `json:"path"`
	Reason string       `json:"reason"`
	Kind   failure.Kind `json:"kind"`
	Err    error        `json:"-"`
}

// Duration reports how long the run took.
func (r Result) Duration() time.Duration {
	if r.Finished.IsZero() || r.Started.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Succeeded reports whether every discovered file was relocated or skipped.
func (r Result) Succeeded() bool {
	return len(r.Failures) == 0
}

func (r *Result) addFailure(name, path string, err error) Failure {
	f := Failure{
		Name:   name,
		Path:   path,
		Reason: err.Error(),
		Kind:   failure.KindOf(err),
		Err:    err,
	}
	r.Failures = append(r.Failures, f)
	return f
}

// EventKind labels an Event.
type EventKind string

const (
	// EventPlanned is sent once after discovery with the number of files
	// that will be processed.
	EventPlanned   EventKind = "planned"
	EventRelocated EventKind = "relocated"
	EventFailed    EventKind = "failed"
	EventSkipped   EventKind = "skipped"
)

// Action is how a relocated file reached its bucket.
type Action string

const (
	ActionMoved  Action = "moved"
	ActionCopied Action = "copied"
)

// Event reports progress for a single file.
type Event struct {
	Kind        EventKind
	Action      Action
	Name        string
	Category    string
	Source      string
	Destination string
	Bytes       int64
	Pending     int
	Err         error
}

// EventSink consumes progress events. It is called synchronously from the
// processing loop.
type EventSink func(Event)
