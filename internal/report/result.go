package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Zagrios/bs-manager/internal/logging"
)

// Outcome is the terminal state of a run. Completed means the teardown
// happened, whatever the restore did. Aborted means the run was stopped
// while polling and nothing was touched.
type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomeTeardownFailed Outcome = "teardown_failed"
	OutcomeAborted        Outcome = "aborted"
)

// StepResult is the outcome of one pipeline step. Steps are independent:
// a failed restore never changes the teardown result.
type StepResult struct {
	Attempted bool   `json:"attempted" yaml:"attempted"`
	OK        bool   `json:"ok" yaml:"ok"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded marks the step attempted and successful
func (s *StepResult) Succeeded() {
	s.Attempted = true
	s.OK = true
}

// Failed marks the step attempted and failed with kind and err
func (s *StepResult) Failed(kind string, err error) {
	s.Attempted = true
	s.OK = false
	s.Kind = kind
	if err != nil {
		s.Error = err.Error()
	}
}

// Status renders the step for one-line summaries
func (s StepResult) Status() string {
	switch {
	case !s.Attempted:
		return "skipped"
	case s.OK:
		return "ok"
	case s.Kind != "":
		return s.Kind
	default:
		return "failed"
	}
}

// Result is the run-level truth, filled once by the orchestrator.
type Result struct {
	RunID string `json:"run_id" yaml:"run_id"`
	PID   int32  `json:"pid" yaml:"pid"`
	Path  string `json:"path" yaml:"path"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"waited_ns" yaml:"waited"`
	Probes    int           `json:"probes" yaml:"probes"`

	Outcome  Outcome    `json:"outcome" yaml:"outcome"`
	Teardown StepResult `json:"teardown" yaml:"teardown"`
	Restore  StepResult `json:"restore" yaml:"restore"`
}

// NewResult creates a result with a fresh run ID
func NewResult(pid int32, path string, start time.Time) *Result {
	return &Result{
		RunID:     uuid.NewString(),
		PID:       pid,
		Path:      path,
		StartTime: start,
	}
}

// Finish freezes the outcome and end time
func (r *Result) Finish(outcome Outcome, end time.Time) {
	r.Outcome = outcome
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
}

// Summary is the one-line human form of the result
func (r *Result) Summary() string {
	return fmt.Sprintf("RUN %s | outcome=%s | teardown=%s | restore=%s | waited=%.0fs | probes=%d | pid=%d | path=%s",
		r.RunID,
		r.Outcome,
		r.Teardown.Status(),
		r.Restore.Status(),
		r.Duration.Seconds(),
		r.Probes,
		r.PID,
		r.Path,
	)
}

// LogSummary emits the one-line summary. This is what ops grep for.
func (r *Result) LogSummary(logger *logging.Logger) {
	if r.Outcome == OutcomeCompleted {
		logger.Info(r.Summary())
		return
	}
	logger.Warn(r.Summary())
}
