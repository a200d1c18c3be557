// Package cleaner waits for a process to exit, then tears down the
// redirection symlink it needed and puts the backup back in place.
package cleaner

// If we are unsure, DO LESS.
// No restart. No signals. No retries.

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/Zagrios/bs-manager/internal/config"
	"github.com/Zagrios/bs-manager/internal/logging"
	"github.com/Zagrios/bs-manager/internal/observe"
	"github.com/Zagrios/bs-manager/internal/report"
	"github.com/Zagrios/bs-manager/internal/restore"
	"github.com/Zagrios/bs-manager/internal/teardown"
)

// State of the watch-then-teardown sequence
type State int

const (
	StateValidating State = iota
	StatePolling
	StateTearingDown
	StateRestoring
	StateDone
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StatePolling:
		return "polling"
	case StateTearingDown:
		return "tearing_down"
	case StateRestoring:
		return "restoring"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Teardowner removes the redirection at path
type Teardowner interface {
	Teardown(path string) error
}

// BackupRestorer puts a backup back under parent
type BackupRestorer interface {
	Restore(parent string) error
}

// Options configures a Cleaner. Zero values fall back to the reference behaviour.
type Options struct {
	ExpectedName string
	Interval     time.Duration

	Prober   observe.Prober
	Clock    observe.Clock
	Guard    Teardowner
	Restorer BackupRestorer

	Logger  *logging.Logger
	Metrics *report.Metrics

	// OnTransition is called on every state change
	OnTransition func(from, to State)
}

// Cleaner drives Validating → Polling → TearingDown → Restoring → Done
type Cleaner struct {
	opts Options
}

// New creates a cleaner, filling in defaults
func New(opts Options) *Cleaner {
	if opts.ExpectedName == "" {
		opts.ExpectedName = config.ExpectedName
	}
	if opts.Interval <= 0 {
		opts.Interval = observe.DefaultPollInterval
	}
	if opts.Prober == nil {
		opts.Prober = observe.NewProcessProber()
	}
	if opts.Clock == nil {
		opts.Clock = observe.Real()
	}
	if opts.Guard == nil {
		opts.Guard = teardown.NewGuard(teardown.ModeTarget, true)
	}
	if opts.Restorer == nil {
		opts.Restorer = restore.NewRestorer(opts.ExpectedName, config.BackupSuffix)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Cleaner{opts: opts}
}

// Run validates the target, waits for its process to go away, then
// tears down and restores. A validation failure is the only error
// returned; every later failure is recorded in the result.
func (c *Cleaner) Run(ctx context.Context, target Target) (*report.Result, error) {
	logger := c.opts.Logger.WithField("pid", target.PID)

	var (
		result *report.Result
		timing *observe.Timing
	)
	state := StateValidating

	for {
		switch state {
		case StateValidating:
			if err := target.Validate(c.opts.ExpectedName); err != nil {
				return nil, err
			}
			timing = observe.NewTiming(c.opts.Clock)
			result = report.NewResult(target.PID, target.Path, timing.StartedAt)
			state = c.transition(state, StatePolling)

		case StatePolling:
			probes, waited, err := c.poll(ctx, target, logger)
			result.Probes = probes
			if err != nil {
				logger.Warn("Stopped waiting before the process exited, nothing was touched",
					map[string]interface{}{"error": err.Error()})
				timing.Complete()
				result.Finish(report.OutcomeAborted, timing.CompletedAt)
				state = c.transition(state, StateDone)
				continue
			}
			logger.Info("Process has stopped, deleting directory",
				map[string]interface{}{"path": target.Path, "waited": waited.String()})
			state = c.transition(state, StateTearingDown)

		case StateTearingDown:
			if err := c.opts.Guard.Teardown(target.Path); err != nil {
				logger.Error("Failed to delete directory", map[string]interface{}{"path": target.Path, "error": err.Error()})
				result.Teardown.Failed(teardownKind(err), err)
				timing.Complete()
				result.Finish(report.OutcomeTeardownFailed, timing.CompletedAt)
				state = c.transition(state, StateDone)
				continue
			}
			logger.Info("Directory deleted successfully", map[string]interface{}{"path": target.Path})
			result.Teardown.Succeeded()
			state = c.transition(state, StateRestoring)

		case StateRestoring:
			parent := filepath.Dir(filepath.Clean(target.Path))
			if err := c.opts.Restorer.Restore(parent); err != nil {
				logger.Error("Failed to restore backup directory", map[string]interface{}{"parent": parent, "error": err.Error()})
				result.Restore.Failed(restoreKind(err), err)
			} else {
				logger.Info("Backup directory renamed into place", map[string]interface{}{"path": target.Path})
				result.Restore.Succeeded()
			}
			timing.Complete()
			result.Finish(report.OutcomeCompleted, timing.CompletedAt)
			state = c.transition(state, StateDone)

		case StateDone:
			if c.opts.Metrics != nil {
				c.opts.Metrics.RecordResult(result)
			}
			result.LogSummary(logger)
			return result, nil
		}
	}
}

func (c *Cleaner) poll(ctx context.Context, target Target, logger *logging.Logger) (int, time.Duration, error) {
	prober := c.opts.Prober
	if c.opts.Metrics != nil {
		metrics := c.opts.Metrics
		inner := prober
		prober = observe.ProberFunc(func(ctx context.Context, pid int32) bool {
			metrics.RecordProbe()
			return inner.Running(ctx, pid)
		})
	}

	watcher := observe.New(target.PID, prober, c.opts.Clock, c.opts.Interval)
	watcher.OnTick = func(tick int) {
		logger.Info("Process is still running", map[string]interface{}{"probe": tick})
	}
	probes, err := watcher.Wait(ctx)
	return probes, watcher.Duration(), err
}

func (c *Cleaner) transition(from, to State) State {
	c.opts.Logger.Debug("state "+from.String()+" -> "+to.String())
	if c.opts.OnTransition != nil {
		c.opts.OnTransition(from, to)
	}
	return to
}

func teardownKind(err error) string {
	var tErr *teardown.Error
	if errors.As(err, &tErr) {
		return tErr.Kind.String()
	}
	return teardown.KindRemovalFailed.String()
}

func restoreKind(err error) string {
	var rErr *restore.Error
	if errors.As(err, &rErr) {
		return rErr.Kind.String()
	}
	return restore.KindRenameFailed.String()
}
