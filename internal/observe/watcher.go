package observe

// If we are unsure, DO LESS.
// Observe the PID. Never signal it, never restart it.

import (
	"context"
	"time"
)

// DefaultPollInterval is the wait between two liveness probes
const DefaultPollInterval = 2 * time.Second

// Watcher observes PID lifecycle. Nothing else.
type Watcher struct {
	pid       int32
	prober    Prober
	clock     Clock
	interval  time.Duration
	startTime time.Time

	// OnTick is called after every probe that found the process alive,
	// before waiting. tick starts at 1.
	OnTick func(tick int)
}

// New creates a watcher for a PID
func New(pid int32, prober Prober, clock Clock, interval time.Duration) *Watcher {
	if clock == nil {
		clock = Real()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		pid:       pid,
		prober:    prober,
		clock:     clock,
		interval:  interval,
		startTime: clock.Now(),
	}
}

// Exists probes the process table once
func (w *Watcher) Exists(ctx context.Context) bool {
	return w.prober.Running(ctx, w.pid)
}

// Wait blocks until the PID is no longer running or ctx is done.
// There is no deadline: the caller asked to wait until the process is gone.
// Returns the number of probes made.
func (w *Watcher) Wait(ctx context.Context) (int, error) {
	probes := 0
	for {
		if err := ctx.Err(); err != nil {
			return probes, err
		}

		probes++
		if !w.Exists(ctx) {
			return probes, nil
		}

		if w.OnTick != nil {
			w.OnTick(probes)
		}

		select {
		case <-ctx.Done():
			return probes, ctx.Err()
		case <-w.clock.After(w.interval):
		}
	}
}

// Duration returns how long we've been observing
func (w *Watcher) Duration() time.Duration {
	return w.clock.Now().Sub(w.startTime)
}
