package observe

import "time"

// Timing records start/end timestamps only
type Timing struct {
	StartedAt   time.Time
	CompletedAt time.Time
	clock       Clock
}

// NewTiming creates timing with current start time
func NewTiming(clock Clock) *Timing {
	if clock == nil {
		clock = Real()
	}
	return &Timing{
		StartedAt: clock.Now(),
		clock:     clock,
	}
}

// Complete records completion time
func (t *Timing) Complete() {
	t.CompletedAt = t.clock.Now()
}

// Duration returns execution duration
func (t *Timing) Duration() time.Duration {
	if t.CompletedAt.IsZero() {
		return t.clock.Now().Sub(t.StartedAt)
	}
	return t.CompletedAt.Sub(t.StartedAt)
}
