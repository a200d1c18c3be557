package observe

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// Prober answers "is this PID running right now?".
// Implementations must query the OS on every call.
type Prober interface {
	Running(ctx context.Context, pid int32) bool
}

// ProcessProber reads the OS process table through gopsutil.
type ProcessProber struct{}

// NewProcessProber creates a prober backed by the OS process table
func NewProcessProber() *ProcessProber {
	return &ProcessProber{}
}

// Running reports whether pid is in the process table.
// A failed query counts as not running: we must never block forever
// on a process we cannot observe.
func (p *ProcessProber) Running(ctx context.Context, pid int32) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExistsWithContext(ctx, pid)
	if err != nil {
		return false
	}
	return exists
}

// ProberFunc adapts a plain function to Prober
type ProberFunc func(ctx context.Context, pid int32) bool

func (f ProberFunc) Running(ctx context.Context, pid int32) bool {
	return f(ctx, pid)
}
