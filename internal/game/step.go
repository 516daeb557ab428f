package game

import (
	"context"
	"fmt"
	"time"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// Sequence is a resumable multi-step operation. Each Step does one unit of work and
// reports whether the sequence has finished. Steps never re-enter each other.
type Sequence interface {
	Step(ctx context.Context) (done bool, err error)
}

// SequenceFunc adapts a function to Sequence.
type SequenceFunc func(ctx context.Context) (bool, error)

func (f SequenceFunc) Step(ctx context.Context) (bool, error) {
	return f(ctx)
}

// EachStep returns a sequence that calls fn(0), fn(1), … fn(n-1), one index per step.
func EachStep(n int, fn func(ctx context.Context, i int) error) Sequence {
	i := 0
	return SequenceFunc(func(ctx context.Context) (bool, error) {
		if i >= n {
			return true, nil
		}
		if err := fn(ctx, i); err != nil {
			return false, err
		}
		i++
		return i >= n, nil
	})
}

// BusyGuard marks the table as owned by an in-flight sequence. Draw and redraw
// requests are refused while it is held.
type BusyGuard struct {
	busy   bool
	aborts int
}

// Acquire takes the guard, failing with ErrBusy if it is already held.
func (g *BusyGuard) Acquire() error {
	if g.busy {
		return ErrBusy
	}
	g.busy = true
	return nil
}

// Release clears the guard after normal completion.
func (g *BusyGuard) Release() {
	g.busy = false
}

// Busy reports whether a sequence holds the guard.
func (g *BusyGuard) Busy() bool {
	return g != nil && g.busy
}

// ForceAbort clears the guard regardless of who holds it.
func (g *BusyGuard) ForceAbort() {
	g.busy = false
	g.aborts++
}

// Aborts counts forced clears.
func (g *BusyGuard) Aborts() int {
	return g.aborts
}

// Driver steps sequences to completion under a watchdog. The deadline and step cap are
// checked before every step; whichever trips first force-clears the guard.
type Driver struct {
	Guard    *BusyGuard
	Timeout  time.Duration // 0 disables the deadline
	MaxSteps int           // 0 disables the step cap
	Now      func() time.Time

	journal *Journal
}

// NewDriver creates a driver that holds guard while a sequence runs.
func NewDriver(guard *BusyGuard, timeout time.Duration, journal *Journal) *Driver {
	return &Driver{Guard: guard, Timeout: timeout, Now: time.Now, journal: journal}
}

// Run drives seq until it finishes, fails, ctx is cancelled or the watchdog expires.
func (d *Driver) Run(ctx context.Context, seq Sequence) error {
	if err := d.Guard.Acquire(); err != nil {
		return fmt.Errorf("run sequence: %w", err)
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	deadline := now().Add(d.Timeout)

	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			d.Guard.Release()
			return err
		}
		if (d.Timeout > 0 && now().After(deadline)) || (d.MaxSteps > 0 && steps >= d.MaxSteps) {
			d.Guard.ForceAbort()
			d.journal.Log(log.NewWatchdogEvent(steps))
			return fmt.Errorf("sequence stopped after %d steps: %w", steps, ErrWatchdog)
		}
		done, err := seq.Step(ctx)
		steps++
		if err != nil {
			d.Guard.Release()
			return err
		}
		if done {
			d.Guard.Release()
			return nil
		}
	}
}
