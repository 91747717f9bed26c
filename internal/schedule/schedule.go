// Package schedule decides when a running simulation should write a
// snapshot. It holds no state of its own: callers thread State through
// successive time steps.
package schedule

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// ErrInvalidSchedule is returned by Validate.
var ErrInvalidSchedule = errors.New("schedule: invalid schedule")

// Schedule fires every Interval seconds of simulated time.
type Schedule struct {
	// Interval is the simulated time between snapshots.
	Interval float64
	// Precision is the number of decimals the countdown is rounded to
	// after each step, so accumulated float error cannot skip a trigger.
	Precision int
}

// State is the countdown carried between steps.
type State struct {
	Remaining float64
	// Force makes the next Advance fire regardless of Remaining.
	Force bool
}

// Validate checks the interval and precision.
func (s Schedule) Validate() error {
	if !(s.Interval > 0) || math.IsInf(s.Interval, 0) {
		return fmt.Errorf("%w: interval %v must be positive and finite", ErrInvalidSchedule, s.Interval)
	}
	if s.Precision < 0 {
		return fmt.Errorf("%w: precision %d must be non-negative", ErrInvalidSchedule, s.Precision)
	}
	return nil
}

// Start returns the state at the beginning of a run.
func (s Schedule) Start() State {
	return State{Remaining: s.Interval}
}

// Advance counts down by dt and reports whether a snapshot is due. When it
// is, the returned state is reset to a full interval with Force cleared.
func (s Schedule) Advance(st State, dt float64) (State, bool) {
	remaining := scalar.RoundEven(st.Remaining-dt, s.Precision)
	if remaining <= 0 || st.Force {
		return State{Remaining: s.Interval}, true
	}
	return State{Remaining: remaining}, false
}
