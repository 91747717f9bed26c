package schedule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance_FiresOnInterval(t *testing.T) {
	t.Parallel()
	s := Schedule{Interval: 1.0, Precision: 2}
	st := s.Start()

	var fired []int
	for step := 1; step <= 25; step++ {
		var due bool
		st, due = s.Advance(st, 0.1)
		if due {
			fired = append(fired, step)
		}
	}

	// 0.1 is not exact in binary; rounding keeps the countdown on the grid.
	assert.Equal(t, []int{10, 20}, fired)
	assert.InDelta(t, 0.5, st.Remaining, 1e-12)
}

func TestAdvance_ResetsAfterFiring(t *testing.T) {
	t.Parallel()
	s := Schedule{Interval: 60, Precision: 0}

	st, due := s.Advance(State{Remaining: 5}, 10)
	require.True(t, due)
	assert.Equal(t, State{Remaining: 60}, st)
}

func TestAdvance_Force(t *testing.T) {
	t.Parallel()
	s := Schedule{Interval: 60, Precision: 0}

	st, due := s.Advance(State{Remaining: 50, Force: true}, 1)
	require.True(t, due)
	assert.Equal(t, State{Remaining: 60}, st, "force is cleared after firing")

	st, due = s.Advance(st, 1)
	assert.False(t, due)
	assert.Equal(t, State{Remaining: 59}, st)
}

func TestAdvance_RoundsHalfToEven(t *testing.T) {
	t.Parallel()
	s := Schedule{Interval: 10, Precision: 0}

	// 10 - 7.5 = 2.5 rounds to 2, 2 - 1.5 = 0.5 rounds to 0 and fires.
	st, due := s.Advance(s.Start(), 7.5)
	require.False(t, due)
	assert.Equal(t, 2.0, st.Remaining)

	_, due = s.Advance(st, 1.5)
	assert.True(t, due)
}

func TestAdvance_LargeStepOvershoots(t *testing.T) {
	t.Parallel()
	s := Schedule{Interval: 1, Precision: 3}

	st, due := s.Advance(s.Start(), 5)
	assert.True(t, due)
	assert.Equal(t, 1.0, st.Remaining)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Schedule{Interval: 3600, Precision: 2}.Validate())

	for _, s := range []Schedule{
		{Interval: 0},
		{Interval: -1},
		{Interval: math.NaN()},
		{Interval: math.Inf(1)},
		{Interval: 1, Precision: -1},
	} {
		assert.ErrorIs(t, s.Validate(), ErrInvalidSchedule, "%+v", s)
	}
}
