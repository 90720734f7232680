package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(h, m int) TimeOfDay { return TimeOfDay(h*3600 + m*60) }

func at(h, m int) time.Time {
	return time.Date(2023, 1, 1, h, m, 0, 0, time.UTC)
}

func TestEmptyScheduleAlwaysActive(t *testing.T) {
	t.Parallel()

	s := NewSchedule(nil)
	for _, h := range []int{0, 6, 12, 18, 23} {
		assert.True(t, s.IsActive(tod(h, 0)))
	}
	assert.Equal(t, 0, s.SecondsUntilActive(at(12, 0)))
}

func TestSingleWindow(t *testing.T) {
	t.Parallel()

	s := NewSchedule([]Window{{tod(8, 0), tod(10, 0)}})
	assert.True(t, s.IsActive(tod(8, 0)))
	assert.True(t, s.IsActive(tod(9, 0)))
	assert.True(t, s.IsActive(tod(10, 0)))
	assert.False(t, s.IsActive(tod(7, 59)))
	assert.False(t, s.IsActive(tod(10, 1)))
}

func TestMultipleWindows(t *testing.T) {
	t.Parallel()

	s := NewSchedule([]Window{
		{tod(8, 0), tod(10, 0)},
		{tod(20, 0), tod(22, 0)},
	})
	assert.True(t, s.IsActive(tod(9, 0)))
	assert.True(t, s.IsActive(tod(21, 0)))
	assert.False(t, s.IsActive(tod(12, 0)))
}

func TestWrappingWindow(t *testing.T) {
	t.Parallel()

	s := NewSchedule([]Window{{tod(22, 0), tod(6, 0)}})
	assert.True(t, s.IsActive(tod(23, 30)))
	assert.True(t, s.IsActive(tod(0, 0)))
	assert.True(t, s.IsActive(tod(5, 59)))
	assert.False(t, s.IsActive(tod(12, 0)))
	assert.False(t, s.IsActive(tod(21, 59)))
}

func TestSecondsUntilActive(t *testing.T) {
	t.Parallel()

	s := NewSchedule([]Window{{tod(8, 0), tod(10, 0)}})
	assert.Equal(t, 3600, s.SecondsUntilActive(at(7, 0)))
	// start already passed, next occurrence is tomorrow 08:00
	assert.Equal(t, 72000, s.SecondsUntilActive(at(12, 0)))

	both := NewSchedule([]Window{
		{tod(8, 0), tod(10, 0)},
		{tod(20, 0), tod(22, 0)},
	})
	// same-day 20:00 start wins
	assert.Equal(t, 28800, both.SecondsUntilActive(at(12, 0)))
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	w, err := ParseWindow("08:00-10:30")
	require.NoError(t, err)
	assert.Equal(t, Window{tod(8, 0), tod(10, 30)}, w)

	w, err = ParseWindow(" 22:00 - 06:00 ")
	require.NoError(t, err)
	assert.Equal(t, Window{tod(22, 0), tod(6, 0)}, w)

	for _, bad := range []string{"", "08:00", "8am-10am", "08:00-25:00", "08-10", "08:00-"} {
		_, err = ParseWindow(bad)
		assert.Error(t, err, "literal %q", bad)
	}
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	s, err := ParseSchedule([]string{"08:00-10:00", "20:00-22:00"})
	require.NoError(t, err)
	assert.Equal(t, "08:00-10:00,20:00-22:00", s.String())

	s, err = ParseSchedule(nil)
	require.NoError(t, err)
	assert.Equal(t, "always", s.String())
	assert.True(t, s.IsActive(tod(3, 33)))

	_, err = ParseSchedule([]string{"08:00-10:00", "oops", "also-bad"})
	require.Error(t, err)
}
