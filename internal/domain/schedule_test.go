package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFiresOncePerSlot(t *testing.T) {
	s, err := NewSchedule(11)
	require.NoError(t, err)

	fires := 0
	for _, m := range []Minute{10, 11, 11, 12} {
		s.Check(m, func() { fires++ })
	}
	assert.Equal(t, 1, fires)
	assert.True(t, s.Fired(11))
}

func TestScheduleRearmsAtMinute59(t *testing.T) {
	s, err := NewSchedule(11)
	require.NoError(t, err)

	fires := 0
	fire := func() { fires++ }

	require.True(t, s.Check(11, fire))
	require.False(t, s.Check(11, fire))
	require.False(t, s.Check(RearmMinute, fire))
	assert.False(t, s.Fired(11))
	require.True(t, s.Check(11, fire))
	assert.Equal(t, 2, fires)
}

func TestScheduleSlotsAreIndependent(t *testing.T) {
	s := DefaultSchedule()

	s.Check(11, func() {})
	assert.True(t, s.Fired(11))
	assert.False(t, s.Fired(21))

	fired := false
	s.Check(21, func() { fired = true })
	assert.True(t, fired)
}

func TestScheduleDefaultSequence(t *testing.T) {
	s := DefaultSchedule()

	var log []string
	for _, m := range []Minute{0, 1, 9, 11, 59, 11} {
		m := m
		s.Check(m, func() { log = append(log, m.String()) })
	}
	assert.Equal(t, []string{"01", "11", "11"}, log)
}

func TestScheduleUnknownMinuteDoesNothing(t *testing.T) {
	s := DefaultSchedule()
	assert.False(t, s.Check(30, func() { t.Fatal("minute 30 is not a slot") }))
	assert.False(t, s.Fired(30))
}

func TestNewScheduleRejectsBadSlots(t *testing.T) {
	cases := map[string][]Minute{
		"empty":          nil,
		"rearm minute":   {1, 59},
		"negative":       {-1},
		"out of range":   {60},
		"not increasing": {11, 1},
		"duplicate":      {11, 11},
	}
	for name, slots := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewSchedule(slots...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSlot))
		})
	}
}

func TestMinuteLabels(t *testing.T) {
	assert.Equal(t, "00", Minute(0).String())
	assert.Equal(t, "07", Minute(7).String())
	assert.Equal(t, "51", Minute(51).String())

	ts := time.Date(2024, 3, 1, 14, 21, 45, 0, time.UTC)
	assert.Equal(t, Minute(21), MinuteOf(ts))
	assert.Equal(t, DefaultSlots, DefaultSchedule().Slots())
}
