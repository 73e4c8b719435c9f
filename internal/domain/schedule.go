package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Minute is a minute of the hour, 0 through 59.
type Minute int

// RearmMinute is the minute at which every slot is armed again for the next hour.
const RearmMinute Minute = 59

// ErrInvalidSlot is returned for slot lists the schedule cannot honour.
var ErrInvalidSlot = errors.New("invalid schedule slot")

// MinuteOf returns the wall-clock minute of t in t's location.
func MinuteOf(t time.Time) Minute {
	return Minute(t.Minute())
}

// String renders the two-digit label, e.g. "01".
func (m Minute) String() string {
	return fmt.Sprintf("%02d", int(m))
}

// DefaultSlots are the publication minutes used when none are configured.
var DefaultSlots = []Minute{1, 11, 21, 31, 41, 51}

type slot struct {
	minute Minute
	fired  bool
}

// Schedule fires a callback at most once per configured minute per hour.
// It is keyed by the wall-clock minute rather than a tick counter so the
// cadence survives restarts. A minute that is never observed (suspend, a tick
// interval coarser than a minute) is skipped for that hour; there is no
// catch-up.
//
// Schedule is not safe for concurrent use; the sampling loop owns it.
type Schedule struct {
	slots []slot
}

// NewSchedule builds a schedule from a strictly increasing list of minutes in
// 0..58. Minute 59 is reserved for rearming.
func NewSchedule(minutes ...Minute) (*Schedule, error) {
	if len(minutes) == 0 {
		return nil, fmt.Errorf("%w: at least one slot is required", ErrInvalidSlot)
	}
	slots := make([]slot, 0, len(minutes))
	for i, m := range minutes {
		if m < 0 || m >= RearmMinute {
			return nil, fmt.Errorf("%w: minute %d outside 0..58", ErrInvalidSlot, m)
		}
		if i > 0 && m <= minutes[i-1] {
			return nil, fmt.Errorf("%w: minutes must be strictly increasing (%s after %s)", ErrInvalidSlot, m, minutes[i-1])
		}
		slots = append(slots, slot{minute: m})
	}
	return &Schedule{slots: slots}, nil
}

// DefaultSchedule returns a schedule armed at DefaultSlots.
func DefaultSchedule() *Schedule {
	s, _ := NewSchedule(DefaultSlots...)
	return s
}

// Check evaluates one tick observed at minute m. At RearmMinute every slot is
// armed again and nothing fires. Otherwise, if m is an armed slot, the slot is
// marked fired and fire is invoked exactly once. It reports whether fire ran.
func (s *Schedule) Check(m Minute, fire func()) bool {
	if m == RearmMinute {
		for i := range s.slots {
			s.slots[i].fired = false
		}
		return false
	}

	i, ok := s.find(m)
	if !ok || s.slots[i].fired {
		return false
	}
	s.slots[i].fired = true
	if fire != nil {
		fire()
	}
	return true
}

// Slots returns the configured minutes in ascending order.
func (s *Schedule) Slots() []Minute {
	out := make([]Minute, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.minute
	}
	return out
}

// Fired reports whether the slot at m already fired this hour. Unknown minutes
// report false.
func (s *Schedule) Fired(m Minute) bool {
	i, ok := s.find(m)
	return ok && s.slots[i].fired
}

func (s *Schedule) find(m Minute) (int, bool) {
	i := sort.Search(len(s.slots), func(i int) bool { return s.slots[i].minute >= m })
	if i < len(s.slots) && s.slots[i].minute == m {
		return i, true
	}
	return 0, false
}
