// Package sched gates daemon activity by wall-clock time-of-day windows.
package sched

import (
	"fmt"
	"strings"
	"time"

	"github.com/juju/errors"

	"plugmirror/helpers"
)

// TimeOfDay is seconds since midnight. Window bounds carry minute
// resolution; the extra precision is only for comparing against "now".
type TimeOfDay int32

func FromClock(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(h*3600 + m*60 + s)
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t/3600, t/60%60) }

// Window is a start/end pair of times-of-day. Start after End means the
// window wraps past midnight.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w Window) Contains(t TimeOfDay) bool {
	if w.Start > w.End {
		return t >= w.Start || t <= w.End
	}
	return w.Start <= t && t <= w.End
}

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }

// ParseWindow parses a "HH:MM-HH:MM" literal.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Window{}, errors.NotValidf("time window %q", s)
	}
	start, err := parseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return Window{}, errors.Annotatef(err, "time window %q", s)
	}
	end, err := parseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, errors.Annotatef(err, "time window %q", s)
	}
	return Window{Start: start, End: end}, nil
}

func parseClock(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errors.NotValidf("clock %q", s)
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60), nil
}

// Schedule answers "may the daemon work right now". An empty schedule
// means always active; emptiness is decided once at construction.
type Schedule struct {
	windows      []Window
	alwaysActive bool
}

func NewSchedule(windows []Window) *Schedule {
	return &Schedule{windows: windows, alwaysActive: len(windows) == 0}
}

// ParseSchedule builds a Schedule from "HH:MM-HH:MM" literals, reporting
// every malformed literal at once.
func ParseSchedule(literals []string) (*Schedule, error) {
	windows := make([]Window, 0, len(literals))
	errs := make([]error, 0, len(literals))
	for _, lit := range literals {
		w, err := ParseWindow(lit)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		windows = append(windows, w)
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}
	return NewSchedule(windows), nil
}

func (self *Schedule) IsActive(t TimeOfDay) bool {
	if self.alwaysActive {
		return true
	}
	for _, w := range self.windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// SecondsUntilActive is the wait until the nearest window start at or
// after now, floored to whole seconds. Contract: callers invoke it only
// after IsActive(now) returned false; it does not check whether now is
// already inside a window.
func (self *Schedule) SecondsUntilActive(now time.Time) int {
	if self.alwaysActive {
		return 0
	}
	tod := FromClock(now)
	min := time.Duration(-1)
	for _, w := range self.windows {
		next := dayStart(now, w.Start)
		if w.Start <= tod {
			// start already passed today, next occurrence is tomorrow
			next = next.AddDate(0, 0, 1)
		}
		if wait := next.Sub(now); min < 0 || wait < min {
			min = wait
		}
	}
	if min < 0 {
		return 0
	}
	return int(min / time.Second)
}

func (self *Schedule) String() string {
	if self.alwaysActive {
		return "always"
	}
	ss := make([]string, 0, len(self.windows))
	for _, w := range self.windows {
		ss = append(ss, w.String())
	}
	return strings.Join(ss, ",")
}

func dayStart(now time.Time, t TimeOfDay) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, int(t)/3600, int(t)/60%60, 0, 0, now.Location())
}
