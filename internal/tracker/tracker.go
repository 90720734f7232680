// Package tracker runs the leader/follower mirroring loop: poll the
// leader plug, mirror observed relay changes to the follower, gated by
// the schedule. Network trouble against either plug never terminates
// the loop.
package tracker

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"plugmirror/internal/sched"
	"plugmirror/internal/tele"
	"plugmirror/kasa"
	"plugmirror/log2"
)

// Plug is the device surface the tracker needs; *kasa.Client implements it.
type Plug interface {
	GetRelayState() (kasa.RelayState, error)
	SetRelayState(kasa.RelayState) error
}

const (
	DefaultPollDelay  = 1 * time.Second
	DefaultErrorDelay = 5 * time.Second
)

type Options struct {
	PollDelay  time.Duration // pause between ticks
	ErrorDelay time.Duration // extra pause after an unhandled tick error
}

// Tracker is single-goroutine: prev has exactly one writer, no locking.
type Tracker struct {
	Log      *log2.Log
	alive    *alive.Alive
	leader   Plug
	follower Plug
	schedule *sched.Schedule
	tele     tele.Teler

	// the only mutable state of the whole daemon: last relay state
	// observed on the leader, Unknown until the first successful poll of
	// an active period
	prev kasa.RelayState

	pollDelay  time.Duration
	errorDelay time.Duration
	now        func() time.Time
}

func New(log *log2.Log, leader, follower Plug, schedule *sched.Schedule, teler tele.Teler, opt Options) *Tracker {
	if teler == nil {
		teler = tele.Noop{}
	}
	self := &Tracker{
		Log:        log,
		alive:      alive.NewAlive(),
		leader:     leader,
		follower:   follower,
		schedule:   schedule,
		tele:       teler,
		prev:       kasa.Unknown,
		pollDelay:  opt.PollDelay,
		errorDelay: opt.ErrorDelay,
		now:        time.Now,
	}
	if self.pollDelay == 0 {
		self.pollDelay = DefaultPollDelay
	}
	if self.errorDelay == 0 {
		self.errorDelay = DefaultErrorDelay
	}
	return self
}

func (self *Tracker) Stop() { self.alive.Stop() }

// Run blocks until Stop. Only Stop ends the loop; per-tick failures are
// absorbed and logged.
func (self *Tracker) Run() {
	self.Log.Infof("tracker started schedule=%s", self.schedule)
	self.alive.Add(1)
	defer self.alive.Done()

	for self.alive.IsRunning() {
		now := self.now()
		if !self.schedule.IsActive(sched.FromClock(now)) {
			wait := time.Duration(self.schedule.SecondsUntilActive(now)) * time.Second
			self.Log.Infof("outside active hours, sleeping for %s", wait)
			if !self.sleep(wait) {
				break
			}
			self.Log.Infof("waking up, resuming")
			// fresh observation next active period, do not mirror a stale
			// comparison across the gap
			self.prev = kasa.Unknown
			continue
		}

		if err := self.Tick(); err != nil {
			self.Log.Error(errors.Annotate(err, "tick"))
			if !self.sleep(self.errorDelay) {
				break
			}
			continue
		}
		if !self.sleep(self.pollDelay) {
			break
		}
	}
	self.Log.Infof("tracker stopped")
}

// Tick is one poll of the leader and at most one conditional write to the
// follower. Leader transport failures are absorbed here; anything else
// (e.g. a protocol error from malformed leader data) goes to the caller.
func (self *Tracker) Tick() error {
	state, err := self.leader.GetRelayState()
	if err != nil {
		if kasa.IsTransport(err) {
			self.Log.Errorf("leader unreachable: %v", err)
			return nil
		}
		return err
	}

	if state == self.prev {
		return nil
	}
	if self.prev == kasa.Unknown {
		// first observation since start or wake: record only, the follower
		// may already be set correctly
		self.Log.Infof("leader state=%s first observation", state)
	} else {
		self.Log.Infof("leader changed to %s, updating follower", state)
		if err := self.follower.SetRelayState(state); err != nil {
			// deliberately not retried: the next leader change triggers a
			// new write attempt
			self.Log.Errorf("follower update failed: %v", err)
		}
	}
	self.prev = state
	self.tele.State(state)
	return nil
}

// sleep blocks for d or until Stop, whichever is first. Returns false
// when stopping, so even a multi-hour schedule wait stays interruptible.
func (self *Tracker) sleep(d time.Duration) bool {
	if d <= 0 {
		return self.alive.IsRunning()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-self.alive.StopChan():
		return false
	}
}
