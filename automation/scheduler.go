package automation

import (
	"log/slog"
	"time"

	"github.com/CodedBeard/devchatterbot/telemetry"
)

// Handle identifies a scheduled action for cancellation. The zero Handle is
// never issued by a Scheduler.
type Handle uint64

type scheduledAction struct {
	handle    Handle
	effect    func()
	remaining time.Duration
	period    time.Duration
	recurring bool
	cancelled bool
	done      bool
}

// Scheduler holds pending actions and fires them as its logical clock
// advances. Create one per chat room with NewScheduler.
type Scheduler struct {
	lastHandle Handle
	pending    []*scheduledAction
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Schedule arms an action that fires once cumulative ticked time reaches
// delay. Recurring actions re-arm at their original delay after each firing;
// one-shot actions are retired. Actions fire in the order they were
// scheduled when several come due in the same tick.
func (s *Scheduler) Schedule(effect func(), delay time.Duration, recurring bool) Handle {
	s.lastHandle++
	a := &scheduledAction{
		handle:    s.lastHandle,
		effect:    effect,
		remaining: delay,
		period:    delay,
		recurring: recurring,
	}
	s.pending = append(s.pending, a)
	return a.handle
}

// Cancel retires the action identified by h before its next firing.
// Cancelling an already-fired or unknown handle is a no-op.
func (s *Scheduler) Cancel(h Handle) {
	if h == 0 {
		return
	}
	for _, a := range s.pending {
		if a.handle == h {
			a.cancelled = true
			return
		}
	}
}

// Pending reports the number of live pending actions.
func (s *Scheduler) Pending() int {
	n := 0
	for _, a := range s.pending {
		if !a.cancelled && !a.done {
			n++
		}
	}
	return n
}

// Tick advances every pending action by elapsed and fires the ones whose
// remaining delay reaches zero or below, in original scheduling order.
// Actions scheduled by an effect running inside this call are not eligible
// to fire until the next tick. Tick(0) changes nothing and fires nothing.
func (s *Scheduler) Tick(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	// Snapshot the actions that existed when the tick began. Effects may
	// append to s.pending; those newcomers keep their full delay.
	eligible := make([]*scheduledAction, len(s.pending))
	copy(eligible, s.pending)
	for _, a := range eligible {
		if a.cancelled {
			continue
		}
		a.remaining -= elapsed
	}
	for _, a := range eligible {
		if a.cancelled || a.remaining > 0 {
			continue
		}
		s.fire(a)
		if a.recurring && !a.cancelled {
			a.remaining = a.period
		} else {
			a.done = true
		}
	}
	kept := s.pending[:0]
	for _, a := range s.pending {
		if !a.cancelled && !a.done {
			kept = append(kept, a)
		}
	}
	s.pending = kept
}

// fire runs one effect with panic isolation so a faulty action cannot take
// down the tick loop or starve the actions scheduled after it.
func (s *Scheduler) fire(a *scheduledAction) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.CountActionPanic()
			slog.Error("scheduled action panicked", slog.Any("panic", r))
		}
	}()
	telemetry.CountActionFired()
	a.effect()
}
