package automation

import (
	"testing"
	"time"
)

func TestFiresInScheduledOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.Schedule(func() { order = append(order, "first") }, 5*time.Second, false)
	s.Schedule(func() { order = append(order, "second") }, 5*time.Second, false)
	s.Schedule(func() { order = append(order, "third") }, 3*time.Second, false)

	s.Tick(5 * time.Second)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("fired %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestDelayAccumulatesAcrossTicks(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.Schedule(func() { fired++ }, 10*time.Second, false)

	s.Tick(4 * time.Second)
	s.Tick(5 * time.Second)
	if fired != 0 {
		t.Fatalf("fired early after 9s of a 10s delay")
	}
	s.Tick(1 * time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d after 10s, want 1", fired)
	}
}

func TestZeroAndNegativeTickAreNoOps(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.Schedule(func() { fired++ }, time.Nanosecond, false)

	for i := 0; i < 100; i++ {
		s.Tick(0)
	}
	s.Tick(-time.Second)
	if fired != 0 {
		t.Fatalf("Tick(0)/Tick(<0) advanced time; fired = %d", fired)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}

	s.Tick(time.Nanosecond)
	if fired != 1 {
		t.Errorf("fired = %d after real tick, want 1", fired)
	}
}

func TestRecurringReArmsAtOriginalDelay(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.Schedule(func() { fired++ }, 10*time.Second, true)

	s.Tick(10 * time.Second)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	// Re-armed at the full 10s, not at the leftover.
	s.Tick(9 * time.Second)
	if fired != 1 {
		t.Fatalf("recurring action fired before its period elapsed again")
	}
	s.Tick(1 * time.Second)
	if fired != 2 {
		t.Fatalf("fired = %d, want 2", fired)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1 (recurring stays armed)", s.Pending())
	}
}

func TestRecurringFiresOncePerTick(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.Schedule(func() { fired++ }, time.Second, true)

	// A huge tick covers many periods but fires once.
	s.Tick(10 * time.Second)
	if fired != 1 {
		t.Errorf("fired = %d for one oversized tick, want 1", fired)
	}
}

func TestActionsScheduledDuringTickWaitForNextTick(t *testing.T) {
	s := NewScheduler()
	var fired []string
	s.Schedule(func() {
		fired = append(fired, "outer")
		s.Schedule(func() { fired = append(fired, "inner") }, time.Nanosecond, false)
	}, time.Second, false)

	s.Tick(time.Hour)
	if len(fired) != 1 || fired[0] != "outer" {
		t.Fatalf("fired = %v, want [outer] only", fired)
	}
	s.Tick(time.Second)
	if len(fired) != 2 || fired[1] != "inner" {
		t.Fatalf("fired = %v, want inner on second tick", fired)
	}
}

func TestCancelPreventsFiring(t *testing.T) {
	s := NewScheduler()
	fired := false
	h := s.Schedule(func() { fired = true }, time.Second, false)
	s.Cancel(h)
	s.Tick(time.Hour)
	if fired {
		t.Error("cancelled action fired")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestCancelAfterFiringIsNoOp(t *testing.T) {
	s := NewScheduler()
	h := s.Schedule(func() {}, time.Second, false)
	s.Tick(time.Second)
	s.Cancel(h) // must not panic or disturb anything
	s.Cancel(0)
	s.Cancel(Handle(9999))
}

func TestCancelRecurringStopsIt(t *testing.T) {
	s := NewScheduler()
	fired := 0
	h := s.Schedule(func() { fired++ }, time.Second, true)
	s.Tick(time.Second)
	s.Cancel(h)
	s.Tick(time.Second)
	s.Tick(time.Second)
	if fired != 1 {
		t.Errorf("fired = %d after cancel, want 1", fired)
	}
}

func TestPanicIsolation(t *testing.T) {
	s := NewScheduler()
	var fired []string
	s.Schedule(func() { panic("boom") }, time.Second, false)
	s.Schedule(func() { fired = append(fired, "after") }, time.Second, false)

	s.Tick(time.Second)
	if len(fired) != 1 || fired[0] != "after" {
		t.Fatalf("action after panicking one did not fire: %v", fired)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 (panicking one-shot retired)", s.Pending())
	}
}

func TestPanickingRecurringStaysArmed(t *testing.T) {
	s := NewScheduler()
	calls := 0
	s.Schedule(func() {
		calls++
		panic("boom")
	}, time.Second, true)

	s.Tick(time.Second)
	s.Tick(time.Second)
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (recurring survives its own panic)", calls)
	}
}

type sinkRecorder struct {
	lines []string
}

func (s *sinkRecorder) SendMessage(text string) { s.lines = append(s.lines, text) }

func TestScheduleMessage(t *testing.T) {
	s := NewScheduler()
	sink := &sinkRecorder{}
	s.ScheduleMessage(30*time.Second, "Hello!", sink)

	s.Tick(29 * time.Second)
	if len(sink.lines) != 0 {
		t.Fatal("message sent early")
	}
	s.Tick(time.Second)
	if len(sink.lines) != 1 || sink.lines[0] != "Hello!" {
		t.Fatalf("lines = %v, want [Hello!]", sink.lines)
	}
}

func TestScheduleCallback(t *testing.T) {
	s := NewScheduler()
	ran := false
	s.ScheduleCallback(time.Second, func() { ran = true })
	s.Tick(time.Second)
	if !ran {
		t.Error("callback did not run")
	}
}
