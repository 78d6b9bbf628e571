package automation

import "time"

// Sink is the chat surface scheduled message actions write to.
type Sink interface {
	SendMessage(text string)
}

// ScheduleMessage arms a one-shot action that sends text to the sink once
// the delay elapses. The returned handle is only useful for cancellation,
// e.g. withdrawing a hint when a game resets early.
func (s *Scheduler) ScheduleMessage(delay time.Duration, text string, sink Sink) Handle {
	return s.Schedule(func() { sink.SendMessage(text) }, delay, false)
}

// ScheduleCallback arms a one-shot action invoking fn once the delay elapses.
func (s *Scheduler) ScheduleCallback(delay time.Duration, fn func()) Handle {
	return s.Schedule(fn, delay, false)
}
