// Package duel implements two-party chat challenges. Every opponent has at
// most one pending challenge at a time; a newer challenge for the same
// opponent replaces the older one. Challenges optionally expire through a
// scheduler-backed timeout.
package duel

import (
	"fmt"
	"strings"
	"time"

	"github.com/CodedBeard/devchatterbot/automation"
	"github.com/CodedBeard/devchatterbot/telemetry"
)

// Duel is a pending two-party challenge awaiting acceptance.
type Duel struct {
	Challenger string
	Opponent   string
}

type pendingDuel struct {
	duel   Duel
	expiry automation.Handle
}

// System owns one room's pending-challenge registry. Not safe for concurrent
// use; the room loop owns it.
type System struct {
	sched  *automation.Scheduler
	sink   automation.Sink
	expiry time.Duration // 0 disables expiry
	// keyed by lowercased opponent name
	pending map[string]*pendingDuel
}

func NewSystem(sched *automation.Scheduler, sink automation.Sink, expiry time.Duration) *System {
	return &System{
		sched:   sched,
		sink:    sink,
		expiry:  expiry,
		pending: make(map[string]*pendingDuel),
	}
}

// RequestDuel stores a challenge keyed by opponent, replacing any earlier
// pending challenge for that opponent, and announces it in chat.
func (s *System) RequestDuel(challenger, opponent string) {
	key := strings.ToLower(opponent)
	if prev, ok := s.pending[key]; ok {
		s.sched.Cancel(prev.expiry)
	}
	p := &pendingDuel{duel: Duel{Challenger: challenger, Opponent: opponent}}
	if s.expiry > 0 {
		p.expiry = s.sched.ScheduleCallback(s.expiry, func() {
			// Only expire if this exact challenge is still the pending one.
			if cur, ok := s.pending[key]; ok && cur == p {
				delete(s.pending, key)
				telemetry.CountDuelExpired()
				s.sink.SendMessage(fmt.Sprintf("%s never answered %s's challenge. The duel is off.", opponent, challenger))
			}
		})
	}
	s.pending[key] = p
	telemetry.CountDuelRequested()
	s.sink.SendMessage(fmt.Sprintf("%s has challenged %s to a duel! Type \"!duel accept @%s\" to accept.", challenger, opponent, challenger))
}

// GetChallenges returns the pending duel stored under requester's key, but
// only when it was issued by claimedChallenger. A challenger can never
// resolve their own challenge this way, because challenges are stored under
// the opponent's key.
func (s *System) GetChallenges(requester, claimedChallenger string) (Duel, bool) {
	p, ok := s.pending[strings.ToLower(requester)]
	if !ok || !strings.EqualFold(p.duel.Challenger, claimedChallenger) {
		return Duel{}, false
	}
	return p.duel, true
}

// RemoveDuel clears the pending challenge for opponent, cancelling its
// expiry action. Removing an absent challenge is a no-op.
func (s *System) RemoveDuel(opponent string) {
	key := strings.ToLower(opponent)
	if p, ok := s.pending[key]; ok {
		s.sched.Cancel(p.expiry)
		delete(s.pending, key)
	}
}

// PendingCount reports how many challenges are awaiting acceptance.
func (s *System) PendingCount() int { return len(s.pending) }
