package duel

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CodedBeard/devchatterbot/automation"
)

type chatRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *chatRecorder) SendMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func (r *chatRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *chatRecorder) contains(sub string) bool {
	for _, l := range r.all() {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

func newTestSystem(expiry time.Duration) (*System, *automation.Scheduler, *chatRecorder) {
	sched := automation.NewScheduler()
	sink := &chatRecorder{}
	return NewSystem(sched, sink, expiry), sched, sink
}

func TestRequestDuelAnnouncesChallenge(t *testing.T) {
	sys, _, sink := newTestSystem(0)
	sys.RequestDuel("crimson", "brendan")
	if !sink.contains("crimson has challenged brendan to a duel!") {
		t.Errorf("chat = %v", sink.all())
	}
	if sys.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1", sys.PendingCount())
	}
}

func TestGetChallengesMatchesOpponentAndChallenger(t *testing.T) {
	sys, _, _ := newTestSystem(0)
	sys.RequestDuel("crimson", "Brendan")

	d, ok := sys.GetChallenges("brendan", "CRIMSON")
	if !ok {
		t.Fatal("challenge not found despite case-insensitive match")
	}
	if d.Challenger != "crimson" || d.Opponent != "Brendan" {
		t.Errorf("duel = %+v", d)
	}

	if _, ok := sys.GetChallenges("brendan", "someoneelse"); ok {
		t.Error("challenge matched the wrong challenger")
	}
	if _, ok := sys.GetChallenges("crimson", "crimson"); ok {
		t.Error("challenger resolved their own challenge")
	}
	if _, ok := sys.GetChallenges("nobody", "crimson"); ok {
		t.Error("challenge found for an unchallenged user")
	}
}

func TestNewerChallengeReplacesOlder(t *testing.T) {
	sys, _, _ := newTestSystem(0)
	sys.RequestDuel("crimson", "brendan")
	sys.RequestDuel("duchess", "brendan")

	if _, ok := sys.GetChallenges("brendan", "crimson"); ok {
		t.Error("replaced challenge still resolvable")
	}
	d, ok := sys.GetChallenges("brendan", "duchess")
	if !ok || d.Challenger != "duchess" {
		t.Errorf("latest challenge = %+v, ok = %v", d, ok)
	}
	if sys.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1", sys.PendingCount())
	}
}

func TestSameOpponentDifferentCaseSharesSlot(t *testing.T) {
	sys, _, _ := newTestSystem(0)
	sys.RequestDuel("crimson", "Brendan")
	sys.RequestDuel("duchess", "BRENDAN")
	if sys.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1 shared slot", sys.PendingCount())
	}
}

func TestRemoveDuel(t *testing.T) {
	sys, _, _ := newTestSystem(0)
	sys.RequestDuel("crimson", "brendan")
	sys.RemoveDuel("BRENDAN")
	if sys.PendingCount() != 0 {
		t.Errorf("PendingCount = %d, want 0", sys.PendingCount())
	}
	// removing again is harmless
	sys.RemoveDuel("brendan")
}

func TestChallengeExpires(t *testing.T) {
	sys, sched, sink := newTestSystem(5 * time.Minute)
	sys.RequestDuel("crimson", "brendan")

	sched.Tick(4 * time.Minute)
	if sys.PendingCount() != 1 {
		t.Fatal("challenge expired early")
	}
	sched.Tick(time.Minute)
	if sys.PendingCount() != 0 {
		t.Fatal("challenge did not expire")
	}
	if !sink.contains("brendan never answered crimson's challenge") {
		t.Errorf("chat = %v", sink.all())
	}
}

func TestAcceptedDuelDoesNotExpire(t *testing.T) {
	sys, sched, sink := newTestSystem(5 * time.Minute)
	sys.RequestDuel("crimson", "brendan")
	sys.RemoveDuel("brendan")

	sched.Tick(10 * time.Minute)
	if sink.contains("never answered") {
		t.Errorf("expiry fired for an accepted duel: %v", sink.all())
	}
}

func TestStaleExpiryDoesNotKillReplacement(t *testing.T) {
	sys, sched, sink := newTestSystem(5 * time.Minute)
	sys.RequestDuel("crimson", "brendan")
	sched.Tick(3 * time.Minute)
	sys.RequestDuel("duchess", "brendan")

	// the original challenge's 5-minute mark passes; only the replacement's
	// own timeout may remove it
	sched.Tick(3 * time.Minute)
	if sys.PendingCount() != 1 {
		t.Fatal("replacement challenge was expired by the stale timer")
	}
	sched.Tick(2 * time.Minute)
	if sys.PendingCount() != 0 {
		t.Fatal("replacement challenge never expired")
	}
	if !sink.contains("brendan never answered duchess's challenge") {
		t.Errorf("chat = %v", sink.all())
	}
}

func TestZeroExpiryDisablesTimeout(t *testing.T) {
	sys, sched, _ := newTestSystem(0)
	sys.RequestDuel("crimson", "brendan")
	sched.Tick(24 * time.Hour)
	if sys.PendingCount() != 1 {
		t.Error("challenge expired despite expiry being disabled")
	}
}
