package ratelimit

import (
	"testing"
	"time"

	"github.com/dukerupert/swimschool/internal/session"
)

var contactPolicy = Policy{MinInterval: 20 * time.Second, MaxPerWindow: 5, Window: time.Hour}

func submit(t *testing.T, sess *session.Session, now time.Time) bool {
	t.Helper()
	res := Check(sess, "contact.times", contactPolicy, now)
	if res.Blocked {
		return false
	}
	if err := Tick(sess, "contact.times", res.Times, now); err != nil {
		t.Fatalf("tick: %v", err)
	}
	return true
}

func TestSixthSubmissionWithinWindowBlocked(t *testing.T) {
	sess := session.New("s", nil)
	start := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if !submit(t, sess, start.Add(time.Duration(i)*time.Minute)) {
			t.Fatalf("submission %d should be allowed", i+1)
		}
	}
	if submit(t, sess, start.Add(10*time.Minute)) {
		t.Error("6th submission within one hour should be blocked")
	}
}

func TestMinIntervalBlocks(t *testing.T) {
	sess := session.New("s", nil)
	start := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)

	if !submit(t, sess, start) {
		t.Fatal("first submission should be allowed")
	}
	if submit(t, sess, start.Add(10*time.Second)) {
		t.Error("submission 10s later should be blocked with a 20s minimum interval")
	}
	if !submit(t, sess, start.Add(21*time.Second)) {
		t.Error("submission after the minimum interval should be allowed")
	}
}

func TestWindowSlides(t *testing.T) {
	sess := session.New("s", nil)
	start := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		submit(t, sess, start.Add(time.Duration(i)*time.Minute))
	}

	res := Check(sess, "contact.times", contactPolicy, start.Add(time.Hour+30*time.Second))
	if res.Blocked {
		t.Error("oldest entry left the window, submission should be allowed")
	}
	if len(res.Times) != 4 {
		t.Errorf("pruned window = %d entries, want 4", len(res.Times))
	}
}

func TestCheckHasNoSideEffects(t *testing.T) {
	sess := session.New("s", nil)
	now := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if res := Check(sess, "contact.times", contactPolicy, now); res.Blocked {
			t.Fatal("check without tick should never block")
		}
	}
	if sess.Dirty() {
		t.Error("Check should not modify the session")
	}
}

func TestCorruptWindowTreatedAsEmpty(t *testing.T) {
	sess := session.New("s", nil)
	sess.Set("contact.times", "garbage")

	res := Check(sess, "contact.times", contactPolicy, time.Now())
	if res.Blocked || len(res.Times) != 0 {
		t.Errorf("result = %+v, want unblocked empty window", res)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	sess := session.New("s", nil)
	now := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)

	submit(t, sess, now)
	res := Check(sess, "booking.times", contactPolicy, now.Add(time.Second))
	if res.Blocked {
		t.Error("booking window should not see contact submissions")
	}
}
