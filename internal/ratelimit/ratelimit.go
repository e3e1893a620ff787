// Package ratelimit implements the per-session sliding window shared by the
// booking and contact forms.
package ratelimit

import (
	"time"

	"github.com/dukerupert/swimschool/internal/session"
)

// Policy bounds how often one session may submit a form.
type Policy struct {
	MinInterval  time.Duration `yaml:"min_interval"`
	MaxPerWindow int           `yaml:"max_per_window"`
	Window       time.Duration `yaml:"window"`
}

// Result is the outcome of Check. Times holds the pruned window and is what
// Tick appends to.
type Result struct {
	Blocked bool
	Times   []time.Time
}

// Check loads the timestamps stored under key, drops those older than the
// window and reports whether another submission is allowed. It does not
// modify the session.
func Check(sess *session.Session, key string, p Policy, now time.Time) Result {
	var stored []time.Time
	if _, err := sess.Get(key, &stored); err != nil {
		stored = nil
	}

	cutoff := now.Add(-p.Window)
	times := make([]time.Time, 0, len(stored))
	for _, t := range stored {
		if t.After(cutoff) {
			times = append(times, t)
		}
	}

	blocked := false
	if n := len(times); n > 0 && now.Sub(times[n-1]) < p.MinInterval {
		blocked = true
	}
	if p.MaxPerWindow > 0 && len(times) >= p.MaxPerWindow {
		blocked = true
	}
	return Result{Blocked: blocked, Times: times}
}

// Tick records a submission at now on top of the window returned by Check.
func Tick(sess *session.Session, key string, times []time.Time, now time.Time) error {
	next := make([]time.Time, 0, len(times)+1)
	next = append(next, times...)
	next = append(next, now)
	return sess.Set(key, next)
}
