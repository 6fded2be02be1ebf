package domain

import (
	"slices"
	"time"
)

// RateWindow is the width of the rolling window every record's rate limit applies to.
const RateWindow = time.Hour

// UsageCounter tracks releases of one key record. It lives and dies with its record.
//
// CallTimestamps holds admitted calls in ascending order; entries older than the window are
// dropped lazily on the next admission, never by a background sweep.
type UsageCounter struct {
	CallTimestamps []time.Time `json:"calls"`
	TotalCalls     int64       `json:"total_calls"`
	RateLimitHits  int64       `json:"rate_limit_hits"`
	LastUsed       *time.Time  `json:"last_used,omitempty"`
}

// Admission is the outcome of one TryAdmit call.
type Admission struct {
	Admitted bool
	// RateLimit is the limit the decision was made against.
	RateLimit int
	// Remaining counts the calls still available in the window, including the one just admitted
	// as consumed.
	Remaining int
	// RetryAfter is set on denial: the time until the oldest blocking call leaves the window.
	RetryAfter time.Duration
}

// TryAdmit evaluates the window (now-RateWindow, now] and either records a call or counts a hit.
// Timestamps after now are outside the window and never count against it.
//
// The caller must hold the record's lock; read, prune and append happen as one step.
func (u *UsageCounter) TryAdmit(rateLimit int, now time.Time) Admission {
	u.prune(now)

	if rateLimit <= 0 {
		u.RateLimitHits++
		return Admission{RateLimit: rateLimit}
	}

	// After pruning, the window is the sorted prefix of timestamps not after now.
	calls, _ := slices.BinarySearchFunc(u.CallTimestamps, now, func(ts, target time.Time) int {
		if inWindow(ts, target) {
			return -1
		}
		return 1
	})

	if calls >= rateLimit {
		u.RateLimitHits++
		blocking := u.CallTimestamps[calls-rateLimit]
		return Admission{
			RateLimit:  rateLimit,
			RetryAfter: blocking.Add(RateWindow).Sub(now),
		}
	}

	u.CallTimestamps = slices.Insert(u.CallTimestamps, calls, now)
	u.TotalCalls++
	lastUsed := now
	u.LastUsed = &lastUsed

	return Admission{
		Admitted:  true,
		RateLimit: rateLimit,
		Remaining: rateLimit - (calls + 1),
	}
}

// CallsInWindow counts admitted calls in (now-RateWindow, now] without pruning.
func (u *UsageCounter) CallsInWindow(now time.Time) int {
	count := 0
	for _, ts := range u.CallTimestamps {
		if inWindow(ts, now) {
			count++
		}
	}
	return count
}

// DropAfter removes calls stamped after now, as found in snapshots taken on a host whose clock ran
// ahead. LastUsed is pulled back to the latest remaining call.
func (u *UsageCounter) DropAfter(now time.Time) {
	slices.SortFunc(u.CallTimestamps, time.Time.Compare)
	u.CallTimestamps = slices.DeleteFunc(u.CallTimestamps, func(ts time.Time) bool {
		return ts.After(now)
	})
	if u.LastUsed == nil || !u.LastUsed.After(now) {
		return
	}
	u.LastUsed = nil
	if n := len(u.CallTimestamps); n > 0 {
		lastUsed := u.CallTimestamps[n-1]
		u.LastUsed = &lastUsed
	}
}

func inWindow(ts, now time.Time) bool {
	return ts.After(now.Add(-RateWindow)) && !ts.After(now)
}

// Clone returns a deep copy.
func (u *UsageCounter) Clone() *UsageCounter {
	if u == nil {
		return nil
	}
	c := *u
	c.CallTimestamps = slices.Clone(u.CallTimestamps)
	if u.LastUsed != nil {
		lastUsed := *u.LastUsed
		c.LastUsed = &lastUsed
	}
	return &c
}

func (u *UsageCounter) prune(now time.Time) {
	cutoff := now.Add(-RateWindow)
	i := 0
	for i < len(u.CallTimestamps) && !u.CallTimestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		u.CallTimestamps = slices.Delete(u.CallTimestamps, 0, i)
	}
}
