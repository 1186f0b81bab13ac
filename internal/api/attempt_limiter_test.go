package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	window := time.Hour
	limiter := newAttemptLimiter(window)
	key := "127.0.0.1"
	now := time.Now().UTC()

	limiter.addFailure(key, now.Add(-2*time.Hour), window)
	if limiter.tooManyRecent(key, now, 1, window) {
		t.Fatal("expected old attempt to be pruned from active window")
	}

	limiter.addFailure(key, now.Add(-30*time.Minute), window)
	if !limiter.tooManyRecent(key, now, 1, window) {
		t.Fatal("expected one recent attempt to hit limit 1")
	}

	limiter.reset(key)
	if limiter.tooManyRecent(key, now, 1, window) {
		t.Fatal("expected no attempts after reset")
	}
}

func TestAttemptLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	window := 15 * time.Minute
	limiter := newAttemptLimiter(window)
	now := time.Now().UTC()

	for attempt := 0; attempt < unlockAttemptsLimit; attempt++ {
		limiter.addFailure("10.0.0.1", now, window)
	}
	if !limiter.tooManyRecent("10.0.0.1", now, unlockAttemptsLimit, window) {
		t.Fatal("expected first client to be throttled")
	}
	if limiter.tooManyRecent("10.0.0.2", now, unlockAttemptsLimit, window) {
		t.Fatal("expected second client to be unaffected")
	}
}
