// Package testutil provides shared helpers for tests that coordinate
// goroutines: polling for conditions and asserting that an operation has,
// or has not yet, completed.
package testutil

import (
	"testing"
	"time"
)

// DefaultTimeout bounds how long the helpers wait before failing a test.
// Generous relative to the sub-second operations under test so slow CI
// machines do not flake.
const DefaultTimeout = 2 * time.Second

// Eventually polls cond every millisecond until it returns true or the
// timeout elapses, failing the test on timeout.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf(format, args...)
}

// Unblocks asserts that done fires within timeout. Use it to check that
// a previously blocked operation was released.
func Unblocks(t *testing.T, done <-chan struct{}, timeout time.Duration, format string, args ...any) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf(format, args...)
	}
}

// StaysBlocked asserts that done does not fire within d. It cannot prove
// an operation is parked, only fail to observe progress, so keep d short
// and pair it with a later Unblocks.
func StaysBlocked(t *testing.T, done <-chan struct{}, d time.Duration, format string, args ...any) {
	t.Helper()

	select {
	case <-done:
		t.Fatalf(format, args...)
	case <-time.After(d):
	}
}
