// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// RequireReceive returns the next value from ch, failing the test if
// none arrives within timeout or ch is closed first. The optional
// message is a format string and its arguments.
//
//	err := testutil.RequireReceive(t, done, 5*time.Second, "poll for %s", deleteID)
func RequireReceive[T any](t testing.TB, ch <-chan T, timeout time.Duration, message ...any) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before a value arrived: %s", describe(message))
		}
		return value
	case <-timer.C:
		t.Fatalf("nothing received after %v: %s", timeout, describe(message))
	}
	panic("unreachable")
}

// RequireClosed fails the test unless ch is closed (or delivers a
// value) within timeout.
func RequireClosed(t testing.TB, ch <-chan struct{}, timeout time.Duration, message ...any) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("channel still open after %v: %s", timeout, describe(message))
	}
}

func describe(message []any) string {
	if len(message) == 0 {
		return "(no message)"
	}
	format, ok := message[0].(string)
	if !ok {
		return fmt.Sprint(message...)
	}
	return fmt.Sprintf(format, message[1:]...)
}
