// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for synadmin packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with a time.After fallback) so individual tests
// do not call time.After themselves. They are the only place tests use
// real wall-clock timeouts; polling loops under test run on a fake
// clock from lib/clock.
//
// [RequireJSONEqual] compares JSON documents structurally, ignoring key
// order and whitespace. [WriteFile] writes a fixture into a test's
// temporary directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
