// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the injectable time source of synadmin's polling
// loops ("room delete --wait", "purge-history status --wait").
//
// Code that waits accepts a [Clock] instead of calling time.Now or
// time.After. Production passes [Real]; tests pass [Fake], which
// stands still until Advance is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go poll(ctx, c)
//	c.WaitForTimers(1)          // poll is waiting on c.After
//	c.Advance(2 * time.Second)  // the wait ends deterministically
package clock
