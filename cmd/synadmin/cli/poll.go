// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"time"

	"github.com/bureau-foundation/synadmin/lib/clock"
)

// Poll calls check, then again every interval on clk, until check
// reports done, returns an error, or ctx is cancelled. The admin API
// has no push notification for long-running jobs; commands with --wait
// use this to follow deletion and purge status.
func Poll(ctx context.Context, clk clock.Clock, interval time.Duration, check func(context.Context) (bool, error)) error {
	for {
		done, err := check(ctx)
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return Transient("stopped waiting: %w", ctx.Err())
		case <-clk.After(interval):
		}
	}
}
