// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime parses a time flag value relative to now. Accepted forms:
//
//	2024-05-01T12:00:00Z   RFC 3339
//	2024-05-01             midnight UTC
//	1714564800000          Unix epoch milliseconds
//	30d, 12h, 90m          that long before now
//	+7d, +1w               that long after now
//
// Durations take Go's units plus d (24h) and w (7d).
func ParseTime(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.DateOnly, raw); err == nil {
		return parsed, nil
	}
	if milliseconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if milliseconds < 0 {
			return time.Time{}, fmt.Errorf("epoch milliseconds must not be negative: %d", milliseconds)
		}
		return time.UnixMilli(milliseconds).UTC(), nil
	}

	future := strings.HasPrefix(raw, "+")
	duration, err := parseDuration(strings.TrimPrefix(strings.TrimPrefix(raw, "+"), "-"))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339, YYYY-MM-DD, epoch milliseconds, or a duration like 30d or +7d", raw)
	}
	if future {
		return now.Add(duration), nil
	}
	return now.Add(-duration), nil
}

func parseDuration(raw string) (time.Duration, error) {
	for suffix, unit := range map[string]time.Duration{"d": 24 * time.Hour, "w": 7 * 24 * time.Hour} {
		if count, ok := strings.CutSuffix(raw, suffix); ok {
			n, err := strconv.ParseUint(count, 10, 31)
			if err != nil {
				return 0, err
			}
			return time.Duration(n) * unit, nil
		}
	}
	return time.ParseDuration(raw)
}
