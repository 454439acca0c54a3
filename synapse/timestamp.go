// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// EncodeMillis returns the number of milliseconds between the Unix epoch
// and t, truncated. Panics if t is before the epoch: no admin API
// timestamp predates 1970, so such a value is a caller bug.
func EncodeMillis(t time.Time) int64 {
	if t.Before(time.Unix(0, 0)) {
		panic(fmt.Sprintf("synapse: timestamp %s is before the Unix epoch", t.Format(time.RFC3339Nano)))
	}
	return t.UnixMilli()
}

// DecodeMillis returns the UTC instant milliseconds after the Unix epoch.
// It is the inverse of EncodeMillis for non-negative inputs.
func DecodeMillis(milliseconds int64) time.Time {
	return time.UnixMilli(milliseconds).UTC()
}

// Timestamp is a point in time carried on the wire as an integer number
// of milliseconds since the Unix epoch. Optional timestamps are
// *Timestamp fields tagged omitempty.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t. The value is truncated to millisecond precision
// when marshalled.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// TimestampFromMillis builds a Timestamp from epoch milliseconds.
func TimestampFromMillis(milliseconds int64) Timestamp {
	return Timestamp{Time: DecodeMillis(milliseconds)}
}

// Millis returns the wire form of the timestamp.
func (t Timestamp) Millis() int64 {
	return EncodeMillis(t.Time)
}

// MarshalJSON encodes the timestamp as an integer of epoch milliseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Before(time.Unix(0, 0)) {
		return nil, fmt.Errorf("synapse: timestamp %s is before the Unix epoch", t.Format(time.RFC3339Nano))
	}
	return strconv.AppendInt(nil, t.UnixMilli(), 10), nil
}

// UnmarshalJSON decodes an integer of epoch milliseconds. JSON null
// leaves the value unchanged, matching encoding/json convention.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	milliseconds, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("synapse: timestamp must be integer milliseconds, got %s", data)
	}
	t.Time = DecodeMillis(milliseconds)
	return nil
}
