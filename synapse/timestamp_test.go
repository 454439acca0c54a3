// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"
)

func TestTimestampRoundTripFromMillis(t *testing.T) {
	samples := []int64{0, 1, 999, 1000, 1_700_000_000_123, 253_402_300_799_999}
	random := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		samples = append(samples, random.Int64N(1<<53))
	}
	for _, milliseconds := range samples {
		if got := EncodeMillis(DecodeMillis(milliseconds)); got != milliseconds {
			t.Fatalf("EncodeMillis(DecodeMillis(%d)) = %d", milliseconds, got)
		}
	}
}

func TestTimestampRoundTripFromTime(t *testing.T) {
	instants := []time.Time{
		time.Unix(0, 0).UTC(),
		time.Date(2024, 2, 29, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2038, 1, 19, 3, 14, 8, 1_000_000, time.UTC),
	}
	for _, instant := range instants {
		if got := DecodeMillis(EncodeMillis(instant)); !got.Equal(instant) {
			t.Errorf("DecodeMillis(EncodeMillis(%s)) = %s", instant, got)
		}
	}
}

func TestEncodeMillisTruncates(t *testing.T) {
	instant := time.Unix(1, 999_999_999)
	if got := EncodeMillis(instant); got != 1999 {
		t.Errorf("EncodeMillis = %d, want 1999", got)
	}
}

func TestEncodeMillisPanicsBeforeEpoch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("EncodeMillis did not panic for a pre-epoch instant")
		}
	}()
	EncodeMillis(time.Date(1969, 12, 31, 23, 59, 59, 0, time.UTC))
}

func TestTimestampJSON(t *testing.T) {
	type record struct {
		Required Timestamp  `json:"required"`
		Optional *Timestamp `json:"optional,omitempty"`
	}

	encoded, err := json.Marshal(record{Required: TimestampFromMillis(1_700_000_000_123)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(encoded) != `{"required":1700000000123}` {
		t.Errorf("Marshal = %s", encoded)
	}

	var decoded record
	if err := json.Unmarshal([]byte(`{"required":42,"optional":7}`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Required.Millis() != 42 || decoded.Optional == nil || decoded.Optional.Millis() != 7 {
		t.Errorf("decoded = %+v", decoded)
	}

	if err := json.Unmarshal([]byte(`{"required":"yesterday"}`), &decoded); err == nil {
		t.Error("expected an error for a string timestamp")
	}
}
