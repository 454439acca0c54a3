// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	t.Run("normal body", func(t *testing.T) {
		data, err := ReadResponse(bytes.NewReader([]byte(`{"status":"ok"}`)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"status":"ok"}` {
			t.Fatalf("got %q, want %q", data, `{"status":"ok"}`)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		data, err := ReadResponse(bytes.NewReader(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(data) != 0 {
			t.Fatalf("expected empty, got %d bytes", len(data))
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		_, err := ReadResponse(&failReader{})
		if err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestReadBoundedRejectsOversizedBody(t *testing.T) {
	data, err := readBounded(strings.NewReader("0123456789"), 10)
	if err != nil {
		t.Fatalf("body at the limit: %v", err)
	}
	if len(data) != 10 {
		t.Fatalf("got %d bytes, want 10", len(data))
	}

	if _, err := readBounded(strings.NewReader("0123456789a"), 10); err == nil {
		t.Fatal("expected error for a body over the limit")
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read failure")
}
