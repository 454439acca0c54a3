// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reading for the admin
// API client.
//
// Admin API responses are JSON documents. Reads are bounded at
// MaxResponseSize to prevent unbounded memory allocation from a
// misbehaving server or a misrouted request that lands on a streaming
// endpoint.
package netutil

import (
	"fmt"
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 256 MB.
// Legitimate admin responses (room lists, state dumps, media listings)
// are orders of magnitude smaller.
const MaxResponseSize int64 = 256 << 20

// ReadResponse reads a JSON API response body of at most MaxResponseSize
// bytes. A longer body is an error rather than a silently truncated
// document.
func ReadResponse(body io.Reader) ([]byte, error) {
	return readBounded(body, MaxResponseSize)
}

func readBounded(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
