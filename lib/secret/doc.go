// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds admin access tokens and passwords in memory that
// is locked against swap and excluded from core dumps.
//
// [Buffer] is backed by an anonymous mmap region outside the Go heap,
// so the garbage collector never copies it. Close zeroes and unmaps
// the region; any later access panics.
//
// Constructors:
//
//   - [New] allocates a zero-filled buffer
//   - [NewFromBytes] copies into protected memory and zeroes the source
//   - [ReadFromPath] reads a file, or stdin for "-", trimming whitespace
//   - [ReadFrom] reads one bounded line from any reader
//
// [Fingerprint] identifies a token in logs and diagnostics without
// revealing it: a keyed BLAKE3 digest rendered as "tok-" plus twelve
// hex digits.
package secret
