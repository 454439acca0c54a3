// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration behind synadmin's
// "--format cbor" output.
//
// The admin API speaks JSON; CBOR is an output format for scripts that
// prefer a compact binary encoding. [FromJSON] converts a JSON document
// to CBOR, keeping integers as CBOR integers rather than floats, so
// millisecond timestamps and counts survive exactly.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same response always produces identical bytes.
//
//	data, err := codec.FromJSON(body)
//	encoder := codec.NewEncoder(os.Stdout)
//
// Types with `json` tags encode with the same field names, since
// fxamacker/cbor falls back to `json` tags when `cbor` tags are
// absent.
package codec
