// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package synapse is a typed client for the Synapse homeserver admin API
// (/_synapse/admin/v1 and /_synapse/admin/v2).
//
// Every endpoint method follows the same path: build the URL from the
// client's base address, port, API version and an escaped path suffix;
// attach an optional query string or JSON body; send one request; decode
// the response body into an [Envelope]; and optionally project a single
// field out of the decoded payload.
//
// Response decoding is a closed, ordered three-way match. A body that is
// an object with string "errcode" and "error" members is an API error. A
// body that decodes into the target type with every required field
// present is a success. Anything else is an unrecognized response and is
// returned as an error carrying the raw JSON, so drift in the server's
// response shapes is reported rather than coerced into zero values.
//
// All failures are returned as *[Error], whose [ErrorKind] tells a caller
// whether the request never left (header or URL construction), never
// completed (transport), was rejected by the server ([KindAPI], with the
// server's *[MatrixError] reachable through errors.As), or came back in a
// shape this package does not understand.
//
// The [Client] is immutable after construction and safe for concurrent
// use. It performs no retries, caching, rate limiting, or polling:
// operations that start a long-running server job (room deletion,
// history purges) return the job ID and leave polling to the caller.
package synapse
