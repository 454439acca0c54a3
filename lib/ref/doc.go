// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifiers for
// the Synapse admin client.
//
// Admin API paths interpolate identifiers directly: room IDs, user IDs,
// event IDs, server names and media IDs. Passing them around as bare
// strings makes it easy to hand a room alias to an endpoint that wants
// a room ID, or a full mxc:// URI to an endpoint that wants only the
// media ID. Each identifier here is a validated value type:
//
//   - [UserID]: @localpart:server
//   - [RoomID]: !opaque:server
//   - [RoomAlias]: #localpart:server
//   - [EventID]: $opaque (room v4+) or $opaque:server (older rooms)
//   - [ServerName]: hostname with optional port
//   - [ContentURI]: mxc://server/mediaID
//
// Validation is structural only. The package accepts any identifier a
// homeserver could plausibly return and does not enforce the historical
// user ID grammar, since Synapse itself still serves legacy IDs.
//
// All types implement encoding.TextMarshaler and TextUnmarshaler, so JSON
// decoding validates at the boundary and an empty string decodes to the
// zero value.
package ref
