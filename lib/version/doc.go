// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports synadmin's build version and compares
// Synapse server versions.
//
// # Build information
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// Unset values fall back to the module build information recorded by
// the Go toolchain, then to "unknown" / "0.1.0-dev".
//
// # Server versions
//
// [ParseServer] parses the server_version string returned by
// /_synapse/admin/v1/server_version ("1.120.0", "1.121.0rc2") into a
// [Server] that orders with [Server.Compare] and [Server.AtLeast].
package version
