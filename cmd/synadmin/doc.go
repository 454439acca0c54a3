// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Synadmin administers a Synapse Matrix homeserver through its admin
// REST API: rooms, users, media, registration tokens, event reports,
// server notices, and background updates.
//
// Usage:
//
//	synadmin [--verbose] <command> [subcommand] [flags]
//
// Run "synadmin --help" for the command list, or "synadmin <command>
// --help" for a command's flags and examples. Exit status is 0 on
// success, 2 for invalid arguments or configuration, and 1 for any
// other failure.
package main
