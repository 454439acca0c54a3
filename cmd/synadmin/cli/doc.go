// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for synadmin.
//
// The central type is [Command]: a named command with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function
// that receives a context and a logger. Commands are assembled into a
// tree by the commands package and dispatched via [Command.Execute],
// which parses flags, routes to subcommands, and prints structured help
// with examples. A command that has both flags and subcommands parses
// its flags before dispatching, which is how global flags such as
// --verbose reach the root.
//
// Unknown subcommands and flags are answered with the closest known
// name by Levenshtein distance (see suggest.go).
//
// Command parameters are plain structs bound to flags by [BindFlags]
// through struct tags. Two embeddable structs carry the flags shared by
// every admin command:
//
//   - [ConnectionConfig] locates the homeserver and the admin access
//     token (config file, profile, flag overrides) and builds a
//     [synapse.Client] via [ConnectionConfig.Connect].
//
//   - [OutputConfig] selects text, JSON, or CBOR output and renders
//     tables and highlighted JSON on terminals.
//
// Errors returned by commands are categorised with [ToolError];
// [FromSynapse] maps admin API failures onto those categories.
package cli
