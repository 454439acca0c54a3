// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads synadmin's YAML configuration.
//
// Configuration comes from a single file named by the SYNADMIN_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There is no ~/.config discovery and no search path:
// without one of the two, commands run on flags alone.
//
// A file may define named profiles (for example "staging" and
// "production") under "profiles"; the selected profile's non-empty
// values override the base values. The profile is chosen by the
// --profile flag or the file's own "profile" key.
//
// Path fields expand ${HOME}, ${SYNADMIN_CONFIG_DIR} (the directory
// holding the file), and ${VAR:-default}. No environment variable
// overrides a config value directly; flags do that.
package config
