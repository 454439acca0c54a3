// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"
	"golang.org/x/term"

	"github.com/bureau-foundation/synadmin/lib/secret"
)

// maxInputSize bounds JSON documents read from files or stdin.
const maxInputSize = 1 << 20

// ReadJSONFile reads a JSON document from path ("-" for stdin). Comments
// and trailing commas are accepted and stripped. The result is compact,
// valid JSON.
func ReadJSONFile(path string) (json.RawMessage, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, Validation("opening %s: %w", path, err)
		}
		defer file.Close()
		reader = file
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxInputSize+1))
	if err != nil {
		return nil, Validation("reading %s: %w", path, err)
	}
	if len(data) > maxInputSize {
		return nil, Validation("%s exceeds %d bytes", path, maxInputSize)
	}
	return ParseJSON(path, data)
}

// ParseJSON strips comments from data and checks that the rest is one
// JSON value. source names the input in errors.
func ParseJSON(source string, data []byte) (json.RawMessage, error) {
	stripped := jsonc.ToJSON(data)
	var value any
	if err := json.Unmarshal(stripped, &value); err != nil {
		return nil, Validation("parsing %s: %w", source, err)
	}
	compact, err := json.Marshal(value)
	if err != nil {
		return nil, Internal("re-encoding %s: %w", source, err)
	}
	return compact, nil
}

// ReadNewPassword reads a new password into a secret buffer. With a
// path, the trimmed file content (the first line of stdin for "-") is
// the password. On
// a terminal it prompts twice with echo disabled and requires both
// entries to match.
func ReadNewPassword(path string) (*secret.Buffer, error) {
	if path != "" {
		buffer, err := secret.ReadFromPath(path)
		if err != nil {
			return nil, Validation("reading password: %w", err)
		}
		return buffer, nil
	}

	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return nil, Validation("no terminal available for a password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, "New password: ")
	first, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, Internal("reading password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(stdinFd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		secret.Zero(first)
		return nil, Internal("reading password confirmation: %w", err)
	}

	buffer, err := secret.NewFromBytes(first)
	if err != nil {
		secret.Zero(first)
		secret.Zero(second)
		return nil, Validation("password: %w", err)
	}
	match := buffer.Equal(second)
	secret.Zero(second)
	if !match {
		buffer.Close()
		return nil, Validation("passwords do not match")
	}
	return buffer, nil
}
