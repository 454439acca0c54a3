// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxSecretSize bounds a secret read from a file or stream. Admin
// tokens and passwords are far smaller.
const MaxSecretSize = 64 << 10

// ReadFromPath reads a secret from a file, or from stdin when path is
// "-". Surrounding whitespace is trimmed. The caller must Close the
// result.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadFrom(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxSecretSize+1))
	if err != nil {
		Zero(data)
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxSecretSize {
		Zero(data)
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxSecretSize)
	}
	return fromTrimmed(data)
}

// ReadFrom reads the first line of reader as a secret, trimming
// surrounding whitespace.
func ReadFrom(reader io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 4096), MaxSecretSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, fmt.Errorf("secret exceeds %d bytes", MaxSecretSize)
			}
			return nil, fmt.Errorf("reading secret: %w", err)
		}
		return nil, fmt.Errorf("secret is empty")
	}
	return fromTrimmed(scanner.Bytes())
}

// fromTrimmed moves the trimmed content of data into a Buffer and
// zeroes all of data.
func fromTrimmed(data []byte) (*Buffer, error) {
	defer Zero(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret is empty")
	}
	return NewFromBytes(trimmed)
}
