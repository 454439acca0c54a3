// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{name: "plain value", content: "syt_token", expected: "syt_token"},
		{name: "trailing newline", content: "syt_token\n", expected: "syt_token"},
		{name: "surrounding whitespace", content: "  syt_token \t\n", expected: "syt_token"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			result, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath() error: %v", err)
			}
			defer result.Close()
			if result.String() != test.expected {
				t.Errorf("ReadFromPath() = %q, want %q", result.String(), test.expected)
			}
		})
	}
}

func TestReadFromPathErrors(t *testing.T) {
	tempDir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("writing test file: %v", err)
		}
		return path
	}

	tests := map[string]string{
		"missing":         filepath.Join(tempDir, "does-not-exist"),
		"empty":           write("empty", ""),
		"whitespace only": write("whitespace", "   \n\t\n"),
		"oversized":       write("oversized", strings.Repeat("x", MaxSecretSize+1)),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			if buffer, err := ReadFromPath(path); err == nil {
				buffer.Close()
				t.Fatal("expected error")
			}
		})
	}
}

func TestReadFromReadsFirstLine(t *testing.T) {
	buffer, err := ReadFrom(strings.NewReader("  correct horse  \nsecond line\n"))
	if err != nil {
		t.Fatalf("ReadFrom failed: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "correct horse" {
		t.Errorf("ReadFrom = %q", buffer.String())
	}
}

func TestReadFromEmpty(t *testing.T) {
	if _, err := ReadFrom(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
