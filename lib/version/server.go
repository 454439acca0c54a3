// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Server is a parsed Synapse release version.
type Server struct {
	Major, Minor, Patch int

	// PreRelease is the suffix after the patch number ("rc2"), or "" for
	// a final release.
	PreRelease string
}

// ParseServer parses "1.120.0", "1.121.0rc2", or "1.98". A missing patch
// number is zero. Anything after a space or "+" is ignored, since
// development builds append git details there.
func ParseServer(raw string) (Server, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if cut := strings.IndexAny(value, " +"); cut >= 0 {
		value = value[:cut]
	}

	parts := strings.Split(value, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Server{}, fmt.Errorf("malformed Synapse version %q", raw)
	}

	var server Server
	var err error
	if server.Major, err = strconv.Atoi(parts[0]); err != nil {
		return Server{}, fmt.Errorf("malformed Synapse version %q: major: %w", raw, err)
	}
	last := parts[len(parts)-1]
	digits := len(last) - len(strings.TrimLeft(last, "0123456789"))
	if digits == 0 {
		return Server{}, fmt.Errorf("malformed Synapse version %q", raw)
	}
	number, _ := strconv.Atoi(last[:digits])
	server.PreRelease = strings.TrimLeft(last[digits:], "-.")

	if len(parts) == 3 {
		if server.Minor, err = strconv.Atoi(parts[1]); err != nil {
			return Server{}, fmt.Errorf("malformed Synapse version %q: minor: %w", raw, err)
		}
		server.Patch = number
	} else {
		server.Minor = number
	}
	return server, nil
}

// MustParseServer is ParseServer for constants. Panics on error.
func MustParseServer(raw string) Server {
	server, err := ParseServer(raw)
	if err != nil {
		panic(err)
	}
	return server
}

// Compare orders versions: negative when s precedes other, zero when
// equal, positive otherwise. A pre-release precedes its final release.
// Pre-releases of the same version order by label, then by the number
// that ends the label ("rc2" < "rc10").
func (s Server) Compare(other Server) int {
	if order := cmp.Compare(s.Major, other.Major); order != 0 {
		return order
	}
	if order := cmp.Compare(s.Minor, other.Minor); order != 0 {
		return order
	}
	if order := cmp.Compare(s.Patch, other.Patch); order != 0 {
		return order
	}
	switch {
	case s.PreRelease == other.PreRelease:
		return 0
	case s.PreRelease == "":
		return 1
	case other.PreRelease == "":
		return -1
	}
	return comparePreRelease(s.PreRelease, other.PreRelease)
}

// comparePreRelease splits "rc10" into the label "rc" and the number 10.
// A label without a number precedes the same label with one.
func comparePreRelease(a, b string) int {
	labelA, numberA, hasA := splitPreRelease(a)
	labelB, numberB, hasB := splitPreRelease(b)
	if order := strings.Compare(labelA, labelB); order != 0 {
		return order
	}
	switch {
	case hasA != hasB && !hasA:
		return -1
	case hasA != hasB:
		return 1
	}
	return cmp.Compare(numberA, numberB)
}

func splitPreRelease(suffix string) (label string, number int, hasNumber bool) {
	label = strings.TrimRight(suffix, "0123456789")
	digits := suffix[len(label):]
	if digits == "" {
		return label, 0, false
	}
	number, err := strconv.Atoi(digits)
	if err != nil {
		// Too long for an int: fall back to ordering the digits as text.
		return suffix, 0, false
	}
	return label, number, true
}

// AtLeast reports whether s is minimum or newer.
func (s Server) AtLeast(minimum Server) bool {
	return s.Compare(minimum) >= 0
}

func (s Server) String() string {
	return fmt.Sprintf("%d.%d.%d%s", s.Major, s.Minor, s.Patch, s.PreRelease)
}
