// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// UserID is a validated Matrix user ID (e.g., "@admin:example.org").
//
// A Matrix user ID always starts with '@' and contains a ':' separating
// the localpart from the server name. Localpart characters are not
// checked: Synapse still serves historical user IDs that predate the
// strict grammar, and admin tooling must be able to address them.
//
// UserID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type UserID struct {
	id string
}

// ParseUserID validates and wraps a raw Matrix user ID string.
// Returns an error if the string is empty, doesn't start with '@',
// has an empty localpart, or is missing the ':server' suffix.
func ParseUserID(raw string) (UserID, error) {
	if _, _, err := parsePrefixedID(raw, '@', "user ID"); err != nil {
		return UserID{}, err
	}
	return UserID{id: raw}, nil
}

// MustParseUserID is like ParseUserID but panics on error. Use in tests
// and static initialization where the input is known-valid.
func MustParseUserID(raw string) UserID {
	u, err := ParseUserID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseUserID(%q): %v", raw, err))
	}
	return u
}

// NewUserID constructs a user ID from a localpart and a server name.
func NewUserID(localpart string, server ServerName) (UserID, error) {
	return ParseUserID("@" + localpart + ":" + server.String())
}

// String returns the full user ID string (e.g., "@admin:example.org").
func (u UserID) String() string { return u.id }

// IsZero reports whether the UserID is the zero value (uninitialized).
func (u UserID) IsZero() bool { return u.id == "" }

// Localpart returns the portion between '@' and the first ':'.
// Returns "" for the zero value.
func (u UserID) Localpart() string {
	localpart, _, _ := parsePrefixedID(u.id, '@', "user ID")
	return localpart
}

// Server returns the server name of the user's homeserver. Returns the
// zero ServerName for the zero UserID.
func (u UserID) Server() ServerName {
	_, server, err := parsePrefixedID(u.id, '@', "user ID")
	if err != nil {
		return ServerName{}
	}
	return ServerName{name: server}
}

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) { return marshalText(u.id) }

// UnmarshalText implements encoding.TextUnmarshaler. Validates the user
// ID format; an empty input produces the zero value.
func (u *UserID) UnmarshalText(data []byte) error {
	return unmarshalText(data, u, ParseUserID)
}
