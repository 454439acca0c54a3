// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// RoomID is a validated Matrix room ID (e.g., "!abc123:example.org").
//
// Room IDs are server-assigned opaque identifiers. They always start
// with '!' and contain a ':' separating the opaque local part from the
// server name. Admin endpoints that operate on a room take a RoomID;
// the few that also accept aliases take a [RoomIDOrAlias].
//
// RoomID is an immutable value type. The zero value is not valid;
// use IsZero to check.
type RoomID struct {
	id string
}

// ParseRoomID validates and wraps a raw Matrix room ID string.
// Returns an error if the string is empty, doesn't start with '!',
// or is missing the ':server' suffix.
func ParseRoomID(raw string) (RoomID, error) {
	if _, _, err := parsePrefixedID(raw, '!', "room ID"); err != nil {
		return RoomID{}, err
	}
	return RoomID{id: raw}, nil
}

// MustParseRoomID is like ParseRoomID but panics on error.
func MustParseRoomID(raw string) RoomID {
	r, err := ParseRoomID(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseRoomID(%q): %v", raw, err))
	}
	return r
}

// String returns the full room ID string (e.g., "!abc123:example.org").
func (r RoomID) String() string { return r.id }

// IsZero reports whether the RoomID is the zero value (uninitialized).
func (r RoomID) IsZero() bool { return r.id == "" }

// MarshalText implements encoding.TextMarshaler.
func (r RoomID) MarshalText() ([]byte, error) { return marshalText(r.id) }

// UnmarshalText implements encoding.TextUnmarshaler. Validates the room
// ID format; an empty input produces the zero value.
func (r *RoomID) UnmarshalText(data []byte) error {
	return unmarshalText(data, r, ParseRoomID)
}

// RoomIDOrAlias holds either a room ID or a room alias. The join admin
// endpoint accepts both, and the server resolves aliases itself.
type RoomIDOrAlias struct {
	value string
}

// ParseRoomIDOrAlias accepts "!room:server" or "#alias:server".
func ParseRoomIDOrAlias(raw string) (RoomIDOrAlias, error) {
	if raw != "" && raw[0] == '#' {
		alias, err := ParseRoomAlias(raw)
		if err != nil {
			return RoomIDOrAlias{}, err
		}
		return RoomIDOrAlias{value: alias.String()}, nil
	}
	roomID, err := ParseRoomID(raw)
	if err != nil {
		return RoomIDOrAlias{}, fmt.Errorf("expected room ID or alias: %w", err)
	}
	return RoomIDOrAlias{value: roomID.String()}, nil
}

// String returns the room ID or alias as given.
func (r RoomIDOrAlias) String() string { return r.value }

// IsZero reports whether no room has been set.
func (r RoomIDOrAlias) IsZero() bool { return r.value == "" }

// IsAlias reports whether the value is a room alias.
func (r RoomIDOrAlias) IsAlias() bool { return r.value != "" && r.value[0] == '#' }

// RoomID returns the room ID form of the value and true, or the zero
// RoomID and false when the value is an alias.
func (r RoomIDOrAlias) RoomID() (RoomID, bool) {
	if r.value == "" || r.IsAlias() {
		return RoomID{}, false
	}
	return RoomID{id: r.value}, true
}

// FromRoomID wraps a room ID.
func FromRoomID(roomID RoomID) RoomIDOrAlias { return RoomIDOrAlias{value: roomID.id} }

// FromRoomAlias wraps a room alias.
func FromRoomAlias(alias RoomAlias) RoomIDOrAlias { return RoomIDOrAlias{value: alias.alias} }
