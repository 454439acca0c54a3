// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/bureau-foundation/synadmin/lib/ref"
	"github.com/bureau-foundation/synadmin/synapse"
)

// ExactArgs checks that args holds exactly the positional arguments
// named in usage.
func ExactArgs(args []string, count int, usage string) error {
	switch {
	case len(args) < count:
		return Validation("missing argument\n\nUsage: %s", usage)
	case len(args) > count:
		return Validation("unexpected argument: %s\n\nUsage: %s", args[count], usage)
	}
	return nil
}

// ParseDirection parses a --dir value. Empty leaves the server default.
func ParseDirection(raw string) (synapse.Direction, error) {
	if raw == "" {
		return "", nil
	}
	direction, ok := synapse.ParseDirection(strings.ToLower(raw))
	if !ok {
		return "", Validation("--dir must be f (forward) or b (backward), got %q", raw)
	}
	return direction, nil
}

// ParseRoomID parses a room ID argument.
func ParseRoomID(raw string) (ref.RoomID, error) {
	roomID, err := ref.ParseRoomID(raw)
	if err != nil {
		return ref.RoomID{}, Validation("invalid room ID: %w", err)
	}
	return roomID, nil
}

// ParseUserID parses a user ID argument.
func ParseUserID(raw string) (ref.UserID, error) {
	userID, err := ref.ParseUserID(raw)
	if err != nil {
		return ref.UserID{}, Validation("invalid user ID: %w", err)
	}
	return userID, nil
}

// ParseEventID parses an event ID argument.
func ParseEventID(raw string) (ref.EventID, error) {
	eventID, err := ref.ParseEventID(raw)
	if err != nil {
		return ref.EventID{}, Validation("invalid event ID: %w", err)
	}
	return eventID, nil
}

// ParseContentURI parses a media argument given as mxc://server/id or
// as server/id.
func ParseContentURI(raw string) (ref.ContentURI, error) {
	if !strings.HasPrefix(raw, "mxc://") {
		raw = "mxc://" + raw
	}
	media, err := ref.ParseContentURI(raw)
	if err != nil {
		return ref.ContentURI{}, Validation("invalid media: %w", err)
	}
	return media, nil
}
