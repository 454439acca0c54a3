// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"encoding/json"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// Direction is the sort or pagination direction of a listing. The zero
// value leaves the server default in place.
type Direction string

const (
	// Forward lists oldest first, or ascending.
	Forward Direction = "f"
	// Backward lists newest first, or descending.
	Backward Direction = "b"
)

// ParseDirection accepts "f"/"forward"/"asc" and "b"/"backward"/"desc".
func ParseDirection(raw string) (Direction, bool) {
	switch raw {
	case "f", "forward", "asc", "ascending":
		return Forward, true
	case "b", "backward", "desc", "descending":
		return Backward, true
	}
	return "", false
}

// PurgeStatus is the state of a server-side purge or room deletion job.
// The server may add states; unknown values are kept as-is.
type PurgeStatus string

const (
	PurgeActive       PurgeStatus = "active"
	PurgeShuttingDown PurgeStatus = "shutting_down"
	PurgePurging      PurgeStatus = "purging"
	PurgeComplete     PurgeStatus = "complete"
	PurgeFailed       PurgeStatus = "failed"
)

// Done reports whether the job has finished, successfully or not.
func (s PurgeStatus) Done() bool {
	return s == PurgeComplete || s == PurgeFailed
}

// Event is a Matrix event as the admin API returns it in room state,
// messages, and event context. Content is left undecoded: its shape
// depends on the event type.
type Event struct {
	EventID        ref.EventID     `json:"event_id,omitempty"`
	Type           string          `json:"type"`
	Sender         ref.UserID      `json:"sender"`
	OriginServerTS *Timestamp      `json:"origin_server_ts,omitempty"`
	Content        json.RawMessage `json:"content"`
	RoomID         ref.RoomID      `json:"room_id,omitempty"`
	StateKey       *string         `json:"state_key,omitempty"`
	Unsigned       json.RawMessage `json:"unsigned,omitempty"`
}

// IsState reports whether the event is a state event.
func (e Event) IsState() bool {
	return e.StateKey != nil
}
