// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// DeleteRoomRequest is the body of a room deletion. Every field is
// optional.
type DeleteRoomRequest struct {
	// NewRoomUserID, when set, creates a replacement room owned by this
	// user and moves local members into it.
	NewRoomUserID *ref.UserID `json:"new_room_user_id,omitempty"`
	// RoomName names the replacement room.
	RoomName *string `json:"room_name,omitempty"`
	// Message is posted in the replacement room.
	Message *string `json:"message,omitempty"`
	// Block prevents local users from joining the room in future.
	Block *bool `json:"block,omitempty"`
	// Purge removes the room's events from the database. Defaults to
	// true on the server.
	Purge *bool `json:"purge,omitempty"`
	// ForcePurge purges even if local users could not be kicked.
	ForcePurge *bool `json:"force_purge,omitempty"`
}

// ShutdownRoom is the outcome of kicking users out of a deleted room.
type ShutdownRoom struct {
	KickedUsers       []ref.UserID `json:"kicked_users"`
	FailedToKickUsers []ref.UserID `json:"failed_to_kick_users"`
	LocalAliases      []string     `json:"local_aliases"`
	NewRoomID         *ref.RoomID  `json:"new_room_id"`
}

// DeleteStatus is the state of an asynchronous room deletion.
type DeleteStatus struct {
	DeleteID     *string       `json:"delete_id,omitempty"`
	RoomID       *ref.RoomID   `json:"room_id,omitempty"`
	Status       PurgeStatus   `json:"status"`
	Error        *string       `json:"error,omitempty"`
	ShutdownRoom *ShutdownRoom `json:"shutdown_room,omitempty"`
}

// DeleteRoomV1 deletes a room synchronously and returns when the server
// has finished. Large rooms can outlast HTTP timeouts.
//
// Deprecated: use DeleteRoom and poll DeleteStatus.
func (c *Client) DeleteRoomV1(ctx context.Context, roomID ref.RoomID, request DeleteRoomRequest) (ShutdownRoom, error) {
	return call[ShutdownRoom](ctx, c, del(V1, roomPath(roomID), request))
}

// DeleteRoom starts an asynchronous room deletion and returns its delete
// ID. Progress is reported by DeleteStatus and RoomDeleteStatus.
func (c *Client) DeleteRoom(ctx context.Context, roomID ref.RoomID, request DeleteRoomRequest) (string, error) {
	type response struct {
		DeleteID string `json:"delete_id"`
	}
	return project(ctx, c, del(V2, roomPath(roomID), request),
		func(r response) string { return r.DeleteID })
}

// RoomDeleteStatus lists the deletion jobs of a room.
func (c *Client) RoomDeleteStatus(ctx context.Context, roomID ref.RoomID) ([]DeleteStatus, error) {
	type response struct {
		Results []DeleteStatus `json:"results"`
	}
	return project(ctx, c, get(V2, roomPath(roomID)+"/delete_status"),
		func(r response) []DeleteStatus { return r.Results })
}

// DeleteStatus returns the state of one deletion job.
func (c *Client) DeleteStatus(ctx context.Context, deleteID string) (DeleteStatus, error) {
	return call[DeleteStatus](ctx, c, get(V2, "/rooms/delete_status/"+escape(deleteID)))
}
