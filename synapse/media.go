// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"
	"time"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// RoomMedia lists the content URIs referenced by a room's events,
// split by whether the media is stored locally or on a remote server.
type RoomMedia struct {
	Local  []ref.ContentURI `json:"local"`
	Remote []ref.ContentURI `json:"remote"`
}

// DeletedMedia is the result of a media deletion.
type DeletedMedia struct {
	DeletedMedia []string `json:"deleted_media"`
	Total        int      `json:"total"`
}

// DeleteMediaQuery selects local media for bulk deletion.
type DeleteMediaQuery struct {
	// Before deletes media last accessed before this instant. Required.
	Before time.Time
	// SizeGreaterThan restricts to media larger than this many bytes.
	SizeGreaterThan *int64
	// KeepProfiles, when false, also deletes media used as avatars.
	KeepProfiles *bool
}

func (q DeleteMediaQuery) values() *queryEncoder {
	return newQuery().
		timestamp("before_ts", q.Before).
		optionalInt64("size_gt", q.SizeGreaterThan).
		optionalBool("keep_profiles", q.KeepProfiles)
}

type quarantineCount struct {
	NumQuarantined int `json:"num_quarantined"`
}

// RoomMedia lists the media referenced in a room.
func (c *Client) RoomMedia(ctx context.Context, roomID ref.RoomID) (RoomMedia, error) {
	return call[RoomMedia](ctx, c, get(V1, "/room/"+escape(roomID.String())+"/media"))
}

// QuarantineMedia quarantines one piece of media so it can no longer be
// downloaded.
func (c *Client) QuarantineMedia(ctx context.Context, media ref.ContentURI) error {
	_, err := call[empty](ctx, c, post(V1, "/media/quarantine/"+mediaPath(media), nil))
	return err
}

// UnquarantineMedia releases one piece of media from quarantine.
func (c *Client) UnquarantineMedia(ctx context.Context, media ref.ContentURI) error {
	_, err := call[empty](ctx, c, post(V1, "/media/unquarantine/"+mediaPath(media), nil))
	return err
}

// QuarantineRoomMedia quarantines all local and remote media referenced
// in a room and returns how many items were quarantined.
func (c *Client) QuarantineRoomMedia(ctx context.Context, roomID ref.RoomID) (int, error) {
	return project(ctx, c, post(V1, "/room/"+escape(roomID.String())+"/media/quarantine", nil),
		func(r quarantineCount) int { return r.NumQuarantined })
}

// QuarantineUserMedia quarantines all local media uploaded by a user and
// returns how many items were quarantined.
func (c *Client) QuarantineUserMedia(ctx context.Context, userID ref.UserID) (int, error) {
	return project(ctx, c, post(V1, "/user/"+escape(userID.String())+"/media/quarantine", nil),
		func(r quarantineCount) int { return r.NumQuarantined })
}

// ProtectMedia protects local media from quarantine by room or user.
func (c *Client) ProtectMedia(ctx context.Context, mediaID string) error {
	_, err := call[empty](ctx, c, post(V1, "/media/protect/"+escape(mediaID), nil))
	return err
}

// UnprotectMedia removes quarantine protection from local media.
func (c *Client) UnprotectMedia(ctx context.Context, mediaID string) error {
	_, err := call[empty](ctx, c, post(V1, "/media/unprotect/"+escape(mediaID), nil))
	return err
}

// DeleteMedia deletes one piece of local media.
func (c *Client) DeleteMedia(ctx context.Context, media ref.ContentURI) (DeletedMedia, error) {
	return call[DeletedMedia](ctx, c, del(V1, "/media/"+mediaPath(media), nil))
}

// DeleteMediaBefore deletes local media selected by query.
func (c *Client) DeleteMediaBefore(ctx context.Context, query DeleteMediaQuery) (DeletedMedia, error) {
	return call[DeletedMedia](ctx, c, post(V1, "/media/delete", nil).withQuery(query.values().encode()))
}

// DeleteUserMedia deletes all local media uploaded by a user.
func (c *Client) DeleteUserMedia(ctx context.Context, userID ref.UserID) (DeletedMedia, error) {
	return call[DeletedMedia](ctx, c, del(V1, "/users/"+escape(userID.String())+"/media", nil))
}

// PurgeMediaCache deletes cached copies of remote media last accessed
// before the given instant and returns how many were deleted.
func (c *Client) PurgeMediaCache(ctx context.Context, before time.Time) (int, error) {
	type response struct {
		Deleted int `json:"deleted"`
	}
	query := newQuery().timestamp("before_ts", before).encode()
	return project(ctx, c, post(V1, "/purge_media_cache", nil).withQuery(query),
		func(r response) int { return r.Deleted })
}

// mediaPath is the {server}/{mediaID} path tail used by the per-item
// media endpoints.
func mediaPath(media ref.ContentURI) string {
	return escape(media.Server().String()) + "/" + escape(media.MediaID())
}
