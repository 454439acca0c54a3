// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// RoomOrder is the sort key of the room listing.
type RoomOrder string

const (
	RoomOrderName               RoomOrder = "name"
	RoomOrderCanonicalAlias     RoomOrder = "canonical_alias"
	RoomOrderJoinedMembers      RoomOrder = "joined_members"
	RoomOrderJoinedLocalMembers RoomOrder = "joined_local_members"
	RoomOrderVersion            RoomOrder = "version"
	RoomOrderCreator            RoomOrder = "creator"
	RoomOrderEncryption         RoomOrder = "encryption"
	RoomOrderFederatable        RoomOrder = "federatable"
	RoomOrderPublic             RoomOrder = "public"
	RoomOrderJoinRules          RoomOrder = "join_rules"
	RoomOrderGuestAccess        RoomOrder = "guest_access"
	RoomOrderHistoryVisibility  RoomOrder = "history_visibility"
	RoomOrderStateEvents        RoomOrder = "state_events"
)

// RoomOrders lists every RoomOrder, for flag validation and help text.
var RoomOrders = []RoomOrder{
	RoomOrderName, RoomOrderCanonicalAlias, RoomOrderJoinedMembers,
	RoomOrderJoinedLocalMembers, RoomOrderVersion, RoomOrderCreator,
	RoomOrderEncryption, RoomOrderFederatable, RoomOrderPublic,
	RoomOrderJoinRules, RoomOrderGuestAccess, RoomOrderHistoryVisibility,
	RoomOrderStateEvents,
}

// Room is one entry of the room listing.
type Room struct {
	RoomID ref.RoomID `json:"room_id"`
	// Name is nil for rooms without an m.room.name event.
	Name               *string    `json:"name"`
	CanonicalAlias     *string    `json:"canonical_alias"`
	JoinedMembers      int        `json:"joined_members"`
	JoinedLocalMembers int        `json:"joined_local_members"`
	Version            string     `json:"version"`
	Creator            ref.UserID `json:"creator"`
	Encryption         *string    `json:"encryption"`
	Federatable        bool       `json:"federatable"`
	Public             bool       `json:"public"`
	JoinRules          *string    `json:"join_rules"`
	GuestAccess        *string    `json:"guest_access"`
	HistoryVisibility  *string    `json:"history_visibility"`
	StateEvents        int        `json:"state_events"`
	RoomType           *string    `json:"room_type"`
}

// RoomDetails is the full description of one room.
type RoomDetails struct {
	Room
	Topic              *string `json:"topic"`
	Avatar             *string `json:"avatar"`
	JoinedLocalDevices int     `json:"joined_local_devices"`
	Forgotten          bool    `json:"forgotten,omitempty"`
}

// Rooms is one page of the room listing.
type Rooms struct {
	Rooms      []Room `json:"rooms"`
	Offset     int    `json:"offset"`
	TotalRooms int    `json:"total_rooms"`
	NextBatch  *int   `json:"next_batch"`
	PrevBatch  *int   `json:"prev_batch"`
}

// RoomsQuery filters, sorts, and pages the room listing.
type RoomsQuery struct {
	From    *int
	Limit   *int
	OrderBy RoomOrder
	Dir     Direction
	// SearchTerm matches room names, canonical aliases and room IDs.
	SearchTerm *string
}

func (q RoomsQuery) values() *queryEncoder {
	return newQuery().
		optionalInt("from", q.From).
		optionalInt("limit", q.Limit).
		optionalText("order_by", string(q.OrderBy)).
		optionalText("dir", string(q.Dir)).
		optionalString("search_term", q.SearchTerm)
}

// RoomMembers lists the joined members of a room.
type RoomMembers struct {
	Members []ref.UserID `json:"members"`
	Total   int          `json:"total"`
}

// RoomMessagesQuery pages through a room's timeline.
type RoomMessagesQuery struct {
	// From is the pagination token to start from. Required.
	From  string
	To    *string
	Limit *int
	// Filter is a RoomEventFilter object, sent JSON-encoded.
	Filter json.RawMessage
	Dir    Direction
}

func (q RoomMessagesQuery) values() *queryEncoder {
	return newQuery().
		set("from", q.From).
		optionalString("to", q.To).
		optionalInt("limit", q.Limit).
		optionalText("filter", compactJSON(q.Filter)).
		optionalText("dir", string(q.Dir))
}

// RoomMessages is one page of a room's timeline.
type RoomMessages struct {
	Chunk []Event `json:"chunk"`
	Start string  `json:"start"`
	End   *string `json:"end"`
	State []Event `json:"state,omitempty"`
}

// TimestampToEventQuery locates the event closest to an instant.
type TimestampToEventQuery struct {
	Timestamp time.Time
	// Dir chooses the closest event after (Forward) or before (Backward)
	// the instant.
	Dir Direction
}

// EventContextQuery limits the events returned around an event.
type EventContextQuery struct {
	Limit  *int
	Filter json.RawMessage
}

// EventContext is an event with the timeline around it.
type EventContext struct {
	Start        string  `json:"start"`
	End          *string `json:"end"`
	Event        *Event  `json:"event,omitempty"`
	EventsBefore []Event `json:"events_before"`
	EventsAfter  []Event `json:"events_after"`
	State        []Event `json:"state"`
}

// ForwardExtremity is one forward extremity of a room's event graph.
type ForwardExtremity struct {
	EventID    ref.EventID `json:"event_id"`
	StateGroup int64       `json:"state_group"`
	Depth      int64       `json:"depth"`
	ReceivedTS Timestamp   `json:"received_ts"`
}

// ForwardExtremities lists a room's forward extremities.
type ForwardExtremities struct {
	Count   int                `json:"count"`
	Results []ForwardExtremity `json:"results"`
}

// RoomBlock is a room's block status.
type RoomBlock struct {
	Blocked bool `json:"blocked"`
	// UserID is the admin who blocked the room, when blocked.
	UserID *ref.UserID `json:"user_id,omitempty"`
}

// Rooms lists rooms known to the server.
func (c *Client) Rooms(ctx context.Context, query RoomsQuery) (Rooms, error) {
	return call[Rooms](ctx, c, get(V1, "/rooms").withQuery(query.values().encode()))
}

// Room returns the details of one room.
func (c *Client) Room(ctx context.Context, roomID ref.RoomID) (RoomDetails, error) {
	return call[RoomDetails](ctx, c, get(V1, roomPath(roomID)))
}

// RoomMembers lists the joined members of a room.
func (c *Client) RoomMembers(ctx context.Context, roomID ref.RoomID) (RoomMembers, error) {
	return call[RoomMembers](ctx, c, get(V1, roomPath(roomID)+"/members"))
}

// RoomState returns the current state events of a room.
func (c *Client) RoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error) {
	type response struct {
		State []Event `json:"state"`
	}
	return project(ctx, c, get(V1, roomPath(roomID)+"/state"),
		func(r response) []Event { return r.State })
}

// RoomMessages pages through a room's timeline.
func (c *Client) RoomMessages(ctx context.Context, roomID ref.RoomID, query RoomMessagesQuery) (RoomMessages, error) {
	return call[RoomMessages](ctx, c, get(V1, roomPath(roomID)+"/messages").withQuery(query.values().encode()))
}

// TimestampToEvent returns the ID of the event closest to the query's
// instant. The result is the zero EventID when the room has no event in
// that direction.
func (c *Client) TimestampToEvent(ctx context.Context, roomID ref.RoomID, query TimestampToEventQuery) (ref.EventID, error) {
	type response struct {
		EventID ref.EventID `json:"event_id,omitempty"`
	}
	values := newQuery().
		timestamp("ts", query.Timestamp).
		optionalText("dir", string(query.Dir)).
		encode()
	return project(ctx, c, get(V1, roomPath(roomID)+"/timestamp_to_event").withQuery(values),
		func(r response) ref.EventID { return r.EventID })
}

// EventContext returns an event with the events before and after it and
// the room state at that point.
func (c *Client) EventContext(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, query EventContextQuery) (EventContext, error) {
	values := newQuery().
		optionalInt("limit", query.Limit).
		optionalText("filter", compactJSON(query.Filter)).
		encode()
	path := roomPath(roomID) + "/context/" + escape(eventID.String())
	return call[EventContext](ctx, c, get(V1, path).withQuery(values))
}

// ForwardExtremities lists the forward extremities of a room.
func (c *Client) ForwardExtremities(ctx context.Context, roomID ref.RoomID) (ForwardExtremities, error) {
	return call[ForwardExtremities](ctx, c, get(V1, roomPath(roomID)+"/forward_extremities"))
}

// DeleteForwardExtremities removes all but the latest forward extremity
// and returns how many were deleted.
func (c *Client) DeleteForwardExtremities(ctx context.Context, roomID ref.RoomID) (int, error) {
	type response struct {
		Deleted int `json:"deleted"`
	}
	return project(ctx, c, del(V1, roomPath(roomID)+"/forward_extremities", nil),
		func(r response) int { return r.Deleted })
}

// MakeRoomAdmin grants the highest power level in a room to userID, or to
// the room's local user with the highest power level when userID is nil.
func (c *Client) MakeRoomAdmin(ctx context.Context, roomID ref.RoomID, userID *ref.UserID) error {
	var body any
	if userID != nil {
		body = struct {
			UserID ref.UserID `json:"user_id"`
		}{UserID: *userID}
	}
	_, err := call[empty](ctx, c, post(V1, roomPath(roomID)+"/make_room_admin", body))
	return err
}

// RoomBlocked returns whether a room is blocked.
func (c *Client) RoomBlocked(ctx context.Context, roomID ref.RoomID) (RoomBlock, error) {
	return call[RoomBlock](ctx, c, get(V1, roomPath(roomID)+"/block"))
}

// SetRoomBlocked blocks or unblocks a room and returns the new state.
// A blocked room cannot be joined by local users.
func (c *Client) SetRoomBlocked(ctx context.Context, roomID ref.RoomID, blocked bool) (bool, error) {
	type blockState struct {
		Block bool `json:"block"`
	}
	return project(ctx, c, put(V1, roomPath(roomID)+"/block", blockState{Block: blocked}),
		func(r blockState) bool { return r.Block })
}

// JoinUserToRoom force-joins a local user to a room the server is
// already in. Returns the ID of the joined room, which resolves an
// alias.
func (c *Client) JoinUserToRoom(ctx context.Context, room ref.RoomIDOrAlias, userID ref.UserID) (ref.RoomID, error) {
	type request struct {
		UserID ref.UserID `json:"user_id"`
	}
	type response struct {
		RoomID ref.RoomID `json:"room_id"`
	}
	return project(ctx, c, post(V1, "/join/"+escape(room.String()), request{UserID: userID}),
		func(r response) ref.RoomID { return r.RoomID })
}

func roomPath(roomID ref.RoomID) string {
	return "/rooms/" + escape(roomID.String())
}

// compactJSON returns raw as a compact single-line string for use as a
// query value, or "" when raw is empty.
func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buffer bytes.Buffer
	if err := json.Compact(&buffer, raw); err != nil {
		return string(raw)
	}
	return buffer.String()
}
