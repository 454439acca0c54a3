// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"
	"time"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// MediaStatisticsOrder is the sort key of the per-user media statistics.
type MediaStatisticsOrder string

const (
	MediaOrderUserID      MediaStatisticsOrder = "user_id"
	MediaOrderDisplayName MediaStatisticsOrder = "displayname"
	MediaOrderMediaLength MediaStatisticsOrder = "media_length"
	MediaOrderMediaCount  MediaStatisticsOrder = "media_count"
)

// MediaStatisticsOrders lists every MediaStatisticsOrder.
var MediaStatisticsOrders = []MediaStatisticsOrder{
	MediaOrderUserID, MediaOrderDisplayName, MediaOrderMediaLength, MediaOrderMediaCount,
}

// MediaStatisticsQuery filters, sorts, and pages the per-user media
// statistics.
type MediaStatisticsQuery struct {
	Limit   *int
	From    *int
	OrderBy MediaStatisticsOrder
	// FromTS and UntilTS restrict to media uploaded in that window.
	FromTS     *time.Time
	UntilTS    *time.Time
	SearchTerm *string
	Dir        Direction
}

func (q MediaStatisticsQuery) values() *queryEncoder {
	return newQuery().
		optionalInt("limit", q.Limit).
		optionalInt("from", q.From).
		optionalText("order_by", string(q.OrderBy)).
		optionalTimestamp("from_ts", q.FromTS).
		optionalTimestamp("until_ts", q.UntilTS).
		optionalString("search_term", q.SearchTerm).
		optionalText("dir", string(q.Dir))
}

// UserMediaStatistics is one user's local media usage.
type UserMediaStatistics struct {
	DisplayName *string    `json:"displayname"`
	MediaCount  int64      `json:"media_count"`
	MediaLength int64      `json:"media_length"`
	UserID      ref.UserID `json:"user_id"`
}

// MediaStatistics is one page of per-user media statistics.
type MediaStatistics struct {
	Users     []UserMediaStatistics `json:"users"`
	NextToken *int64                `json:"next_token"`
	Total     int64                 `json:"total"`
}

// RoomDatabaseSize is the database footprint of one room.
type RoomDatabaseSize struct {
	RoomID        ref.RoomID `json:"room_id"`
	EstimatedSize int64      `json:"estimated_size"`
}

// UserMediaStatistics reports local media usage per user.
func (c *Client) UserMediaStatistics(ctx context.Context, query MediaStatisticsQuery) (MediaStatistics, error) {
	return call[MediaStatistics](ctx, c, get(V1, "/statistics/users/media").withQuery(query.values().encode()))
}

// DatabaseRoomStatistics lists the rooms with the largest database
// footprint. Only available on PostgreSQL-backed servers.
func (c *Client) DatabaseRoomStatistics(ctx context.Context) ([]RoomDatabaseSize, error) {
	type response struct {
		Rooms []RoomDatabaseSize `json:"rooms"`
	}
	return project(ctx, c, get(V1, "/statistics/database/rooms"),
		func(r response) []RoomDatabaseSize { return r.Rooms })
}
