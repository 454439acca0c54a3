// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// EventReport is a user's report of an event to the server admins.
type EventReport struct {
	ID         int64      `json:"id"`
	ReceivedTS Timestamp  `json:"received_ts"`
	RoomID     ref.RoomID `json:"room_id"`
	// Name is the room name at the time of the report; empty for unnamed
	// rooms.
	Name           *string     `json:"name"`
	EventID        ref.EventID `json:"event_id"`
	UserID         ref.UserID  `json:"user_id"`
	Reason         *string     `json:"reason"`
	Score          *int        `json:"score"`
	Sender         ref.UserID  `json:"sender"`
	CanonicalAlias *string     `json:"canonical_alias"`
}

// EventReportDetails is a single report with the reported event.
type EventReportDetails struct {
	EventReport
	EventJSON json.RawMessage `json:"event_json"`
}

// EventReports is one page of event reports.
type EventReports struct {
	EventReports []EventReport `json:"event_reports"`
	// NextToken is the From value of the next page; nil on the last page.
	NextToken *int64 `json:"next_token"`
	Total     int64  `json:"total"`
}

// EventReportsQuery filters and pages the report listing.
type EventReportsQuery struct {
	Limit *int
	From  *int64
	Dir   Direction
	// UserID restricts to reports filed by users whose ID contains this.
	UserID *string
	// RoomID restricts to reports in rooms whose ID contains this.
	RoomID *string
}

func (q EventReportsQuery) values() *queryEncoder {
	return newQuery().
		optionalInt("limit", q.Limit).
		optionalInt64("from", q.From).
		optionalText("dir", string(q.Dir)).
		optionalString("user_id", q.UserID).
		optionalString("room_id", q.RoomID)
}

// EventReports lists event reports, newest first by default.
func (c *Client) EventReports(ctx context.Context, query EventReportsQuery) (EventReports, error) {
	return call[EventReports](ctx, c, get(V1, "/event_reports").withQuery(query.values().encode()))
}

// EventReport returns one report with the reported event's JSON.
func (c *Client) EventReport(ctx context.Context, reportID int64) (EventReportDetails, error) {
	return call[EventReportDetails](ctx, c, get(V1, "/event_reports/"+strconv.FormatInt(reportID, 10)))
}

// DeleteEventReport deletes a report. The reported event is untouched.
func (c *Client) DeleteEventReport(ctx context.Context, reportID int64) error {
	_, err := call[empty](ctx, c, del(V1, "/event_reports/"+strconv.FormatInt(reportID, 10), nil))
	return err
}
