// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// ServerNotice is a message delivered to a user in their server notices
// room. Content is any JSON-encodable event content; TextNotice and
// HTMLNotice build the common m.room.message form.
type ServerNotice struct {
	UserID  ref.UserID `json:"user_id"`
	Content any        `json:"content"`
	// Type is the event type; the server defaults to m.room.message.
	Type *string `json:"type,omitempty"`
	// StateKey makes the notice a state event.
	StateKey *string `json:"state_key,omitempty"`
}

// MessageContent is m.room.message content with optional HTML.
type MessageContent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// TextNotice returns plain m.text content.
func TextNotice(body string) MessageContent {
	return MessageContent{MsgType: "m.text", Body: body}
}

// HTMLNotice returns m.text content with an HTML rendering. body is the
// plain-text fallback.
func HTMLNotice(body, html string) MessageContent {
	return MessageContent{
		MsgType:       "m.text",
		Body:          body,
		Format:        "org.matrix.custom.html",
		FormattedBody: html,
	}
}

type noticeResponse struct {
	EventID ref.EventID `json:"event_id"`
}

// SendServerNotice sends a notice and returns the event ID. Requires
// server notices to be enabled in the homeserver configuration.
func (c *Client) SendServerNotice(ctx context.Context, notice ServerNotice) (ref.EventID, error) {
	return project(ctx, c, post(V1, "/send_server_notice", notice),
		func(r noticeResponse) ref.EventID { return r.EventID })
}

// UpdateServerNotice sends a notice idempotently: repeating a call with
// the same transaction ID returns the original event instead of sending
// a second notice.
func (c *Client) UpdateServerNotice(ctx context.Context, transactionID string, notice ServerNotice) (ref.EventID, error) {
	return project(ctx, c, put(V1, "/send_server_notice/"+escape(transactionID), notice),
		func(r noticeResponse) ref.EventID { return r.EventID })
}
