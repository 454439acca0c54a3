// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// PurgeHistoryRequest selects the history to purge. With neither EventID
// nor PurgeUpToTS set, the server rejects the request.
type PurgeHistoryRequest struct {
	// EventID purges events before this event.
	EventID ref.EventID `json:"-"`
	// PurgeUpToTS purges events before this instant. Ignored by the
	// server when EventID is set.
	PurgeUpToTS *Timestamp `json:"purge_up_to_ts,omitempty"`
	// DeleteLocalEvents also purges events sent by local users.
	DeleteLocalEvents *bool `json:"delete_local_events,omitempty"`
}

// PurgeHistoryStatus is the state of a history purge.
type PurgeHistoryStatus struct {
	Status PurgeStatus `json:"status"`
	Error  *string     `json:"error,omitempty"`
}

// PurgeHistory starts purging old events from a room and returns the
// purge ID. Progress is reported by PurgeHistoryStatus.
func (c *Client) PurgeHistory(ctx context.Context, roomID ref.RoomID, request PurgeHistoryRequest) (string, error) {
	type response struct {
		PurgeID string `json:"purge_id"`
	}
	path := "/purge_history/" + escape(roomID.String())
	if !request.EventID.IsZero() {
		path += "/" + escape(request.EventID.String())
	}
	return project(ctx, c, post(V1, path, request),
		func(r response) string { return r.PurgeID })
}

// PurgeHistoryStatus returns the state of a history purge.
func (c *Client) PurgeHistoryStatus(ctx context.Context, purgeID string) (PurgeHistoryStatus, error) {
	return call[PurgeHistoryStatus](ctx, c, get(V1, "/purge_history_status/"+escape(purgeID)))
}
