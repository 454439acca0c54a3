// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import "context"

// BackgroundJob names a background update that can be started on demand.
type BackgroundJob string

const (
	// JobPopulateStatsProcessRooms recalculates room statistics.
	JobPopulateStatsProcessRooms BackgroundJob = "populate_stats_process_rooms"
	// JobRegenerateDirectory rebuilds the user directory.
	JobRegenerateDirectory BackgroundJob = "regenerate_directory"
)

// BackgroundJobs lists every BackgroundJob.
var BackgroundJobs = []BackgroundJob{JobPopulateStatsProcessRooms, JobRegenerateDirectory}

// BackgroundUpdate is the progress of one running background update.
type BackgroundUpdate struct {
	Name              string  `json:"name"`
	TotalItemCount    int64   `json:"total_item_count"`
	TotalDurationMS   float64 `json:"total_duration_ms"`
	AverageItemsPerMS float64 `json:"average_items_per_ms"`
}

// BackgroundUpdateStatus reports whether background updates run and
// which are in progress, keyed by database name.
type BackgroundUpdateStatus struct {
	Enabled        bool                          `json:"enabled"`
	CurrentUpdates map[string][]BackgroundUpdate `json:"current_updates"`
}

type backgroundEnabled struct {
	Enabled bool `json:"enabled"`
}

// BackgroundUpdatesEnabled reports whether background updates are
// enabled.
func (c *Client) BackgroundUpdatesEnabled(ctx context.Context) (bool, error) {
	return project(ctx, c, get(V1, "/background_updates/enabled"),
		func(r backgroundEnabled) bool { return r.Enabled })
}

// SetBackgroundUpdatesEnabled pauses or resumes background updates and
// returns the new state. The setting does not survive a restart.
func (c *Client) SetBackgroundUpdatesEnabled(ctx context.Context, enabled bool) (bool, error) {
	return project(ctx, c, post(V1, "/background_updates/enabled", backgroundEnabled{Enabled: enabled}),
		func(r backgroundEnabled) bool { return r.Enabled })
}

// BackgroundUpdateStatus returns the running background updates.
func (c *Client) BackgroundUpdateStatus(ctx context.Context) (BackgroundUpdateStatus, error) {
	return call[BackgroundUpdateStatus](ctx, c, get(V1, "/background_updates/status"))
}

// StartBackgroundUpdateJob schedules a background update. Fails with
// M_INVALID_PARAM when the job is already queued.
func (c *Client) StartBackgroundUpdateJob(ctx context.Context, job BackgroundJob) error {
	body := struct {
		JobName BackgroundJob `json:"job_name"`
	}{JobName: job}
	_, err := call[empty](ctx, c, post(V1, "/background_updates/start_job", body))
	return err
}
