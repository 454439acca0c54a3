// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/synapse"
)

// PurgeHistoryCommand returns the "purge-history" command group.
func PurgeHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:    "purge-history",
		Summary: "Purge old events from a room",
		Description: `Delete a room's events older than a point in history from the
database. The most recent event of the room is never purged. Purges run
in the background; follow them with "purge-history status".`,
		Subcommands: []*cli.Command{
			purgeStartCommand(clock.Real()),
			purgeStatusCommand(),
		},
	}
}

type purgeStartParams struct {
	cli.AdminFlags
	Event             string        `json:"event"               flag:"event"               desc:"purge events before this event"`
	Before            string        `json:"before"              flag:"before"              desc:"purge events before this instant (RFC 3339, YYYY-MM-DD, epoch ms, or 90d for 90 days ago)"`
	DeleteLocalEvents *bool         `json:"delete_local_events" flag:"delete-local-events" desc:"also purge events sent by local users"`
	Wait              bool          `json:"wait"                flag:"wait"                desc:"wait for the purge to finish"`
	PollInterval      time.Duration `json:"poll_interval"       flag:"poll-interval"       desc:"status polling interval with --wait" default:"2s"`
}

type purgeResult struct {
	PurgeID string                      `json:"purge_id"`
	Status  *synapse.PurgeHistoryStatus `json:"status,omitempty"`
}

func purgeStartCommand(clk clock.Clock) *cli.Command {
	var params purgeStartParams
	const usage = "synadmin purge-history start <room-id> (--event <event-id> | --before <time>) [flags]"

	return &cli.Command{
		Name:    "start",
		Summary: "Start purging a room's history",
		Description: `Start purging the events of a room that precede --event or --before.
Events sent by local users are kept unless --delete-local-events is
given. Prints the purge ID.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Purge everything older than 90 days and wait",
				Command:     "synadmin purge-history start '!abc:example.org' --before 90d --wait",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("start", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			if (params.Event == "") == (params.Before == "") {
				return cli.Validation("exactly one of --event and --before is required")
			}
			request := synapse.PurgeHistoryRequest{DeleteLocalEvents: params.DeleteLocalEvents}
			if params.Event != "" {
				eventID, err := cli.ParseEventID(params.Event)
				if err != nil {
					return err
				}
				request.EventID = eventID
			} else {
				before, err := cli.ParseTime(params.Before, clk.Now())
				if err != nil {
					return cli.Validation("--before: %w", err)
				}
				timestamp := synapse.NewTimestamp(before)
				request.PurgeUpToTS = &timestamp
			}
			if params.Wait && params.PollInterval <= 0 {
				return cli.Validation("--poll-interval must be positive")
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			logger = logger.With("command", "purge-history/start", "room_id", roomID.String())

			purgeID, err := connection.PurgeHistory(ctx, roomID, request)
			if err != nil {
				return cli.FromSynapse(err, "starting history purge")
			}
			logger.Info("history purge started", "purge_id", purgeID)

			result := purgeResult{PurgeID: purgeID}
			if params.Wait {
				var last synapse.PurgeHistoryStatus
				err := cli.Poll(ctx, clk, params.PollInterval, func(ctx context.Context) (bool, error) {
					status, err := connection.PurgeHistoryStatus(ctx, purgeID)
					if err != nil {
						return false, cli.FromSynapse(err, "checking purge status")
					}
					if status.Status != last.Status {
						logger.Info("history purge progress", "purge_id", purgeID, "status", string(status.Status))
					}
					last = status
					return status.Status.Done(), nil
				})
				if err != nil {
					return err
				}
				result.Status = &last
			}

			if err := params.Emit(result, func(w io.Writer) error {
				if result.Status == nil {
					_, err := fmt.Fprintln(w, purgeID)
					return err
				}
				return writePurgeStatus(w, purgeID, *result.Status)
			}); err != nil {
				return err
			}
			if result.Status != nil && result.Status.Status == synapse.PurgeFailed {
				return cli.Internal("history purge %s failed: %s", purgeID, cli.OrDash(result.Status.Error))
			}
			return nil
		},
	}
}

func purgeStatusCommand() *cli.Command {
	var params roomParams
	const usage = "synadmin purge-history status <purge-id> [flags]"

	return &cli.Command{
		Name:    "status",
		Summary: "Show the progress of a history purge",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("status", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			status, err := connection.PurgeHistoryStatus(ctx, args[0])
			if err != nil {
				return cli.FromSynapse(err, "fetching purge status")
			}
			return params.Emit(status, func(w io.Writer) error {
				return writePurgeStatus(w, args[0], status)
			})
		},
	}
}

func writePurgeStatus(w io.Writer, purgeID string, status synapse.PurgeHistoryStatus) error {
	fields := []cli.Field{
		{Name: "Purge ID", Value: purgeID},
		{Name: "Status", Value: string(status.Status)},
	}
	if status.Error != nil {
		fields = append(fields, cli.Field{Name: "Error", Value: *status.Error})
	}
	return cli.WriteFields(w, fields)
}
