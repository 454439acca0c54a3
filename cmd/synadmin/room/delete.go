// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/lib/ref"
	"github.com/bureau-foundation/synadmin/synapse"
)

type deleteParams struct {
	cli.AdminFlags
	NewRoomUser  string        `json:"new_room_user_id" flag:"new-room-user" desc:"create a replacement room owned by this local user and move local members into it"`
	RoomName     *string       `json:"room_name"        flag:"room-name"     desc:"name of the replacement room"`
	Message      *string       `json:"message"          flag:"message"       desc:"message posted in the replacement room"`
	Block        *bool         `json:"block"            flag:"block"         desc:"prevent local users from joining the room in future"`
	Purge        *bool         `json:"purge"            flag:"purge"         desc:"remove the room's events from the database (server default true)"`
	ForcePurge   *bool         `json:"force_purge"      flag:"force-purge"   desc:"purge even if local users could not be removed"`
	Wait         bool          `json:"wait"             flag:"wait"          desc:"wait for the deletion to finish"`
	PollInterval time.Duration `json:"poll_interval"    flag:"poll-interval" desc:"status polling interval with --wait" default:"2s"`
}

// deleteResult is the output of room delete.
type deleteResult struct {
	DeleteID string                `json:"delete_id"`
	Status   *synapse.DeleteStatus `json:"status,omitempty"`
}

func deleteCommand(clk clock.Clock) *cli.Command {
	var params deleteParams
	const usage = "synadmin room delete <room-id> [flags]"

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a room",
		Description: `Remove all local users from a room and delete it from the database.
Deletion runs in the background on the server; the delete ID it
returns can be followed with "synadmin room delete-status", or pass
--wait to follow it here.

With --new-room-user, local members are moved to a new room owned by
that user, where --message is posted.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Delete and block a spam room, waiting for completion",
				Command:     "synadmin room delete '!spam:example.org' --block --wait",
			},
			{
				Description: "Replace a room with an announcement room",
				Command:     "synadmin room delete '!old:example.org' --new-room-user '@admin:example.org' --room-name 'Closed' --message 'This room was closed.'",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			request := synapse.DeleteRoomRequest{
				RoomName:   params.RoomName,
				Message:    params.Message,
				Block:      params.Block,
				Purge:      params.Purge,
				ForcePurge: params.ForcePurge,
			}
			if params.NewRoomUser != "" {
				userID, err := cli.ParseUserID(params.NewRoomUser)
				if err != nil {
					return err
				}
				request.NewRoomUserID = &userID
			}
			if params.Wait && params.PollInterval <= 0 {
				return cli.Validation("--poll-interval must be positive")
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			logger = logger.With("command", "room/delete", "room_id", roomID.String())

			deleteID, err := connection.DeleteRoom(ctx, roomID, request)
			if err != nil {
				return cli.FromSynapse(err, "deleting room")
			}
			logger.Info("room deletion started", "delete_id", deleteID)

			result := deleteResult{DeleteID: deleteID}
			if params.Wait {
				status, err := waitForDeletion(ctx, connection, clk, params.PollInterval, deleteID, logger)
				if err != nil {
					return err
				}
				result.Status = &status
			}

			if err := params.Emit(result, func(w io.Writer) error {
				if result.Status == nil {
					_, err := fmt.Fprintln(w, deleteID)
					return err
				}
				return writeDeleteStatus(w, *result.Status)
			}); err != nil {
				return err
			}
			if result.Status != nil && result.Status.Status == synapse.PurgeFailed {
				return cli.Internal("room deletion %s failed: %s", deleteID, cli.OrDash(result.Status.Error))
			}
			return nil
		},
	}
}

// waitForDeletion polls the deletion until the server reports it
// complete or failed.
func waitForDeletion(ctx context.Context, connection *cli.Connection, clk clock.Clock, interval time.Duration, deleteID string, logger *slog.Logger) (synapse.DeleteStatus, error) {
	var last synapse.DeleteStatus
	err := cli.Poll(ctx, clk, interval, func(ctx context.Context) (bool, error) {
		status, err := connection.DeleteStatus(ctx, deleteID)
		if err != nil {
			return false, cli.FromSynapse(err, "checking deletion status")
		}
		if status.Status != last.Status {
			logger.Info("room deletion progress", "delete_id", deleteID, "status", string(status.Status))
		}
		last = status
		return status.Status.Done(), nil
	})
	return last, err
}

type deleteStatusParams struct {
	cli.AdminFlags
	Room string `json:"room" flag:"room" desc:"list every deletion of this room instead of one delete ID"`
}

func deleteStatusCommand() *cli.Command {
	var params deleteStatusParams
	const usage = "synadmin room delete-status (<delete-id> | --room <room-id>) [flags]"

	return &cli.Command{
		Name:    "delete-status",
		Summary: "Show the progress of room deletions",
		Description: `Show the status of a room deletion by its delete ID, or of every
deletion of a room with --room. The server forgets finished deletions
after a while.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete-status", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			var roomID ref.RoomID
			if params.Room != "" {
				if err := cli.ExactArgs(args, 0, usage); err != nil {
					return err
				}
				parsed, err := cli.ParseRoomID(params.Room)
				if err != nil {
					return err
				}
				roomID = parsed
			} else if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}

			if !roomID.IsZero() {
				statuses, err := connection.RoomDeleteStatus(ctx, roomID)
				if err != nil {
					return cli.FromSynapse(err, "fetching room deletion status")
				}
				return params.Emit(statuses, func(w io.Writer) error {
					rows := make([][]string, 0, len(statuses))
					for _, status := range statuses {
						rows = append(rows, []string{cli.OrDash(status.DeleteID), string(status.Status), cli.OrDash(status.Error)})
					}
					return params.Table(w, []string{"DELETE ID", "STATUS", "ERROR"}, rows)
				})
			}

			status, err := connection.DeleteStatus(ctx, args[0])
			if err != nil {
				return cli.FromSynapse(err, "fetching deletion status")
			}
			return params.Emit(status, func(w io.Writer) error {
				return writeDeleteStatus(w, status)
			})
		},
	}
}

func writeDeleteStatus(w io.Writer, status synapse.DeleteStatus) error {
	fields := []cli.Field{{Name: "Status", Value: string(status.Status)}}
	if status.DeleteID != nil {
		fields = append([]cli.Field{{Name: "Delete ID", Value: *status.DeleteID}}, fields...)
	}
	if status.RoomID != nil {
		fields = append(fields, cli.Field{Name: "Room ID", Value: status.RoomID.String()})
	}
	if status.Error != nil {
		fields = append(fields, cli.Field{Name: "Error", Value: *status.Error})
	}
	if shutdown := status.ShutdownRoom; shutdown != nil {
		fields = append(fields,
			cli.Field{Name: "Kicked users", Value: joinUsers(shutdown.KickedUsers)},
			cli.Field{Name: "Failed to kick", Value: joinUsers(shutdown.FailedToKickUsers)},
			cli.Field{Name: "Local aliases", Value: strings.Join(shutdown.LocalAliases, ", ")},
		)
		if shutdown.NewRoomID != nil {
			fields = append(fields, cli.Field{Name: "New room", Value: shutdown.NewRoomID.String()})
		}
	}
	return cli.WriteFields(w, fields)
}

func joinUsers(users []ref.UserID) string {
	if len(users) == 0 {
		return "-"
	}
	names := make([]string, len(users))
	for index, user := range users {
		names[index] = user.String()
	}
	return strings.Join(names, ", ")
}
