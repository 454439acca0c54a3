// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/ref"
	"github.com/bureau-foundation/synadmin/synapse"
)

// blockResult is the output of room block and unblock.
type blockResult struct {
	RoomID  string `json:"room_id"`
	Blocked bool   `json:"blocked"`
}

func blockCommand(block bool) *cli.Command {
	var params roomParams
	name, summary := "block", "Block a room"
	description := `Block a room so local users cannot join it. The room does not need to
be known to the homeserver; blocking an unknown room prevents it being
joined in future.`
	if !block {
		name, summary = "unblock", "Unblock a room"
		description = "Lift a block so local users can join the room again."
	}
	usage := "synadmin room " + name + " <room-id> [flags]"

	return &cli.Command{
		Name:        name,
		Summary:     summary,
		Description: description,
		Usage:       usage,
		Flags:       func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			blocked, err := connection.SetRoomBlocked(ctx, roomID, block)
			if err != nil {
				return cli.FromSynapse(err, name+" room")
			}
			logger.Info("room block updated", "room_id", roomID.String(), "blocked", blocked)

			return params.Emit(blockResult{RoomID: roomID.String(), Blocked: blocked}, func(w io.Writer) error {
				state := "blocked"
				if !blocked {
					state = "not blocked"
				}
				_, err := fmt.Fprintf(w, "%s is %s\n", roomID, state)
				return err
			})
		},
	}
}

func blockStatusCommand() *cli.Command {
	return roomCommand("block-status", "Show whether a room is blocked",
		"Show whether a room is blocked, and by which admin.",
		func(ctx context.Context, connection *cli.Connection, roomID ref.RoomID) (synapse.RoomBlock, error) {
			return connection.RoomBlocked(ctx, roomID)
		},
		"fetching block status",
		func(w io.Writer, _ *cli.OutputConfig, block synapse.RoomBlock) error {
			by := "-"
			if block.UserID != nil {
				by = block.UserID.String()
			}
			return cli.WriteFields(w, []cli.Field{
				{Name: "Blocked", Value: strconv.FormatBool(block.Blocked)},
				{Name: "Blocked by", Value: by},
			})
		})
}

type makeAdminParams struct {
	cli.AdminFlags
	User string `json:"user" flag:"user" desc:"local user to promote (default: the local member with the highest power level)"`
}

func makeAdminCommand() *cli.Command {
	var params makeAdminParams
	const usage = "synadmin room make-admin <room-id> [--user <user-id>] [flags]"

	return &cli.Command{
		Name:    "make-admin",
		Summary: "Grant a local user the highest power level in a room",
		Description: `Grant a local user the highest power level in a room, using the power
of the room's local member that already holds it. Recovers rooms whose
admins have left.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Command: "synadmin room make-admin '!abc:example.org' --user '@alice:example.org'",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("make-admin", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			var userID *ref.UserID
			if params.User != "" {
				parsed, err := cli.ParseUserID(params.User)
				if err != nil {
					return err
				}
				userID = &parsed
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.MakeRoomAdmin(ctx, roomID, userID); err != nil {
				return cli.FromSynapse(err, "making room admin")
			}

			result := struct {
				RoomID string `json:"room_id"`
				UserID string `json:"user_id,omitempty"`
			}{RoomID: roomID.String(), UserID: params.User}
			return params.Emit(result, func(w io.Writer) error {
				who := params.User
				if who == "" {
					who = "the highest-ranked local member"
				}
				_, err := fmt.Fprintf(w, "Granted room admin in %s to %s\n", roomID, who)
				return err
			})
		},
	}
}

type joinParams struct {
	cli.AdminFlags
	User string `json:"user" flag:"user" desc:"local user to join (required)"`
}

func joinCommand() *cli.Command {
	var params joinParams
	const usage = "synadmin room join <room-id-or-alias> --user <user-id> [flags]"

	return &cli.Command{
		Name:    "join",
		Summary: "Force a local user into a room",
		Description: `Join a local user to a room without an invite. The homeserver must
already be in the room, and the user must be allowed to join by the
room's join rules or be invited by a local member.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Command: "synadmin room join '#lobby:example.org' --user '@alice:example.org'",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("join", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			room, err := ref.ParseRoomIDOrAlias(args[0])
			if err != nil {
				return cli.Validation("invalid room: %w", err)
			}
			if params.User == "" {
				return cli.Validation("--user is required")
			}
			userID, err := cli.ParseUserID(params.User)
			if err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			roomID, err := connection.JoinUserToRoom(ctx, room, userID)
			if err != nil {
				return cli.FromSynapse(err, "joining user to room")
			}

			result := struct {
				RoomID string `json:"room_id"`
				UserID string `json:"user_id"`
			}{RoomID: roomID.String(), UserID: userID.String()}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Joined %s to %s\n", userID, roomID)
				return err
			})
		},
	}
}

type extremitiesParams struct {
	cli.AdminFlags
	Delete bool `json:"delete" flag:"delete" desc:"delete all but the latest forward extremity"`
}

func extremitiesCommand() *cli.Command {
	var params extremitiesParams
	const usage = "synadmin room extremities <room-id> [--delete] [flags]"

	return &cli.Command{
		Name:    "extremities",
		Summary: "List or prune a room's forward extremities",
		Description: `List the forward extremities of a room's event graph. Rooms with many
extremities are slow to process; --delete keeps only the latest.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("extremities", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}

			if params.Delete {
				deleted, err := connection.DeleteForwardExtremities(ctx, roomID)
				if err != nil {
					return cli.FromSynapse(err, "deleting forward extremities")
				}
				result := struct {
					Deleted int `json:"deleted"`
				}{Deleted: deleted}
				return params.Emit(result, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted %d forward extremities\n", deleted)
					return err
				})
			}

			extremities, err := connection.ForwardExtremities(ctx, roomID)
			if err != nil {
				return cli.FromSynapse(err, "listing forward extremities")
			}
			return params.Emit(extremities, func(w io.Writer) error {
				rows := make([][]string, 0, len(extremities.Results))
				for _, extremity := range extremities.Results {
					rows = append(rows, []string{
						extremity.EventID.String(),
						strconv.FormatInt(extremity.Depth, 10),
						strconv.FormatInt(extremity.StateGroup, 10),
						cli.FormatTime(extremity.ReceivedTS.Time),
					})
				}
				return params.Table(w, []string{"EVENT ID", "DEPTH", "STATE GROUP", "RECEIVED"}, rows)
			})
		},
	}
}
