// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/lib/ref"
	"github.com/bureau-foundation/synadmin/synapse"
)

// Command returns the "room" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "room",
		Summary: "Inspect and administer rooms",
		Description: `List, inspect, block, and delete rooms known to the homeserver.

Room arguments are room IDs (!opaque:server). "room join" also accepts
a room alias (#alias:server).`,
		Subcommands: []*cli.Command{
			listCommand(),
			showCommand(),
			membersCommand(),
			stateCommand(),
			messagesCommand(),
			contextCommand(),
			findEventCommand(),
			blockCommand(true),
			blockCommand(false),
			blockStatusCommand(),
			makeAdminCommand(),
			joinCommand(),
			extremitiesCommand(),
			deleteCommand(clock.Real()),
			deleteStatusCommand(),
		},
	}
}

type listParams struct {
	cli.AdminFlags
	From    *int    `json:"from"     flag:"from"     desc:"offset to start from (the previous page's next_batch)"`
	Limit   *int    `json:"limit"    flag:"limit"    desc:"maximum rooms to return (server default 100)"`
	OrderBy string  `json:"order_by" flag:"order-by" desc:"sort key (name, joined_members, state_events, ...)"`
	Dir     string  `json:"dir"      flag:"dir"      desc:"sort direction: f or b"`
	Search  *string `json:"search"   flag:"search"   desc:"match room names, canonical aliases, and room IDs"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List rooms",
		Description: `List the rooms known to the homeserver, one page at a time.

When more rooms remain, the offset of the next page is printed to
stderr; pass it back with --from.`,
		Usage: "synadmin room list [flags]",
		Examples: []cli.Example{
			{
				Description: "The ten largest rooms",
				Command:     "synadmin room list --order-by joined_members --dir b --limit 10",
			},
			{
				Description: "Find rooms by name",
				Command:     "synadmin room list --search lobby --json",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, "synadmin room list [flags]"); err != nil {
				return err
			}
			orderBy, err := parseRoomOrder(params.OrderBy)
			if err != nil {
				return err
			}
			direction, err := cli.ParseDirection(params.Dir)
			if err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			rooms, err := connection.Rooms(ctx, synapse.RoomsQuery{
				From:       params.From,
				Limit:      params.Limit,
				OrderBy:    orderBy,
				Dir:        direction,
				SearchTerm: params.Search,
			})
			if err != nil {
				return cli.FromSynapse(err, "listing rooms")
			}

			return params.Emit(rooms, func(w io.Writer) error {
				rows := make([][]string, 0, len(rooms.Rooms))
				for _, room := range rooms.Rooms {
					rows = append(rows, []string{
						room.RoomID.String(),
						cli.OrDash(room.Name),
						strconv.Itoa(room.JoinedMembers),
						strconv.Itoa(room.JoinedLocalMembers),
						room.Version,
						strconv.FormatBool(room.Public),
					})
				}
				if err := params.Table(w, []string{"ROOM ID", "NAME", "MEMBERS", "LOCAL", "VERSION", "PUBLIC"}, rows); err != nil {
					return err
				}
				if rooms.NextBatch != nil {
					fmt.Fprintf(os.Stderr, "%d of %d rooms; next page: --from %d\n",
						len(rooms.Rooms), rooms.TotalRooms, *rooms.NextBatch)
				}
				return nil
			})
		},
	}
}

func parseRoomOrder(raw string) (synapse.RoomOrder, error) {
	if raw == "" {
		return "", nil
	}
	for _, order := range synapse.RoomOrders {
		if string(order) == raw {
			return order, nil
		}
	}
	names := make([]string, len(synapse.RoomOrders))
	for index, order := range synapse.RoomOrders {
		names[index] = string(order)
	}
	return "", cli.Validation("--order-by must be one of %s, got %q", strings.Join(names, ", "), raw)
}

// roomParams is the params of commands that take one room ID and no
// flags of their own.
type roomParams struct {
	cli.AdminFlags
}

// roomCommand builds a command that takes a room ID and prints what
// fetch returns.
func roomCommand[T any](name, summary, description string, fetch func(context.Context, *cli.Connection, ref.RoomID) (T, error), action string, text func(io.Writer, *cli.OutputConfig, T) error) *cli.Command {
	var params roomParams
	usage := "synadmin room " + name + " <room-id> [flags]"

	return &cli.Command{
		Name:        name,
		Summary:     summary,
		Description: description,
		Usage:       usage,
		Examples: []cli.Example{
			{Command: "synadmin room " + name + " '!OGEhHVWSdvArJzumhm:example.org'"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) },
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
			result, err := fetch(ctx, connection, roomID)
			if err != nil {
				return cli.FromSynapse(err, action)
			}
			return params.Emit(result, func(w io.Writer) error {
				return text(w, &params.OutputConfig, result)
			})
		},
	}
}

func showCommand() *cli.Command {
	return roomCommand("show", "Show room details",
		"Show the details of a room: name, topic, membership counts, and settings.",
		func(ctx context.Context, connection *cli.Connection, roomID ref.RoomID) (synapse.RoomDetails, error) {
			return connection.Room(ctx, roomID)
		},
		"fetching room",
		func(w io.Writer, _ *cli.OutputConfig, room synapse.RoomDetails) error {
			return cli.WriteFields(w, []cli.Field{
				{Name: "Room ID", Value: room.RoomID.String()},
				{Name: "Name", Value: cli.OrDash(room.Name)},
				{Name: "Topic", Value: cli.OrDash(room.Topic)},
				{Name: "Canonical alias", Value: cli.OrDash(room.CanonicalAlias)},
				{Name: "Creator", Value: room.Creator.String()},
				{Name: "Version", Value: room.Version},
				{Name: "Joined members", Value: strconv.Itoa(room.JoinedMembers)},
				{Name: "Local members", Value: strconv.Itoa(room.JoinedLocalMembers)},
				{Name: "Local devices", Value: strconv.Itoa(room.JoinedLocalDevices)},
				{Name: "State events", Value: strconv.Itoa(room.StateEvents)},
				{Name: "Encryption", Value: cli.OrDash(room.Encryption)},
				{Name: "Join rules", Value: cli.OrDash(room.JoinRules)},
				{Name: "Guest access", Value: cli.OrDash(room.GuestAccess)},
				{Name: "History visibility", Value: cli.OrDash(room.HistoryVisibility)},
				{Name: "Federatable", Value: strconv.FormatBool(room.Federatable)},
				{Name: "Public", Value: strconv.FormatBool(room.Public)},
				{Name: "Room type", Value: cli.OrDash(room.RoomType)},
				{Name: "Forgotten", Value: strconv.FormatBool(room.Forgotten)},
			})
		})
}

func membersCommand() *cli.Command {
	return roomCommand("members", "List the joined members of a room",
		"List the users joined to a room, local and remote.",
		func(ctx context.Context, connection *cli.Connection, roomID ref.RoomID) (synapse.RoomMembers, error) {
			return connection.RoomMembers(ctx, roomID)
		},
		"listing room members",
		func(w io.Writer, _ *cli.OutputConfig, members synapse.RoomMembers) error {
			for _, member := range members.Members {
				fmt.Fprintln(w, member)
			}
			return nil
		})
}

func stateCommand() *cli.Command {
	return roomCommand("state", "List the current state events of a room",
		"List the current state of a room. Use --json for the event contents.",
		func(ctx context.Context, connection *cli.Connection, roomID ref.RoomID) ([]synapse.Event, error) {
			return connection.RoomState(ctx, roomID)
		},
		"fetching room state",
		func(w io.Writer, output *cli.OutputConfig, events []synapse.Event) error {
			rows := make([][]string, 0, len(events))
			for _, event := range events {
				stateKey := ""
				if event.StateKey != nil {
					stateKey = *event.StateKey
				}
				rows = append(rows, []string{event.Type, stateKey, event.Sender.String(), string(event.Content)})
			}
			return output.Table(w, []string{"TYPE", "STATE KEY", "SENDER", "CONTENT"}, rows)
		})
}
