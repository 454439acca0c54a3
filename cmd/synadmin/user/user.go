// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package user implements the synadmin user command group: account
// lookup and listing, password resets, suspension, deactivation,
// account validity, and bulk media deletion.
package user

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
	"github.com/bureau-foundation/synadmin/synapse"
)

// Command returns the "user" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "user",
		Summary: "Inspect and administer local accounts",
		Subcommands: []*cli.Command{
			showCommand(),
			listCommand(),
			roomsCommand(),
			resetPasswordCommand(),
			suspendCommand(true),
			suspendCommand(false),
			deactivateCommand(),
			renewCommand(clock.Real()),
			deleteMediaCommand(),
		},
	}
}

type userParams struct {
	cli.AdminFlags
}

func showCommand() *cli.Command {
	var params userParams
	const usage = "synadmin user show <user-id> [flags]"

	return &cli.Command{
		Name:    "show",
		Summary: "Show an account",
		Usage:   usage,
		Examples: []cli.Example{
			{Command: "synadmin user show '@alice:example.org'"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			userID, err := cli.ParseUserID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			account, err := connection.User(ctx, userID)
			if err != nil {
				return cli.FromSynapse(err, "fetching user")
			}

			return params.Emit(account, func(w io.Writer) error {
				fields := []cli.Field{
					{Name: "User ID", Value: account.Name.String()},
					{Name: "Display name", Value: cli.OrDash(account.DisplayName)},
					{Name: "Avatar", Value: cli.OrDash(account.AvatarURL)},
					{Name: "Admin", Value: strconv.FormatBool(account.Admin)},
					{Name: "Status", Value: status(account)},
					{Name: "User type", Value: cli.OrDash(account.UserType)},
					{Name: "Appservice", Value: cli.OrDash(account.AppserviceID)},
					{Name: "Created", Value: cli.FormatTimestamp(account.CreationTS)},
					{Name: "Last seen", Value: cli.FormatTimestamp(account.LastSeenTS)},
				}
				for _, threePID := range account.ThreePIDs {
					fields = append(fields, cli.Field{Name: "Third-party ID", Value: threePID.Medium + ": " + threePID.Address})
				}
				for _, external := range account.ExternalIDs {
					fields = append(fields, cli.Field{Name: "External ID", Value: external.AuthProvider + ": " + external.ExternalID})
				}
				return cli.WriteFields(w, fields)
			})
		},
	}
}

type listParams struct {
	cli.AdminFlags
	From        *int    `json:"from"        flag:"from"        desc:"offset to start from (the previous page's next_token)"`
	Limit       *int    `json:"limit"       flag:"limit"       desc:"maximum users to return (server default 100)"`
	UserID      *string `json:"user_id"     flag:"user-id"     desc:"only users whose localpart contains this"`
	Name        *string `json:"name"        flag:"name"        desc:"only users whose user ID or display name contains this"`
	Guests      *bool   `json:"guests"      flag:"guests"      desc:"include guest users (server default true)"`
	Deactivated *bool   `json:"deactivated" flag:"deactivated" desc:"include deactivated users (server default false)"`
	OrderBy     string  `json:"order_by"    flag:"order-by"    desc:"sort key (name, creation_ts, last_seen_ts, ...)"`
	Dir         string  `json:"dir"         flag:"dir"         desc:"sort direction: f or b"`
}

func listCommand() *cli.Command {
	var params listParams
	const usage = "synadmin user list [flags]"

	return &cli.Command{
		Name:    "list",
		Summary: "List local accounts",
		Description: `List local accounts one page at a time. When more accounts remain,
the offset of the next page is printed to stderr.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Most recently created accounts, including deactivated ones",
				Command:     "synadmin user list --order-by creation_ts --dir b --deactivated",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			orderBy, err := parseUserOrder(params.OrderBy)
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
			users, err := connection.Users(ctx, synapse.UsersQuery{
				From:        params.From,
				Limit:       params.Limit,
				UserID:      params.UserID,
				Name:        params.Name,
				Guests:      params.Guests,
				Deactivated: params.Deactivated,
				OrderBy:     orderBy,
				Dir:         direction,
			})
			if err != nil {
				return cli.FromSynapse(err, "listing users")
			}

			return params.Emit(users, func(w io.Writer) error {
				rows := make([][]string, 0, len(users.Users))
				for _, account := range users.Users {
					rows = append(rows, []string{
						account.Name.String(),
						cli.OrDash(account.DisplayName),
						strconv.FormatBool(account.Admin),
						status(account),
						cli.FormatTimestamp(account.CreationTS),
					})
				}
				if err := params.Table(w, []string{"USER ID", "DISPLAY NAME", "ADMIN", "STATUS", "CREATED"}, rows); err != nil {
					return err
				}
				if users.NextToken != nil {
					fmt.Fprintf(os.Stderr, "%d of %d users; next page: --from %s\n",
						len(users.Users), users.Total, *users.NextToken)
				}
				return nil
			})
		},
	}
}

func roomsCommand() *cli.Command {
	var params userParams
	const usage = "synadmin user rooms <user-id> [flags]"

	return &cli.Command{
		Name:    "rooms",
		Summary: "List the rooms a user is joined to",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("rooms", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			userID, err := cli.ParseUserID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			rooms, err := connection.UserJoinedRooms(ctx, userID)
			if err != nil {
				return cli.FromSynapse(err, "listing joined rooms")
			}
			return params.Emit(rooms, func(w io.Writer) error {
				for _, roomID := range rooms {
					if _, err := fmt.Fprintln(w, roomID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// status summarizes the restrictions on an account.
func status(account synapse.User) string {
	var states []string
	for _, state := range []struct {
		set  bool
		name string
	}{
		{account.Deactivated, "deactivated"},
		{account.Erased, "erased"},
		{account.Suspended, "suspended"},
		{account.Locked, "locked"},
		{account.ShadowBanned, "shadow-banned"},
		{account.IsGuest, "guest"},
	} {
		if state.set {
			states = append(states, state.name)
		}
	}
	if len(states) == 0 {
		return "active"
	}
	return strings.Join(states, ",")
}

func parseUserOrder(raw string) (synapse.UserOrder, error) {
	if raw == "" {
		return "", nil
	}
	names := make([]string, 0, len(synapse.UserOrders))
	for _, order := range synapse.UserOrders {
		if string(order) == raw {
			return order, nil
		}
		names = append(names, string(order))
	}
	return "", cli.Validation("--order-by must be one of %s, got %q", strings.Join(names, ", "), raw)
}
