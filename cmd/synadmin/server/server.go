// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package server implements the synadmin server and background command
// groups: the homeserver's version, database and media statistics, and
// control of background database updates.
package server

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
	"github.com/bureau-foundation/synadmin/lib/version"
	"github.com/bureau-foundation/synadmin/synapse"
)

// Command returns the "server" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Summary: "Inspect the homeserver",
		Subcommands: []*cli.Command{
			versionCommand(),
			statsCommand(),
		},
	}
}

type versionParams struct {
	cli.AdminFlags
	Require string `json:"require" flag:"require" desc:"exit 1 unless the server is at least this version (e.g. 1.98)"`
}

// versionResult is the output of server version.
type versionResult struct {
	synapse.ServerVersion
	Required  string `json:"required,omitempty"`
	Satisfied *bool  `json:"satisfied,omitempty"`
}

func versionCommand() *cli.Command {
	var params versionParams
	const usage = "synadmin server version [--require <version>] [flags]"

	return &cli.Command{
		Name:    "version",
		Summary: "Show the homeserver's Synapse version",
		Description: `Print the Synapse version of the homeserver. This is also a quick
check that the homeserver is reachable and the token belongs to an
admin.

With --require, exit with status 1 when the server is older than the
given version, for use in scripts that depend on newer admin APIs.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Fail unless the server supports user suspension",
				Command:     "synadmin server version --require 1.114",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			var required version.Server
			if params.Require != "" {
				parsed, err := version.ParseServer(params.Require)
				if err != nil {
					return cli.Validation("--require: %w", err)
				}
				required = parsed
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			serverVersion, err := connection.ServerVersion(ctx)
			if err != nil {
				return cli.FromSynapse(err, "fetching server version")
			}

			result := versionResult{ServerVersion: serverVersion}
			satisfied := true
			if params.Require != "" {
				running, err := version.ParseServer(serverVersion.ServerVersion)
				if err != nil {
					return cli.Internal("server reported an unparseable version: %w", err)
				}
				satisfied = running.AtLeast(required)
				result.Required = required.String()
				result.Satisfied = &satisfied
			}

			if err := params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, serverVersion.ServerVersion)
				return err
			}); err != nil {
				return err
			}
			if !satisfied {
				fmt.Fprintf(os.Stderr, "synadmin: server version %s is older than required %s\n",
					serverVersion.ServerVersion, required)
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:    "stats",
		Summary: "Show media and database usage",
		Subcommands: []*cli.Command{
			mediaStatsCommand(clock.Real()),
			roomStatsCommand(),
		},
	}
}

type mediaStatsParams struct {
	cli.AdminFlags
	From    *int    `json:"from"     flag:"from"     desc:"offset to start from (the previous page's next_token)"`
	Limit   *int    `json:"limit"    flag:"limit"    desc:"maximum users to return (server default 100)"`
	OrderBy string  `json:"order_by" flag:"order-by" desc:"sort key: user_id, displayname, media_length, or media_count"`
	Dir     string  `json:"dir"      flag:"dir"      desc:"sort direction: f or b"`
	Since   string  `json:"since"    flag:"since"    desc:"only count media uploaded after this instant (RFC 3339, YYYY-MM-DD, epoch ms, or 30d)"`
	Until   string  `json:"until"    flag:"until"    desc:"only count media uploaded before this instant"`
	Search  *string `json:"search"   flag:"search"   desc:"only users whose ID or display name contains this"`
}

func mediaStatsCommand(clk clock.Clock) *cli.Command {
	var params mediaStatsParams
	const usage = "synadmin server stats media [flags]"

	return &cli.Command{
		Name:    "media",
		Summary: "Show local media usage per user",
		Usage:   usage,
		Examples: []cli.Example{
			{
				Description: "The ten heaviest uploaders of the last month",
				Command:     "synadmin server stats media --order-by media_length --dir b --limit 10 --since 30d",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("media", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			query := synapse.MediaStatisticsQuery{
				From:       params.From,
				Limit:      params.Limit,
				SearchTerm: params.Search,
			}
			if params.OrderBy != "" {
				order, err := parseMediaOrder(params.OrderBy)
				if err != nil {
					return err
				}
				query.OrderBy = order
			}
			direction, err := cli.ParseDirection(params.Dir)
			if err != nil {
				return err
			}
			query.Dir = direction
			now := clk.Now()
			if params.Since != "" {
				since, err := cli.ParseTime(params.Since, now)
				if err != nil {
					return cli.Validation("--since: %w", err)
				}
				query.FromTS = &since
			}
			if params.Until != "" {
				until, err := cli.ParseTime(params.Until, now)
				if err != nil {
					return cli.Validation("--until: %w", err)
				}
				query.UntilTS = &until
			}
			if query.FromTS != nil && query.UntilTS != nil && !query.UntilTS.After(*query.FromTS) {
				return cli.Validation("--until must be after --since")
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			statistics, err := connection.UserMediaStatistics(ctx, query)
			if err != nil {
				return cli.FromSynapse(err, "fetching media statistics")
			}

			return params.Emit(statistics, func(w io.Writer) error {
				rows := make([][]string, 0, len(statistics.Users))
				for _, usage := range statistics.Users {
					rows = append(rows, []string{
						usage.UserID.String(),
						cli.OrDash(usage.DisplayName),
						strconv.FormatInt(usage.MediaCount, 10),
						cli.FormatBytes(usage.MediaLength),
					})
				}
				if err := params.Table(w, []string{"USER ID", "DISPLAY NAME", "FILES", "SIZE"}, rows); err != nil {
					return err
				}
				if statistics.NextToken != nil {
					fmt.Fprintf(os.Stderr, "%d of %d users; next page: --from %d\n",
						len(statistics.Users), statistics.Total, *statistics.NextToken)
				}
				return nil
			})
		},
	}
}

func parseMediaOrder(raw string) (synapse.MediaStatisticsOrder, error) {
	names := make([]string, 0, len(synapse.MediaStatisticsOrders))
	for _, order := range synapse.MediaStatisticsOrders {
		if string(order) == raw {
			return order, nil
		}
		names = append(names, string(order))
	}
	return "", cli.Validation("--order-by must be one of %s, got %q", strings.Join(names, ", "), raw)
}

type roomStatsParams struct {
	cli.AdminFlags
}

func roomStatsCommand() *cli.Command {
	var params roomStatsParams
	const usage = "synadmin server stats rooms [flags]"

	return &cli.Command{
		Name:    "rooms",
		Summary: "Show the rooms using the most database space",
		Description: `List the rooms with the largest estimated database footprint. Only
available on homeservers backed by PostgreSQL.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("rooms", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			rooms, err := connection.DatabaseRoomStatistics(ctx)
			if err != nil {
				return cli.FromSynapse(err, "fetching database statistics")
			}
			return params.Emit(rooms, func(w io.Writer) error {
				rows := make([][]string, 0, len(rooms))
				for _, room := range rooms {
					rows = append(rows, []string{room.RoomID.String(), cli.FormatBytes(room.EstimatedSize)})
				}
				return params.Table(w, []string{"ROOM ID", "ESTIMATED SIZE"}, rows)
			})
		},
	}
}
