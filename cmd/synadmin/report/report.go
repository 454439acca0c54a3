// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report implements the synadmin report command group for
// reviewing events that users have reported to the server admins.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/synapse"
)

// Command returns the "report" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "report",
		Summary: "Review reported events",
		Description: `List and inspect the events users have reported. Deleting a report
removes it from the queue; the reported event is untouched.`,
		Subcommands: []*cli.Command{
			listCommand(),
			showCommand(),
			deleteCommand(),
		},
	}
}

type listParams struct {
	cli.AdminFlags
	From  *int64  `json:"from"  flag:"from"  desc:"offset to start from (the previous page's next_token)"`
	Limit *int    `json:"limit" flag:"limit" desc:"maximum reports to return (server default 100)"`
	Dir   string  `json:"dir"   flag:"dir"   desc:"b (newest first, the default) or f (oldest first)"`
	User  *string `json:"user"  flag:"user"  desc:"only reports filed by users whose ID contains this"`
	Room  *string `json:"room"  flag:"room"  desc:"only reports in rooms whose ID contains this"`
}

func listCommand() *cli.Command {
	var params listParams
	const usage = "synadmin report list [flags]"

	return &cli.Command{
		Name:    "list",
		Summary: "List event reports",
		Description: `List event reports, newest first. When more reports remain, the
offset of the next page is printed to stderr.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Reports filed in one room",
				Command:     "synadmin report list --room '!abc:example.org'",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
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
			reports, err := connection.EventReports(ctx, synapse.EventReportsQuery{
				Limit:  params.Limit,
				From:   params.From,
				Dir:    direction,
				UserID: params.User,
				RoomID: params.Room,
			})
			if err != nil {
				return cli.FromSynapse(err, "listing event reports")
			}

			return params.Emit(reports, func(w io.Writer) error {
				rows := make([][]string, 0, len(reports.EventReports))
				for _, report := range reports.EventReports {
					rows = append(rows, []string{
						strconv.FormatInt(report.ID, 10),
						cli.FormatTime(report.ReceivedTS.Time),
						report.UserID.String(),
						report.RoomID.String(),
						score(report.Score),
						cli.OrDash(report.Reason),
					})
				}
				if err := params.Table(w, []string{"ID", "RECEIVED", "REPORTER", "ROOM", "SCORE", "REASON"}, rows); err != nil {
					return err
				}
				if reports.NextToken != nil {
					fmt.Fprintf(os.Stderr, "%d of %d reports; next page: --from %d\n",
						len(reports.EventReports), reports.Total, *reports.NextToken)
				}
				return nil
			})
		},
	}
}

type reportParams struct {
	cli.AdminFlags
}

func showCommand() *cli.Command {
	var params reportParams
	const usage = "synadmin report show <report-id> [flags]"

	return &cli.Command{
		Name:    "show",
		Summary: "Show a report and the reported event",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			reportID, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			report, err := connection.EventReport(ctx, reportID)
			if err != nil {
				return cli.FromSynapse(err, "fetching event report")
			}

			return params.Emit(report, func(w io.Writer) error {
				room := report.RoomID.String()
				if report.CanonicalAlias != nil {
					room += " (" + *report.CanonicalAlias + ")"
				}
				if err := cli.WriteFields(w, []cli.Field{
					{Name: "Report", Value: strconv.FormatInt(report.ID, 10)},
					{Name: "Received", Value: cli.FormatTime(report.ReceivedTS.Time)},
					{Name: "Reporter", Value: report.UserID.String()},
					{Name: "Reason", Value: cli.OrDash(report.Reason)},
					{Name: "Score", Value: score(report.Score)},
					{Name: "Room", Value: room},
					{Name: "Room name", Value: cli.OrDash(report.Name)},
					{Name: "Event", Value: report.EventID.String()},
					{Name: "Sender", Value: report.Sender.String()},
				}); err != nil {
					return err
				}
				if len(report.EventJSON) == 0 {
					return nil
				}
				var indented bytes.Buffer
				if err := json.Indent(&indented, report.EventJSON, "", "  "); err != nil {
					indented.Reset()
					indented.Write(report.EventJSON)
				}
				_, err := fmt.Fprintf(w, "\n%s\n", indented.String())
				return err
			})
		},
	}
}

func deleteCommand() *cli.Command {
	var params reportParams
	const usage = "synadmin report delete <report-id> [flags]"

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete an event report",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			reportID, err := parseReportID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.DeleteEventReport(ctx, reportID); err != nil {
				return cli.FromSynapse(err, "deleting event report")
			}
			logger.Info("event report deleted", "report_id", reportID)

			result := struct {
				ID      int64 `json:"id"`
				Deleted bool  `json:"deleted"`
			}{ID: reportID, Deleted: true}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted report %d\n", reportID)
				return err
			})
		},
	}
}

func parseReportID(raw string) (int64, error) {
	reportID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || reportID < 0 {
		return 0, cli.Validation("report ID must be a non-negative integer, got %q", raw)
	}
	return reportID, nil
}

// score renders a report score. Clients send -100 (most offensive) to
// 0; nil when the reporter gave none.
func score(value *int) string {
	return cli.FormatOptionalInt(value, "-")
}
