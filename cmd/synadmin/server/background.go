// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/synapse"
)

// BackgroundCommand returns the "background" command group.
func BackgroundCommand() *cli.Command {
	return &cli.Command{
		Name:    "background",
		Summary: "Control background database updates",
		Description: `Background updates are database migrations the homeserver runs in
small batches after an upgrade. They can be paused during peak load and
resumed later; pausing does not survive a restart.`,
		Subcommands: []*cli.Command{
			backgroundStatusCommand(),
			backgroundToggleCommand(true),
			backgroundToggleCommand(false),
			backgroundStartCommand(),
		},
	}
}

type backgroundParams struct {
	cli.AdminFlags
}

func backgroundStatusCommand() *cli.Command {
	var params backgroundParams
	const usage = "synadmin background status [flags]"

	return &cli.Command{
		Name:    "status",
		Summary: "Show running background updates",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("status", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			status, err := connection.BackgroundUpdateStatus(ctx)
			if err != nil {
				return cli.FromSynapse(err, "fetching background update status")
			}
			return params.Emit(status, func(w io.Writer) error {
				return writeStatus(w, &params.OutputConfig, status)
			})
		},
	}
}

func writeStatus(w io.Writer, output *cli.OutputConfig, status synapse.BackgroundUpdateStatus) error {
	state := "enabled"
	if !status.Enabled {
		state = "paused"
	}
	if _, err := fmt.Fprintf(w, "Background updates: %s\n", state); err != nil {
		return err
	}

	databases := make([]string, 0, len(status.CurrentUpdates))
	for database := range status.CurrentUpdates {
		databases = append(databases, database)
	}
	slices.Sort(databases)

	var rows [][]string
	for _, database := range databases {
		for _, update := range status.CurrentUpdates[database] {
			rows = append(rows, []string{
				database,
				update.Name,
				strconv.FormatInt(update.TotalItemCount, 10),
				strconv.FormatFloat(update.AverageItemsPerMS, 'f', 2, 64),
			})
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No updates running")
		return err
	}
	return output.Table(w, []string{"DATABASE", "UPDATE", "ITEMS", "ITEMS/MS"}, rows)
}

func backgroundToggleCommand(enable bool) *cli.Command {
	var params backgroundParams
	name, summary := "enable", "Resume background updates"
	if !enable {
		name, summary = "disable", "Pause background updates"
	}
	usage := "synadmin background " + name + " [flags]"

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			enabled, err := connection.SetBackgroundUpdatesEnabled(ctx, enable)
			if err != nil {
				return cli.FromSynapse(err, name+" background updates")
			}
			logger.Info("background updates toggled", "enabled", enabled)

			result := struct {
				Enabled bool `json:"enabled"`
			}{Enabled: enabled}
			return params.Emit(result, func(w io.Writer) error {
				state := "enabled"
				if !enabled {
					state = "paused"
				}
				_, err := fmt.Fprintf(w, "Background updates %s\n", state)
				return err
			})
		},
	}
}

func backgroundStartCommand() *cli.Command {
	var params backgroundParams
	const usage = "synadmin background start <job> [flags]"

	return &cli.Command{
		Name:    "start",
		Summary: "Queue a background job",
		Description: `Queue a background job. Known jobs:

  populate_stats_process_rooms   recalculate room statistics
  regenerate_directory           rebuild the user directory

The homeserver rejects a job that is already queued.`,
		Usage: usage,
		Examples: []cli.Example{
			{Command: "synadmin background start regenerate_directory"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("start", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			job, err := parseJob(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.StartBackgroundUpdateJob(ctx, job); err != nil {
				return cli.FromSynapse(err, "starting background job")
			}
			logger.Info("background job queued", "job", string(job))

			result := struct {
				Job    synapse.BackgroundJob `json:"job_name"`
				Queued bool                  `json:"queued"`
			}{Job: job, Queued: true}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Queued %s\n", job)
				return err
			})
		},
	}
}

func parseJob(raw string) (synapse.BackgroundJob, error) {
	names := make([]string, 0, len(synapse.BackgroundJobs))
	for _, job := range synapse.BackgroundJobs {
		if string(job) == raw {
			return job, nil
		}
		names = append(names, string(job))
	}
	return "", cli.Validation("unknown job %q (known: %s)", raw, strings.Join(names, ", "))
}
