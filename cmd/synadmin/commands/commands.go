// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete synadmin command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	credentialcmd "github.com/bureau-foundation/synadmin/cmd/synadmin/credential"
	mediacmd "github.com/bureau-foundation/synadmin/cmd/synadmin/media"
	noticecmd "github.com/bureau-foundation/synadmin/cmd/synadmin/notice"
	reportcmd "github.com/bureau-foundation/synadmin/cmd/synadmin/report"
	roomcmd "github.com/bureau-foundation/synadmin/cmd/synadmin/room"
	servercmd "github.com/bureau-foundation/synadmin/cmd/synadmin/server"
	tokencmd "github.com/bureau-foundation/synadmin/cmd/synadmin/token"
	usercmd "github.com/bureau-foundation/synadmin/cmd/synadmin/user"
	"github.com/bureau-foundation/synadmin/lib/version"
)

// globalFlags are accepted before the first command name.
type globalFlags struct {
	Verbose bool `flag:"verbose,v" desc:"log requests and responses at debug level"`
	Quiet   bool `flag:"quiet,q"   desc:"log only warnings and errors"`
}

// level returns the log level the flags select.
func (g *globalFlags) level() slog.Level {
	switch {
	case g.Verbose:
		return slog.LevelDebug
	case g.Quiet:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Root builds and returns the complete synadmin command tree.
func Root() *cli.Command {
	var global globalFlags
	return &cli.Command{
		Name: "synadmin",
		Description: `synadmin: administer a Synapse Matrix homeserver through its admin API.

Every command needs the homeserver URL and an admin access token, from
flags (--homeserver, --token-file) or the config file named by
$SYNADMIN_CONFIG. Results go to stdout as text, JSON (--json), or CBOR
(--format cbor); diagnostics go to stderr.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("synadmin", &global) },
		Logger: func() *slog.Logger {
			return cli.NewCommandLogger(global.level())
		},
		Subcommands: []*cli.Command{
			roomcmd.Command(),
			roomcmd.PurgeHistoryCommand(),
			usercmd.Command(),
			mediacmd.Command(),
			tokencmd.Command(),
			reportcmd.Command(),
			noticecmd.Command(),
			servercmd.Command(),
			servercmd.BackgroundCommand(),
			credentialcmd.Command(),
			configCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("synadmin %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Check that the homeserver is reachable and the token is an admin's",
				Command:     "synadmin server version --homeserver https://matrix.example.org --token-file ~/.config/synadmin/token",
			},
			{
				Description: "The largest rooms on the server",
				Command:     "synadmin room list --order-by joined_members --dir b --limit 20",
			},
			{
				Description: "Delete a room and wait for the purge to finish",
				Command:     "synadmin room delete '!abc:example.org' --purge --block --wait",
			},
			{
				Description: "Suspend a spammer",
				Command:     "synadmin user suspend '@spammer:example.org'",
			},
			{
				Description: "Create a single-use registration token valid for a week",
				Command:     "synadmin token create --uses 1 --expires +7d",
			},
		},
	}
}
