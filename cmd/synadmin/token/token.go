// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package token implements the synadmin token command group, which
// manages the registration tokens of a homeserver with token-gated
// registration.
package token

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/synapse"
)

// maxGeneratedLength is the longest token the server will generate.
const maxGeneratedLength = 64

// Command returns the "token" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "token",
		Summary: "Manage registration tokens",
		Description: `Create, inspect, and revoke registration tokens. A token admits a
limited number of registrations until it expires; tokens without a
limit or expiry stay valid until deleted.`,
		Subcommands: []*cli.Command{
			listCommand(clock.Real()),
			showCommand(clock.Real()),
			createCommand(clock.Real()),
			updateCommand(clock.Real()),
			deleteCommand(),
		},
	}
}

type listParams struct {
	cli.AdminFlags
	Valid *bool `json:"valid" flag:"valid" desc:"list only valid tokens (or only invalid ones with --valid=false)"`
}

func listCommand(clk clock.Clock) *cli.Command {
	var params listParams
	const usage = "synadmin token list [flags]"

	return &cli.Command{
		Name:    "list",
		Summary: "List registration tokens",
		Usage:   usage,
		Examples: []cli.Example{
			{Description: "Tokens that can still be used", Command: "synadmin token list --valid"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			tokens, err := connection.RegistrationTokens(ctx, params.Valid)
			if err != nil {
				return cli.FromSynapse(err, "listing registration tokens")
			}

			now := clk.Now()
			return params.Emit(tokens, func(w io.Writer) error {
				rows := make([][]string, 0, len(tokens))
				for _, token := range tokens {
					rows = append(rows, []string{
						token.Token,
						cli.FormatOptionalInt(token.UsesAllowed, "unlimited"),
						strconv.Itoa(token.Pending),
						strconv.Itoa(token.Completed),
						expiry(token),
						strconv.FormatBool(token.IsValid(now)),
					})
				}
				return params.Table(w, []string{"TOKEN", "USES ALLOWED", "PENDING", "COMPLETED", "EXPIRES", "VALID"}, rows)
			})
		},
	}
}

type tokenParams struct {
	cli.AdminFlags
}

func showCommand(clk clock.Clock) *cli.Command {
	var params tokenParams
	const usage = "synadmin token show <token> [flags]"

	return &cli.Command{
		Name:    "show",
		Summary: "Show a registration token",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			token, err := connection.RegistrationToken(ctx, args[0])
			if err != nil {
				return cli.FromSynapse(err, "fetching registration token")
			}
			return params.Emit(token, func(w io.Writer) error {
				return writeToken(w, token, clk.Now())
			})
		},
	}
}

type createParams struct {
	cli.AdminFlags
	Token   *string `json:"token"   flag:"token"   desc:"the token string (default: generated by the server)"`
	Uses    *int    `json:"uses"    flag:"uses"    desc:"number of registrations the token allows (default unlimited)"`
	Expires string  `json:"expires" flag:"expires" desc:"when the token expires (RFC 3339, YYYY-MM-DD, epoch ms, or +7d for a week from now)"`
	Length  *int    `json:"length"  flag:"length"  desc:"length of a generated token, 1 to 64 (server default 16)"`
}

func createCommand(clk clock.Clock) *cli.Command {
	var params createParams
	const usage = "synadmin token create [flags]"

	return &cli.Command{
		Name:    "create",
		Summary: "Create a registration token",
		Description: `Create a registration token. Without --token the server generates a
random one of --length characters. Prints the token.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "A single-use token valid for a week",
				Command:     "synadmin token create --uses 1 --expires +7d",
			},
			{
				Description: "A named token for an event",
				Command:     "synadmin token create --token conference-2025 --uses 200",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("create", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			request := synapse.NewRegistrationToken{
				Token:       params.Token,
				UsesAllowed: params.Uses,
				Length:      params.Length,
			}
			if params.Token != nil && params.Length != nil {
				return cli.Validation("--token and --length are mutually exclusive")
			}
			if params.Length != nil && (*params.Length < 1 || *params.Length > maxGeneratedLength) {
				return cli.Validation("--length must be between 1 and %d, got %d", maxGeneratedLength, *params.Length)
			}
			if params.Uses != nil && *params.Uses < 0 {
				return cli.Validation("--uses must not be negative")
			}
			now := clk.Now()
			expiresAt, err := parseExpiry(params.Expires, now)
			if err != nil {
				return err
			}
			request.ExpiryTime = expiresAt

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			token, err := connection.CreateRegistrationToken(ctx, request)
			if err != nil {
				return cli.FromSynapse(err, "creating registration token")
			}
			logger.Info("registration token created",
				"uses_allowed", cli.FormatOptionalInt(token.UsesAllowed, "unlimited"),
				"expires", expiry(token))

			return params.Emit(token, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, token.Token)
				return err
			})
		},
	}
}

type updateParams struct {
	cli.AdminFlags
	Uses    *int   `json:"uses"    flag:"uses"    desc:"new number of registrations the token allows"`
	Expires string `json:"expires" flag:"expires" desc:"new expiry (RFC 3339, YYYY-MM-DD, epoch ms, or +7d for a week from now)"`
}

func updateCommand(clk clock.Clock) *cli.Command {
	var params updateParams
	const usage = "synadmin token update <token> [--uses <n>] [--expires <time>] [flags]"

	return &cli.Command{
		Name:    "update",
		Summary: "Change a registration token's limits",
		Description: `Change the number of uses or the expiry of a registration token. Only
the limits given are changed.`,
		Usage: usage,
		Examples: []cli.Example{
			{Command: "synadmin token update conference-2025 --uses 300 --expires 2025-12-31"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("update", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			if params.Uses == nil && params.Expires == "" {
				return cli.Validation("nothing to update: give --uses or --expires")
			}
			if params.Uses != nil && *params.Uses < 0 {
				return cli.Validation("--uses must not be negative")
			}
			now := clk.Now()
			expiresAt, err := parseExpiry(params.Expires, now)
			if err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			token, err := connection.UpdateRegistrationToken(ctx, args[0], synapse.RegistrationTokenUpdate{
				UsesAllowed: params.Uses,
				ExpiryTime:  expiresAt,
			})
			if err != nil {
				return cli.FromSynapse(err, "updating registration token")
			}
			logger.Info("registration token updated", "token", token.Token)

			return params.Emit(token, func(w io.Writer) error {
				return writeToken(w, token, now)
			})
		},
	}
}

func deleteCommand() *cli.Command {
	var params tokenParams
	const usage = "synadmin token delete <token> [flags]"

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a registration token",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.DeleteRegistrationToken(ctx, args[0]); err != nil {
				return cli.FromSynapse(err, "deleting registration token")
			}
			logger.Info("registration token deleted", "token", args[0])

			result := struct {
				Token   string `json:"token"`
				Deleted bool   `json:"deleted"`
			}{Token: args[0], Deleted: true}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted %s\n", args[0])
				return err
			})
		},
	}
}

// parseExpiry parses an --expires value, which must be in the future.
// Empty leaves the expiry unset.
func parseExpiry(raw string, now time.Time) (*synapse.Timestamp, error) {
	if raw == "" {
		return nil, nil
	}
	expires, err := cli.ParseTime(raw, now)
	if err != nil {
		return nil, cli.Validation("--expires: %w", err)
	}
	if !expires.After(now) {
		return nil, cli.Validation("--expires %s is in the past (use +7d for seven days from now)", cli.FormatTime(expires))
	}
	timestamp := synapse.NewTimestamp(expires)
	return &timestamp, nil
}

func writeToken(w io.Writer, token synapse.RegistrationToken, now time.Time) error {
	return cli.WriteFields(w, []cli.Field{
		{Name: "Token", Value: token.Token},
		{Name: "Uses allowed", Value: cli.FormatOptionalInt(token.UsesAllowed, "unlimited")},
		{Name: "Pending", Value: strconv.Itoa(token.Pending)},
		{Name: "Completed", Value: strconv.Itoa(token.Completed)},
		{Name: "Expires", Value: expiry(token)},
		{Name: "Valid", Value: strconv.FormatBool(token.IsValid(now))},
	})
}

func expiry(token synapse.RegistrationToken) string {
	if token.ExpiryTime == nil {
		return "never"
	}
	return cli.FormatTime(token.ExpiryTime.Time)
}
