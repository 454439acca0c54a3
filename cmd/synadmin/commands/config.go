// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Inspect the effective configuration",
		Subcommands: []*cli.Command{
			configShowCommand(),
		},
	}
}

type configShowParams struct {
	cli.AdminFlags
}

// effectiveConfig is the output of config show. It names the token's
// source and fingerprint, never the token.
type effectiveConfig struct {
	Path             string `json:"path,omitempty"`
	Profile          string `json:"profile,omitempty"`
	Homeserver       string `json:"homeserver"`
	Port             int    `json:"port"`
	Timeout          string `json:"timeout"`
	TokenSource      string `json:"token_source"`
	TokenFingerprint string `json:"token_fingerprint,omitempty"`
	OutputFormat     string `json:"output_format"`
	Color            string `json:"color"`
}

func configShowCommand() *cli.Command {
	var params configShowParams
	const usage = "synadmin config show [flags]"

	return &cli.Command{
		Name:    "show",
		Summary: "Show the configuration commands would use",
		Description: `Resolve the config file, its profile, and any connection flags the
same way every other command does, and print the result. The access
token is read (and a sealed token decrypted) to verify it, but only
its fingerprint is shown. No request is made.`,
		Usage: usage,
		Examples: []cli.Example{
			{Command: "synadmin config show --profile staging"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			params.UseConfig(cfg.Output)

			result := effectiveConfig{
				Path:         cfg.Path(),
				Profile:      cfg.Profile,
				Homeserver:   cfg.Homeserver.URL,
				Port:         cfg.Homeserver.Port,
				Timeout:      cfg.RequestTimeout().String(),
				TokenSource:  "none",
				OutputFormat: cfg.Output.Format,
				Color:        cfg.Output.Color,
			}
			switch {
			case cfg.Credentials.TokenFile != "":
				result.TokenSource = cfg.Credentials.TokenFile
			case cfg.Credentials.SealedTokenFile != "":
				result.TokenSource = cfg.Credentials.SealedTokenFile + " (sealed)"
			}
			if result.TokenSource != "none" {
				token, err := cli.ReadToken(cfg)
				if err != nil {
					return err
				}
				result.TokenFingerprint = token.Fingerprint()
				token.Close()
			}

			return params.Emit(result, func(w io.Writer) error {
				return cli.WriteFields(w, []cli.Field{
					{Name: "Config file", Value: orNone(result.Path)},
					{Name: "Profile", Value: orNone(result.Profile)},
					{Name: "Homeserver", Value: result.Homeserver},
					{Name: "Port", Value: strconv.Itoa(result.Port)},
					{Name: "Timeout", Value: result.Timeout},
					{Name: "Token", Value: result.TokenSource},
					{Name: "Token fingerprint", Value: orNone(result.TokenFingerprint)},
					{Name: "Output", Value: result.OutputFormat},
					{Name: "Color", Value: result.Color},
				})
			})
		},
	}
}

func orNone(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}
