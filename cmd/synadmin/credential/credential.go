// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential implements the synadmin credential command group,
// which keeps the admin access token encrypted at rest.
//
// "keygen" creates an age identity; "seal" encrypts a token to one or
// more age recipients. The sealed file and the identity are then named
// by credentials.sealed_token_file and credentials.identity_file in the
// config file (or --sealed-token-file and --identity-file), and
// commands decrypt the token into locked memory only for the duration
// of a call.
package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/lib/sealed"
	"github.com/bureau-foundation/synadmin/lib/secret"
)

// Command returns the "credential" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "credential",
		Summary: "Encrypt the admin access token at rest",
		Description: `Manage an age-encrypted admin access token.

  synadmin credential keygen --output ~/.config/synadmin/identity
  synadmin credential seal --recipient age1... --output ~/.config/synadmin/token.age < token

Then point the config file at both:

  credentials:
    sealed_token_file: ~/.config/synadmin/token.age
    identity_file: ~/.config/synadmin/identity`,
		Subcommands: []*cli.Command{
			keygenCommand(clock.Real()),
			sealCommand(),
		},
	}
}

type keygenParams struct {
	cli.OutputConfig
	Output string `json:"identity_file" flag:"output,o" desc:"file to write the identity to (created with mode 0600)"`
	Force  bool   `json:"-"             flag:"force"    desc:"overwrite an existing identity file"`
}

// keygenResult is the output of credential keygen.
type keygenResult struct {
	IdentityFile string `json:"identity_file"`
	Recipient    string `json:"recipient"`
}

func keygenCommand(clk clock.Clock) *cli.Command {
	var params keygenParams
	const usage = "synadmin credential keygen --output <path> [flags]"

	return &cli.Command{
		Name:    "keygen",
		Summary: "Create an age identity for sealing tokens",
		Description: `Generate an age x25519 identity and write it to --output in the
age-keygen file layout. The public key (recipient) is printed; pass it
to "credential seal --recipient". An existing file is not overwritten
unless --force is given.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("keygen", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}

			identity, err := sealed.GenerateIdentity()
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer identity.Close()

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if params.Force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			file, err := os.OpenFile(params.Output, flags, 0o600)
			if errors.Is(err, fs.ErrExist) {
				return cli.Conflict("%s already exists (pass --force to overwrite)", params.Output)
			}
			if err != nil {
				return cli.Validation("creating identity file: %w", err)
			}
			if err := sealed.WriteIdentity(file, identity, clk.Now()); err != nil {
				file.Close()
				return cli.Internal("writing %s: %w", params.Output, err)
			}
			if err := file.Close(); err != nil {
				return cli.Internal("writing %s: %w", params.Output, err)
			}
			logger.Info("identity created", "path", params.Output, "recipient", identity.Recipient)

			result := keygenResult{IdentityFile: params.Output, Recipient: identity.Recipient}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Public key: %s\n", identity.Recipient)
				return err
			})
		},
	}
}

type sealParams struct {
	Recipients []string `json:"recipients" flag:"recipient,r"  desc:"age public key to encrypt to (repeatable)"`
	TokenFile  string   `json:"token_file" flag:"token-file"   desc:"file holding the plaintext token (- for stdin)" default:"-"`
	Output     string   `json:"output"     flag:"output,o"     desc:"file to write the sealed token to (- for stdout)" default:"-"`
}

func sealCommand() *cli.Command {
	var params sealParams
	const usage = "synadmin credential seal --recipient <age1...> [--token-file <path>] [--output <path>]"

	return &cli.Command{
		Name:    "seal",
		Summary: "Encrypt an access token to age recipients",
		Description: `Encrypt an admin access token to one or more age recipients and write
it ASCII-armored. The token is read from --token-file, stdin by default.
Any of the recipients' identities can open the result.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Seal a token pasted on stdin",
				Command:     "synadmin credential seal -r age1... -o ~/.config/synadmin/token.age",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("seal", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			if len(params.Recipients) == 0 {
				return cli.Validation("at least one --recipient is required")
			}
			for _, recipient := range params.Recipients {
				if err := sealed.ValidateRecipient(recipient); err != nil {
					return cli.Validation("--recipient %q: %w", recipient, err)
				}
			}

			token, err := secret.ReadFromPath(params.TokenFile)
			if err != nil {
				return cli.Validation("reading token: %w", err)
			}
			defer token.Close()

			var armored bytes.Buffer
			if err := sealed.Seal(&armored, token.Bytes(), params.Recipients); err != nil {
				return cli.Internal("%w", err)
			}

			if params.Output == "-" {
				_, err := os.Stdout.Write(armored.Bytes())
				return err
			}
			if err := os.WriteFile(params.Output, armored.Bytes(), 0o600); err != nil {
				return cli.Validation("writing sealed token: %w", err)
			}
			logger.Info("token sealed",
				"path", params.Output,
				"recipients", len(params.Recipients),
				"token_fingerprint", token.Fingerprint())
			return nil
		},
	}
}
