// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/cmd/synadmin/media"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/synapse"
)

type resetPasswordParams struct {
	cli.AdminFlags
	PasswordFile  string `json:"-"              flag:"password-file"  desc:"read the new password from the first line of this file (- for stdin)"`
	LogoutDevices bool   `json:"logout_devices" flag:"logout-devices" desc:"log out all of the user's sessions" default:"true"`
}

func resetPasswordCommand() *cli.Command {
	var params resetPasswordParams
	const usage = "synadmin user reset-password <user-id> [--password-file <path>] [flags]"

	return &cli.Command{
		Name:    "reset-password",
		Summary: "Set a user's password",
		Description: `Set a local user's password. The password is read from
--password-file, or prompted for twice on a terminal. It is never taken
from a flag, where it would be visible in the process list and shell
history.

All of the user's sessions are logged out unless --logout-devices=false
is given.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Prompt for the new password",
				Command:     "synadmin user reset-password '@alice:example.org'",
			},
			{
				Description: "Read it from a password manager",
				Command:     "pass show matrix/alice | synadmin user reset-password '@alice:example.org' --password-file -",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("reset-password", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			userID, err := cli.ParseUserID(args[0])
			if err != nil {
				return err
			}
			password, err := cli.ReadNewPassword(params.PasswordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.ResetPassword(ctx, userID, password.String(), params.LogoutDevices); err != nil {
				return cli.FromSynapse(err, "resetting password")
			}
			logger.Info("password reset", "user_id", userID.String(), "logout_devices", params.LogoutDevices)

			result := struct {
				UserID        string `json:"user_id"`
				LogoutDevices bool   `json:"logout_devices"`
			}{UserID: userID.String(), LogoutDevices: params.LogoutDevices}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Password reset for %s\n", userID)
				return err
			})
		},
	}
}

func suspendCommand(suspend bool) *cli.Command {
	var params userParams
	name, summary := "suspend", "Suspend a user"
	description := `Suspend a local user. A suspended user can still log in and read but
cannot send messages, join rooms, or change their profile.`
	if !suspend {
		name, summary = "unsuspend", "Lift a user's suspension"
		description = "Lift the suspension of a local user."
	}
	usage := "synadmin user " + name + " <user-id> [flags]"

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
			userID, err := cli.ParseUserID(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.SetUserSuspended(ctx, userID, suspend); err != nil {
				return cli.FromSynapse(err, name+" user")
			}
			logger.Info("user suspension updated", "user_id", userID.String(), "suspended", suspend)

			result := struct {
				UserID    string `json:"user_id"`
				Suspended bool   `json:"suspended"`
			}{UserID: userID.String(), Suspended: suspend}
			return params.Emit(result, func(w io.Writer) error {
				state := "suspended"
				if !suspend {
					state = "no longer suspended"
				}
				_, err := fmt.Fprintf(w, "%s is %s\n", userID, state)
				return err
			})
		},
	}
}

type deactivateParams struct {
	cli.AdminFlags
	Erase bool `json:"erase" flag:"erase" desc:"also hide the user's messages from users who join rooms later (GDPR erasure)"`
}

func deactivateCommand() *cli.Command {
	var params deactivateParams
	const usage = "synadmin user deactivate <user-id> [--erase] [flags]"

	return &cli.Command{
		Name:    "deactivate",
		Summary: "Deactivate an account",
		Description: `Deactivate a local account: log out its sessions, remove it from all
rooms, and unbind its third-party IDs. A deactivated account cannot log
in until an admin reactivates it.`,
		Usage: usage,
		Examples: []cli.Example{
			{Command: "synadmin user deactivate '@spammer:example.org' --erase"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("deactivate", &params) },
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
			unbind, err := connection.DeactivateUser(ctx, userID, params.Erase)
			if err != nil {
				return cli.FromSynapse(err, "deactivating user")
			}
			logger.Info("user deactivated", "user_id", userID.String(), "erase", params.Erase, "id_server_unbind_result", unbind)

			result := struct {
				UserID               string `json:"user_id"`
				Erased               bool   `json:"erased"`
				IDServerUnbindResult string `json:"id_server_unbind_result"`
			}{UserID: userID.String(), Erased: params.Erase, IDServerUnbindResult: unbind}
			return params.Emit(result, func(w io.Writer) error {
				return cli.WriteFields(w, []cli.Field{
					{Name: "Deactivated", Value: userID.String()},
					{Name: "Erased", Value: fmt.Sprint(params.Erase)},
					{Name: "Identity server unbind", Value: unbind},
				})
			})
		},
	}
}

type renewParams struct {
	cli.AdminFlags
	Expires       string `json:"expires"               flag:"expires"        desc:"new expiry (RFC 3339, YYYY-MM-DD, epoch ms, or +30d) (default: the server's validity period from now)"`
	RenewalEmails *bool  `json:"enable_renewal_emails" flag:"renewal-emails" desc:"send renewal reminder emails before the new expiry"`
}

func renewCommand(clk clock.Clock) *cli.Command {
	var params renewParams
	const usage = "synadmin user renew <user-id> [--expires <time>] [flags]"

	return &cli.Command{
		Name:    "renew",
		Summary: "Extend an account's validity",
		Description: `Set when a local account expires. Requires the account validity
feature on the homeserver. Prints the new expiry.`,
		Usage: usage,
		Examples: []cli.Example{
			{Command: "synadmin user renew '@alice:example.org' --expires +365d"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("renew", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			userID, err := cli.ParseUserID(args[0])
			if err != nil {
				return err
			}
			update := synapse.AccountValidityUpdate{UserID: userID, EnableRenewalEmails: params.RenewalEmails}
			if params.Expires != "" {
				expires, err := cli.ParseTime(params.Expires, clk.Now())
				if err != nil {
					return cli.Validation("--expires: %w", err)
				}
				timestamp := synapse.NewTimestamp(expires)
				update.ExpirationTS = &timestamp
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			expiration, err := connection.RenewAccount(ctx, update)
			if err != nil {
				return cli.FromSynapse(err, "renewing account")
			}
			logger.Info("account renewed", "user_id", userID.String(), "expires", expiration)

			result := struct {
				UserID       string            `json:"user_id"`
				ExpirationTS synapse.Timestamp `json:"expiration_ts"`
			}{UserID: userID.String(), ExpirationTS: synapse.NewTimestamp(expiration)}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s expires %s\n", userID, cli.FormatTime(expiration))
				return err
			})
		},
	}
}

func deleteMediaCommand() *cli.Command {
	var params userParams
	const usage = "synadmin user delete-media <user-id> [flags]"

	return &cli.Command{
		Name:    "delete-media",
		Summary: "Delete all media uploaded by a user",
		Description: `Delete every piece of local media a user has uploaded, including
their avatar. Use "media quarantine --user" to block access without
deleting.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete-media", &params) },
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
			deleted, err := connection.DeleteUserMedia(ctx, userID)
			if err != nil {
				return cli.FromSynapse(err, "deleting user media")
			}
			logger.Info("user media deleted", "user_id", userID.String(), "total", deleted.Total)
			return params.Emit(deleted, func(w io.Writer) error {
				return media.WriteDeleted(w, deleted)
			})
		},
	}
}
