// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package media implements the synadmin media command group:
// quarantine, protection, and deletion of uploaded and cached media.
//
// Media arguments are content URIs (mxc://server/media-id); the mxc://
// prefix may be omitted. protect and unprotect take a bare media ID,
// since protection applies only to local media.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/synapse"
)

// Command returns the "media" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "media",
		Summary: "Quarantine, protect, and delete media",
		Description: `Administer media stored by the homeserver. Quarantined media can no
longer be downloaded. Protected media is skipped when a room's or a
user's media is quarantined in bulk.`,
		Subcommands: []*cli.Command{
			listCommand(),
			quarantineCommand(),
			unquarantineCommand(),
			protectCommand(true),
			protectCommand(false),
			deleteCommand(),
			deleteBeforeCommand(clock.Real()),
			purgeCacheCommand(clock.Real()),
		},
	}
}

type mediaParams struct {
	cli.AdminFlags
}

func listCommand() *cli.Command {
	var params mediaParams
	const usage = "synadmin media list <room-id> [flags]"

	return &cli.Command{
		Name:    "list",
		Summary: "List the media referenced in a room",
		Description: `List the content URIs referenced by a room's events, split into media
stored on this homeserver and media cached from remote servers.`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
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
			media, err := connection.RoomMedia(ctx, roomID)
			if err != nil {
				return cli.FromSynapse(err, "listing room media")
			}

			return params.Emit(media, func(w io.Writer) error {
				rows := make([][]string, 0, len(media.Local)+len(media.Remote))
				for _, uri := range media.Local {
					rows = append(rows, []string{uri.String(), "local"})
				}
				for _, uri := range media.Remote {
					rows = append(rows, []string{uri.String(), "remote"})
				}
				return params.Table(w, []string{"CONTENT URI", "ORIGIN"}, rows)
			})
		},
	}
}

type quarantineParams struct {
	cli.AdminFlags
	Room string `json:"room" flag:"room" desc:"quarantine all media referenced in this room"`
	User string `json:"user" flag:"user" desc:"quarantine all media uploaded by this local user"`
}

// quarantineResult is the output of media quarantine.
type quarantineResult struct {
	Media       string `json:"media,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Quarantined int    `json:"quarantined"`
}

func quarantineCommand() *cli.Command {
	var params quarantineParams
	const usage = "synadmin media quarantine (<mxc-uri> | --room <room-id> | --user <user-id>) [flags]"

	return &cli.Command{
		Name:    "quarantine",
		Summary: "Quarantine media",
		Description: `Quarantine one piece of media, every piece referenced in a room
(--room), or every piece uploaded by a local user (--user). Protected
media is skipped by --room and --user.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Quarantine one upload",
				Command:     "synadmin media quarantine mxc://example.org/SQfjNAXyTcsPjXZhXdalThLR",
			},
			{
				Description: "Quarantine everything posted in a room",
				Command:     "synadmin media quarantine --room '!spam:example.org'",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("quarantine", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			selectors := len(args)
			if params.Room != "" {
				selectors++
			}
			if params.User != "" {
				selectors++
			}
			if selectors != 1 {
				return cli.Validation("exactly one of a content URI, --room, and --user is required\n\nUsage: %s", usage)
			}

			var result quarantineResult
			var run func(*cli.Connection) error
			switch {
			case params.Room != "":
				roomID, err := cli.ParseRoomID(params.Room)
				if err != nil {
					return err
				}
				result.RoomID = roomID.String()
				run = func(connection *cli.Connection) error {
					count, err := connection.QuarantineRoomMedia(ctx, roomID)
					if err != nil {
						return cli.FromSynapse(err, "quarantining room media")
					}
					result.Quarantined = count
					return nil
				}
			case params.User != "":
				userID, err := cli.ParseUserID(params.User)
				if err != nil {
					return err
				}
				result.UserID = userID.String()
				run = func(connection *cli.Connection) error {
					count, err := connection.QuarantineUserMedia(ctx, userID)
					if err != nil {
						return cli.FromSynapse(err, "quarantining user media")
					}
					result.Quarantined = count
					return nil
				}
			default:
				media, err := cli.ParseContentURI(args[0])
				if err != nil {
					return err
				}
				result.Media = media.String()
				run = func(connection *cli.Connection) error {
					if err := connection.QuarantineMedia(ctx, media); err != nil {
						return cli.FromSynapse(err, "quarantining media")
					}
					result.Quarantined = 1
					return nil
				}
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := run(connection); err != nil {
				return err
			}
			logger.Info("media quarantined",
				"media", result.Media, "room_id", result.RoomID, "user_id", result.UserID,
				"count", result.Quarantined)

			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Quarantined %d media\n", result.Quarantined)
				return err
			})
		},
	}
}

func unquarantineCommand() *cli.Command {
	var params mediaParams
	const usage = "synadmin media unquarantine <mxc-uri> [flags]"

	return &cli.Command{
		Name:    "unquarantine",
		Summary: "Release media from quarantine",
		Usage:   usage,
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("unquarantine", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			media, err := cli.ParseContentURI(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			if err := connection.UnquarantineMedia(ctx, media); err != nil {
				return cli.FromSynapse(err, "releasing media from quarantine")
			}
			logger.Info("media released from quarantine", "media", media.String())

			result := struct {
				Media       string `json:"media"`
				Quarantined bool   `json:"quarantined"`
			}{Media: media.String()}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Released %s from quarantine\n", media)
				return err
			})
		},
	}
}

func protectCommand(protect bool) *cli.Command {
	var params mediaParams
	name, summary := "protect", "Protect local media from bulk quarantine"
	if !protect {
		name, summary = "unprotect", "Remove quarantine protection from local media"
	}
	usage := "synadmin media " + name + " <media-id> [flags]"

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Examples: []cli.Example{
			{Command: "synadmin media " + name + " SQfjNAXyTcsPjXZhXdalThLR"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			mediaID := args[0]
			if mediaID == "" {
				return cli.Validation("media ID must not be empty")
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			call := connection.ProtectMedia
			if !protect {
				call = connection.UnprotectMedia
			}
			if err := call(ctx, mediaID); err != nil {
				return cli.FromSynapse(err, name+" media")
			}
			logger.Info("media protection updated", "media_id", mediaID, "protected", protect)

			result := struct {
				MediaID   string `json:"media_id"`
				Protected bool   `json:"protected"`
			}{MediaID: mediaID, Protected: protect}
			return params.Emit(result, func(w io.Writer) error {
				state := "protected"
				if !protect {
					state = "unprotected"
				}
				_, err := fmt.Fprintf(w, "%s is %s\n", mediaID, state)
				return err
			})
		},
	}
}

func deleteCommand() *cli.Command {
	var params mediaParams
	const usage = "synadmin media delete <mxc-uri> [flags]"

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete one piece of local media",
		Description: `Delete a piece of media stored on this homeserver, including its
thumbnails. Remote media cannot be deleted; see "media purge-cache".`,
		Usage: usage,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			media, err := cli.ParseContentURI(args[0])
			if err != nil {
				return err
			}
			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			deleted, err := connection.DeleteMedia(ctx, media)
			if err != nil {
				return cli.FromSynapse(err, "deleting media")
			}
			logger.Info("media deleted", "media", media.String(), "total", deleted.Total)
			return params.Emit(deleted, func(w io.Writer) error {
				return WriteDeleted(w, deleted)
			})
		},
	}
}

type deleteBeforeParams struct {
	cli.AdminFlags
	Before       string `json:"before"        flag:"before"        desc:"delete media last accessed before this instant (RFC 3339, YYYY-MM-DD, epoch ms, or 90d for 90 days ago) (required)"`
	SizeGT       *int64 `json:"size_gt"       flag:"size-gt"       desc:"only delete media larger than this many bytes"`
	KeepProfiles *bool  `json:"keep_profiles" flag:"keep-profiles" desc:"skip media used as avatars (server default true)"`
}

func deleteBeforeCommand(clk clock.Clock) *cli.Command {
	var params deleteBeforeParams
	const usage = "synadmin media delete-before --before <time> [flags]"

	return &cli.Command{
		Name:    "delete-before",
		Summary: "Delete local media not accessed since a point in time",
		Description: `Delete local media last accessed before --before. Media used as user
avatars is kept unless --keep-profiles=false is given.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Delete uploads over 10 MiB untouched for a year",
				Command:     "synadmin media delete-before --before 365d --size-gt 10485760",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete-before", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			if params.Before == "" {
				return cli.Validation("--before is required")
			}
			before, err := cli.ParseTime(params.Before, clk.Now())
			if err != nil {
				return cli.Validation("--before: %w", err)
			}
			if params.SizeGT != nil && *params.SizeGT < 0 {
				return cli.Validation("--size-gt must not be negative")
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			deleted, err := connection.DeleteMediaBefore(ctx, synapse.DeleteMediaQuery{
				Before:          before,
				SizeGreaterThan: params.SizeGT,
				KeepProfiles:    params.KeepProfiles,
			})
			if err != nil {
				return cli.FromSynapse(err, "deleting media")
			}
			logger.Info("old media deleted", "before", before, "total", deleted.Total)
			return params.Emit(deleted, func(w io.Writer) error {
				return WriteDeleted(w, deleted)
			})
		},
	}
}

type purgeCacheParams struct {
	cli.AdminFlags
	Before string `json:"before" flag:"before" desc:"purge remote media last accessed before this instant (RFC 3339, YYYY-MM-DD, epoch ms, or 30d for 30 days ago) (required)"`
}

func purgeCacheCommand(clk clock.Clock) *cli.Command {
	var params purgeCacheParams
	const usage = "synadmin media purge-cache --before <time> [flags]"

	return &cli.Command{
		Name:    "purge-cache",
		Summary: "Purge cached remote media",
		Description: `Delete this homeserver's cached copies of remote media last accessed
before --before. The media stays available from its origin server and
is fetched again on demand.`,
		Usage: usage,
		Examples: []cli.Example{
			{Command: "synadmin media purge-cache --before 30d"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("purge-cache", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			if params.Before == "" {
				return cli.Validation("--before is required")
			}
			before, err := cli.ParseTime(params.Before, clk.Now())
			if err != nil {
				return cli.Validation("--before: %w", err)
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			deleted, err := connection.PurgeMediaCache(ctx, before)
			if err != nil {
				return cli.FromSynapse(err, "purging remote media cache")
			}
			logger.Info("remote media cache purged", "before", before, "deleted", deleted)

			result := struct {
				Deleted int `json:"deleted"`
			}{Deleted: deleted}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Purged %d cached remote media\n", deleted)
				return err
			})
		},
	}
}

// WriteDeleted prints the media IDs removed by a deletion followed by
// a count.
func WriteDeleted(w io.Writer, deleted synapse.DeletedMedia) error {
	for _, mediaID := range deleted.DeletedMedia {
		if _, err := fmt.Fprintln(w, mediaID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Deleted %d media\n", deleted.Total)
	return err
}
