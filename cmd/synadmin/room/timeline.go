// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/synapse"
)

type messagesParams struct {
	cli.AdminFlags
	From       string  `json:"from"        flag:"from"        desc:"pagination token to start from (required; from a previous page or room context)"`
	To         *string `json:"to"          flag:"to"          desc:"pagination token to stop at"`
	Limit      *int    `json:"limit"       flag:"limit"       desc:"maximum events to return (server default 10)"`
	Dir        string  `json:"dir"         flag:"dir"         desc:"f (oldest first) or b (newest first)"`
	FilterFile string  `json:"-"           flag:"filter-file" desc:"RoomEventFilter JSON file (comments allowed; - for stdin)"`
}

func messagesCommand() *cli.Command {
	var params messagesParams
	const usage = "synadmin room messages <room-id> --from <token> [flags]"

	return &cli.Command{
		Name:    "messages",
		Summary: "Page through a room's timeline",
		Description: `Page through the events of a room. Start from a pagination token,
such as the "start" or "end" of "synadmin room context".

The next page's token is printed to stderr.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "The ten newest messages before a token",
				Command:     "synadmin room messages '!abc:example.org' --from t123-456_0_0 --dir b --limit 10",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("messages", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			if params.From == "" {
				return cli.Validation("--from is required")
			}
			direction, err := cli.ParseDirection(params.Dir)
			if err != nil {
				return err
			}
			filter, err := readFilter(params.FilterFile)
			if err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			messages, err := connection.RoomMessages(ctx, roomID, synapse.RoomMessagesQuery{
				From:   params.From,
				To:     params.To,
				Limit:  params.Limit,
				Filter: filter,
				Dir:    direction,
			})
			if err != nil {
				return cli.FromSynapse(err, "fetching room messages")
			}

			return params.Emit(messages, func(w io.Writer) error {
				if err := params.Table(w, eventHeaders, eventRows(messages.Chunk)); err != nil {
					return err
				}
				if messages.End != nil {
					fmt.Fprintf(os.Stderr, "next page: --from %s\n", *messages.End)
				}
				return nil
			})
		},
	}
}

type contextParams struct {
	cli.AdminFlags
	Limit      *int   `json:"limit" flag:"limit"       desc:"maximum events to return around the event"`
	FilterFile string `json:"-"     flag:"filter-file" desc:"RoomEventFilter JSON file (comments allowed; - for stdin)"`
}

func contextCommand() *cli.Command {
	var params contextParams
	const usage = "synadmin room context <room-id> <event-id> [flags]"

	return &cli.Command{
		Name:    "context",
		Summary: "Show an event with the events around it",
		Description: `Show an event together with the events before and after it and the
room state at that point. Works for rooms the admin is not in.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Five events either side of a reported event",
				Command:     "synadmin room context '!abc:example.org' '$Mjc2OTk5:example.org' --limit 5",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("context", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 2, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			eventID, err := cli.ParseEventID(args[1])
			if err != nil {
				return err
			}
			filter, err := readFilter(params.FilterFile)
			if err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			eventContext, err := connection.EventContext(ctx, roomID, eventID, synapse.EventContextQuery{
				Limit:  params.Limit,
				Filter: filter,
			})
			if err != nil {
				return cli.FromSynapse(err, "fetching event context")
			}

			return params.Emit(eventContext, func(w io.Writer) error {
				// Oldest first: events_before is returned newest first.
				var timeline []synapse.Event
				for index := len(eventContext.EventsBefore) - 1; index >= 0; index-- {
					timeline = append(timeline, eventContext.EventsBefore[index])
				}
				if eventContext.Event != nil {
					timeline = append(timeline, *eventContext.Event)
				}
				timeline = append(timeline, eventContext.EventsAfter...)
				return params.Table(w, eventHeaders, eventRows(timeline))
			})
		},
	}
}

type findEventParams struct {
	cli.AdminFlags
	At  string `json:"at"  flag:"at"  desc:"instant to search from (RFC 3339, YYYY-MM-DD, epoch ms, or 30d for 30 days ago) (required)"`
	Dir string `json:"dir" flag:"dir" desc:"f finds the first event after the instant, b the last event before it" default:"f"`
}

func findEventCommand() *cli.Command {
	var params findEventParams
	const usage = "synadmin room find-event <room-id> --at <time> [flags]"

	return &cli.Command{
		Name:    "find-event",
		Summary: "Find the event closest to a point in time",
		Description: `Print the ID of the event closest to an instant, searching forward or
backward. Useful as the starting point of "purge-history start --event".`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "The last event before the start of the year",
				Command:     "synadmin room find-event '!abc:example.org' --at 2025-01-01 --dir b",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("find-event", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 1, usage); err != nil {
				return err
			}
			roomID, err := cli.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			if params.At == "" {
				return cli.Validation("--at is required")
			}
			at, err := cli.ParseTime(params.At, time.Now())
			if err != nil {
				return cli.Validation("--at: %w", err)
			}
			direction, err := cli.ParseDirection(params.Dir)
			if err != nil {
				return err
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			eventID, err := connection.TimestampToEvent(ctx, roomID, synapse.TimestampToEventQuery{
				Timestamp: at,
				Dir:       direction,
			})
			if err != nil {
				return cli.FromSynapse(err, "finding event")
			}
			if eventID.IsZero() {
				return cli.NotFound("no event in %s %s %s", roomID, directionWord(direction), cli.FormatTime(at))
			}

			result := struct {
				EventID string `json:"event_id"`
			}{EventID: eventID.String()}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, eventID)
				return err
			})
		},
	}
}

func directionWord(direction synapse.Direction) string {
	if direction == synapse.Backward {
		return "before"
	}
	return "after"
}

var eventHeaders = []string{"TIME", "SENDER", "TYPE", "BODY"}

func eventRows(events []synapse.Event) [][]string {
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{
			cli.FormatTimestamp(event.OriginServerTS),
			event.Sender.String(),
			event.Type,
			eventBody(event),
		})
	}
	return rows
}

// eventBody returns the body of message events and the raw content of
// everything else.
func eventBody(event synapse.Event) string {
	var message struct {
		Body string `json:"body"`
	}
	if json.Unmarshal(event.Content, &message) == nil && message.Body != "" {
		return message.Body
	}
	return string(event.Content)
}

func readFilter(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	return cli.ReadJSONFile(path)
}
