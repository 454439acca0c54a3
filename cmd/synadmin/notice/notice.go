// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notice implements the synadmin notice command group, which
// sends server notices: messages delivered to a user in a room owned by
// the homeserver's notices account.
package notice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/synapse"
)

// Command returns the "notice" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "notice",
		Summary: "Send server notices",
		Description: `Send messages to users from the server notices account. Requires
server_notices to be configured on the homeserver.`,
		Subcommands: []*cli.Command{
			sendCommand(uuid.NewString),
		},
	}
}

type sendParams struct {
	cli.AdminFlags
	User        string  `json:"user"         flag:"user"         desc:"local user to notify (required)"`
	Message     string  `json:"message"      flag:"message"      desc:"notice text"`
	Markdown    bool    `json:"markdown"     flag:"markdown"     desc:"render --message as Markdown"`
	ContentFile string  `json:"content_file" flag:"content-file" desc:"raw event content JSON (comments allowed; - for stdin)"`
	Type        *string `json:"type"         flag:"type"         desc:"event type (server default m.room.message)"`
	StateKey    *string `json:"state_key"    flag:"state-key"    desc:"send a state event with this state key"`
	TxnID       string  `json:"txn_id"       flag:"txn-id"       desc:"transaction ID; repeating it does not send a second notice (default: random)"`
}

// sendResult is the output of notice send.
type sendResult struct {
	EventID string `json:"event_id"`
	TxnID   string `json:"txn_id"`
}

func sendCommand(newTxnID func() string) *cli.Command {
	var params sendParams
	const usage = "synadmin notice send --user <user-id> (--message <text> | --content-file <path>) [flags]"

	return &cli.Command{
		Name:    "send",
		Summary: "Send a server notice to a user",
		Description: `Send a notice to a local user. The text of --message is sent as an
m.text message, rendered to HTML first with --markdown; --content-file
sends arbitrary event content.

Notices are sent idempotently under a transaction ID. To retry a send
whose outcome is unknown, repeat it with the --txn-id printed or logged
by the first attempt.`,
		Usage: usage,
		Examples: []cli.Example{
			{
				Description: "Warn a user about upcoming maintenance",
				Command:     "synadmin notice send --user '@alice:example.org' --markdown --message 'Maintenance **tonight** at 22:00 UTC.'",
			},
			{
				Description: "Send custom content from a file",
				Command:     "synadmin notice send --user '@alice:example.org' --content-file notice.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("send", &params) },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, 0, usage); err != nil {
				return err
			}
			if params.User == "" {
				return cli.Validation("--user is required")
			}
			userID, err := cli.ParseUserID(params.User)
			if err != nil {
				return err
			}
			content, err := buildContent(params.Message, params.Markdown, params.ContentFile)
			if err != nil {
				return err
			}
			txnID := params.TxnID
			if txnID == "" {
				txnID = newTxnID()
			}

			connection, err := params.Connect(ctx, logger)
			if err != nil {
				return err
			}
			logger = logger.With("command", "notice/send", "user_id", userID.String(), "txn_id", txnID)
			logger.Debug("sending server notice")

			eventID, err := connection.UpdateServerNotice(ctx, txnID, synapse.ServerNotice{
				UserID:   userID,
				Content:  content,
				Type:     params.Type,
				StateKey: params.StateKey,
			})
			if err != nil {
				return cli.FromSynapse(err, fmt.Sprintf("sending server notice (retry with --txn-id %s)", txnID))
			}
			logger.Info("server notice sent", "event_id", eventID.String())

			result := sendResult{EventID: eventID.String(), TxnID: txnID}
			return params.Emit(result, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, eventID)
				return err
			})
		},
	}
}

// buildContent returns the event content for a notice from exactly one
// of message and contentFile.
func buildContent(message string, markdown bool, contentFile string) (any, error) {
	switch {
	case message == "" && contentFile == "":
		return nil, cli.Validation("one of --message and --content-file is required")
	case message != "" && contentFile != "":
		return nil, cli.Validation("--message and --content-file are mutually exclusive")
	case markdown && contentFile != "":
		return nil, cli.Validation("--markdown applies only to --message")
	case contentFile != "":
		return cli.ReadJSONFile(contentFile)
	case markdown:
		html, err := renderMarkdown(message)
		if err != nil {
			return nil, cli.Internal("rendering Markdown: %w", err)
		}
		return synapse.HTMLNotice(message, html), nil
	default:
		return synapse.TextNotice(message), nil
	}
}

// renderMarkdown converts GitHub-flavored Markdown to the HTML subset
// Matrix clients display. Raw HTML in the source is omitted.
func renderMarkdown(source string) (string, error) {
	var html bytes.Buffer
	renderer := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := renderer.Convert([]byte(source), &html); err != nil {
		return "", err
	}
	return strings.TrimSpace(html.String()), nil
}
