// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a CLI command or command group.
type Command struct {
	// Name is the command name as typed by the user (e.g., "room", "list").
	Name string

	// Summary is a one-line description shown in the parent's help listing.
	Summary string

	// Description is shown in the command's own help output.
	Description string

	// Usage is the usage line (e.g., "synadmin room show <room-id> [flags]").
	// If empty, it is synthesized from the command path.
	Usage string

	// Examples are shown in the help output after the flags.
	Examples []Example

	// Flags returns a configured *pflag.FlagSet for this command. Called
	// lazily on each use. If nil, the command accepts no flags.
	//
	// On a command with Subcommands, the flags are parsed up to the
	// first positional argument, which then selects the subcommand.
	Flags func() *pflag.FlagSet

	// Subcommands are nested commands dispatched by the first positional arg.
	Subcommands []*Command

	// Run executes the command with the positional args left after flag
	// parsing. If both Run and Subcommands are set, Run handles the case
	// where no subcommand is named.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	// Logger builds the logger handed to Run. Commands without one use
	// the nearest ancestor's, falling back to NewCommandLogger at Info.
	Logger func() *slog.Logger

	// parent is set during dispatch to build the full command path for help.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and dispatches to the matching subcommand or Run
// function. It is the entry point of the command tree.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 {
		// Group-level flags come before the subcommand name.
		if c.Flags != nil && len(args) > 0 && strings.HasPrefix(args[0], "-") {
			flagSet := c.Flags()
			flagSet.SetInterspersed(false)
			flagSet.SetOutput(io.Discard)
			if err := flagSet.Parse(args); err != nil {
				return c.flagError(err, args)
			}
			args = flagSet.Args()
		}

		if len(args) > 0 {
			if isHelpFlag(args[0]) {
				c.PrintHelp(os.Stderr)
				return nil
			}
			name := args[0]
			for _, sub := range c.Subcommands {
				if sub.Name == name {
					sub.parent = c
					return sub.Execute(ctx, args[1:])
				}
			}

			if c.Run == nil {
				suggestion := suggestCommand(name, c.Subcommands)
				if suggestion != "" {
					return Validation("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
						name, suggestion, c.fullName())
				}
				return Validation("unknown command %q\n\nRun '%s --help' for usage.",
					name, c.fullName())
			}
		}

		if c.Run == nil {
			c.PrintHelp(os.Stderr)
			return Validation("subcommand required")
		}
		return c.Run(ctx, args, c.logger())
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		// pflag prints its own usage on error; ours carries suggestions.
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			return c.flagError(err, args)
		}
		args = flagSet.Args()
	}

	if c.Run != nil {
		return c.Run(ctx, args, c.logger())
	}

	c.PrintHelp(os.Stderr)
	return fmt.Errorf("no action defined for %q", c.fullName())
}

// flagError formats a flag parse failure with a suggestion for unknown
// flags and a pointer to --help.
func (c *Command) flagError(err error, args []string) error {
	message := err.Error()
	if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand flag") {
		// A fresh flag set: the failed parse may have left state behind.
		if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
			return Validation("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
				message, suggestion, c.fullName())
		}
	}
	return Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
}

// logger returns the logger of the nearest command that defines one.
func (c *Command) logger() *slog.Logger {
	for command := c; command != nil; command = command.parent {
		if command.Logger != nil {
			return command.Logger()
		}
	}
	return NewCommandLogger(slog.LevelInfo)
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", name)
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		if usage := flagSet.FlagUsages(); usage != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usage)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// fullName returns the complete command path (e.g., "synadmin room list").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
