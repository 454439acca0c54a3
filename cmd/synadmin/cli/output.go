// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/synadmin/lib/codec"
	"github.com/bureau-foundation/synadmin/lib/config"
)

// OutputConfig holds the flags that choose how a command prints its
// result. Unset flags fall back to the config file's output section,
// applied by [AdminFlags.Connect] or [OutputConfig.UseConfig].
//
//	if err := params.Emit(rooms, func(w io.Writer) error {
//	    return params.Table(w, []string{"ROOM", "NAME"}, rows)
//	}); err != nil {
//	    return err
//	}
type OutputConfig struct {
	OutputJSON bool
	Format     string
	Color      string

	defaults config.OutputConfig
}

// AddFlags registers the output flags on flagSet.
func (o *OutputConfig) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&o.OutputJSON, "json", false, "output as JSON (same as --format json)")
	flagSet.StringVar(&o.Format, "format", "", "output format: text, json, or cbor (default from config, else text)")
	flagSet.StringVar(&o.Color, "color", "", "color on terminals: auto, always, or never (default from config, else auto)")
}

// UseConfig sets the values unset flags fall back to.
func (o *OutputConfig) UseConfig(defaults config.OutputConfig) {
	o.defaults = defaults
}

// SetJSONOutput forces JSON output, for callers that drive commands
// programmatically.
func (o *OutputConfig) SetJSONOutput(enabled bool) {
	o.OutputJSON = enabled
}

// ResolvedFormat returns the output format in effect.
func (o *OutputConfig) ResolvedFormat() (string, error) {
	format := o.Format
	if o.OutputJSON {
		if format != "" && format != config.FormatJSON {
			return "", Validation("--json conflicts with --format %s", format)
		}
		format = config.FormatJSON
	}
	if format == "" {
		format = o.defaults.Format
	}
	if format == "" {
		format = config.FormatText
	}
	if !slices.Contains(config.Formats, format) {
		return "", Validation("--format must be one of %s, got %q", strings.Join(config.Formats, ", "), format)
	}
	return format, nil
}

// Colorize reports whether output to file should carry ANSI styling.
func (o *OutputConfig) Colorize(file *os.File) bool {
	mode := o.Color
	if mode == "" {
		mode = o.defaults.Color
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Emit writes result to stdout in the selected format. For text output
// it calls text; JSON and CBOR are derived from result's JSON encoding,
// so every format carries the same field names as the admin API.
func (o *OutputConfig) Emit(result any, text func(w io.Writer) error) error {
	format, err := o.ResolvedFormat()
	if err != nil {
		return err
	}

	stdout := os.Stdout
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(normalizeNilSlice(result), "", "  ")
		if err != nil {
			return Internal("encoding JSON output: %w", err)
		}
		data = append(data, '\n')
		if o.Colorize(stdout) {
			if err := quick.Highlight(stdout, string(data), "json", "terminal256", "monokai"); err == nil {
				return nil
			}
		}
		_, err = stdout.Write(data)
		return err

	case config.FormatCBOR:
		data, err := json.Marshal(normalizeNilSlice(result))
		if err != nil {
			return Internal("encoding output: %w", err)
		}
		encoded, err := codec.FromJSON(data)
		if err != nil {
			return Internal("encoding CBOR output: %w", err)
		}
		if term.IsTerminal(int(stdout.Fd())) {
			// Raw CBOR is unreadable on a terminal; show diagnostic notation.
			diagnostic, err := codec.Diagnose(encoded)
			if err != nil {
				return Internal("formatting CBOR output: %w", err)
			}
			_, err = fmt.Fprintln(stdout, diagnostic)
			return err
		}
		_, err = stdout.Write(encoded)
		return err
	}

	return text(stdout)
}

// WriteJSON writes value as indented JSON to stdout.
func WriteJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(normalizeNilSlice(value))
}

// maxColumnWidth caps table cells; longer values are truncated with an
// ellipsis. Full values are available with --json.
const maxColumnWidth = 60

// Table writes rows under headers as aligned columns. Headers are bold
// when w is a terminal that accepts color.
func (o *OutputConfig) Table(w io.Writer, headers []string, rows [][]string) error {
	var headerStyle *lipgloss.Style
	if file, ok := w.(*os.File); ok && o.Colorize(file) {
		// SetColorProfile pins the profile: the renderer otherwise
		// re-detects from the environment.
		renderer := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI256))
		renderer.SetColorProfile(termenv.ANSI256)
		style := renderer.NewStyle().Bold(true)
		headerStyle = &style
	}

	widths := make([]int, len(headers))
	for index, header := range headers {
		widths[index] = lipgloss.Width(header)
	}
	cells := make([][]string, len(rows))
	for rowIndex, row := range rows {
		cells[rowIndex] = make([]string, len(headers))
		for index := range headers {
			if index >= len(row) {
				continue
			}
			cell := strings.ReplaceAll(row[index], "\n", " ")
			if lipgloss.Width(cell) > maxColumnWidth {
				cell = ansi.Truncate(cell, maxColumnWidth, "…")
			}
			cells[rowIndex][index] = cell
			widths[index] = max(widths[index], lipgloss.Width(cell))
		}
	}

	var output strings.Builder
	writeRow := func(row []string, style *lipgloss.Style) {
		for index, cell := range row {
			last := index == len(row)-1
			padding := ""
			if !last {
				padding = strings.Repeat(" ", widths[index]-lipgloss.Width(cell)+2)
			}
			if style != nil {
				cell = style.Render(cell)
			}
			output.WriteString(cell)
			output.WriteString(padding)
		}
		output.WriteString("\n")
	}

	writeRow(headers, headerStyle)
	for _, row := range cells {
		writeRow(row, nil)
	}
	_, err := io.WriteString(w, output.String())
	return err
}

// normalizeNilSlice returns an empty slice of the same type if value is
// a nil slice, so JSON output is [] rather than null.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}

// AdminFlags bundles the connection and output flags of commands that
// call the admin API.
type AdminFlags struct {
	ConnectionConfig
	OutputConfig
}

// AddFlags registers both flag groups.
func (a *AdminFlags) AddFlags(flagSet *pflag.FlagSet) {
	a.ConnectionConfig.AddFlags(flagSet)
	a.OutputConfig.AddFlags(flagSet)
}

// Connect builds the client and applies the config file's output
// defaults.
func (a *AdminFlags) Connect(ctx context.Context, logger *slog.Logger) (*Connection, error) {
	connection, err := a.ConnectionConfig.Connect(ctx, logger)
	if err != nil {
		return nil, err
	}
	a.OutputConfig.UseConfig(connection.Config.Output)
	if _, err := a.ResolvedFormat(); err != nil {
		return nil, err
	}
	return connection, nil
}
