// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/synadmin/synapse"
)

// Field is one labelled value of a detail view.
type Field struct {
	Name  string
	Value string
}

// WriteFields writes fields as aligned "Name:  value" lines.
func WriteFields(w io.Writer, fields []Field) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", field.Name, field.Value)
	}
	return tw.Flush()
}

// OrDash returns *value, or "-" when value is nil or empty.
func OrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

// FormatTimestamp renders a timestamp in RFC 3339 UTC, or "-" for nil.
func FormatTimestamp(timestamp *synapse.Timestamp) string {
	if timestamp == nil {
		return "-"
	}
	return FormatTime(timestamp.Time)
}

// FormatTime renders t in RFC 3339 UTC, or "-" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatOptionalInt renders *value, or fallback when value is nil.
func FormatOptionalInt(value *int, fallback string) string {
	if value == nil {
		return fallback
	}
	return strconv.Itoa(*value)
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	divisor, exponent := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		divisor *= unit
		exponent++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(divisor), "KMGTPE"[exponent])
}
