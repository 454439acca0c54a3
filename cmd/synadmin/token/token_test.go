// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli/clitest"
	"github.com/bureau-foundation/synadmin/lib/clock"
)

const tokensPath = "/_synapse/admin/v1/registration_tokens"

// testNow is 2025-01-01T00:00:00Z.
var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func execute(t *testing.T, command *cli.Command, args []string) (string, error) {
	t.Helper()
	return clitest.CaptureStdout(t, func() error {
		return command.Execute(context.Background(), args)
	})
}

func tokenJSON(token string, usesAllowed any, pending, completed int, expiry any) map[string]any {
	return map[string]any{
		"token": token, "uses_allowed": usesAllowed, "pending": pending,
		"completed": completed, "expiry_time": expiry,
	}
}

func TestList(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, tokensPath, http.StatusOK, map[string]any{
		"registration_tokens": []map[string]any{
			tokenJSON("open", nil, 0, 4, nil),
			tokenJSON("spent", 1, 0, 1, nil),
			tokenJSON("stale", 10, 0, 0, testNow.Add(-time.Hour).UnixMilli()),
		},
	})

	output, err := execute(t, listCommand(clock.Fake(testNow)), homeserver.Args())
	if err != nil {
		t.Fatalf("token list: %v", err)
	}
	if query := homeserver.LastRequest(t).Query; query != "" {
		t.Errorf("query = %q, want none", query)
	}

	rows := strings.Split(strings.TrimSpace(output), "\n")[1:]
	want := map[string]string{"open": "true", "spent": "false", "stale": "false"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d:\n%s", len(rows), len(want), output)
	}
	for _, row := range rows {
		fields := strings.Fields(row)
		if valid := fields[len(fields)-1]; valid != want[fields[0]] {
			t.Errorf("token %s valid = %s, want %s", fields[0], valid, want[fields[0]])
		}
	}
	if !strings.Contains(rows[0], "unlimited") || !strings.Contains(rows[0], "never") {
		t.Errorf("open token row = %q", rows[0])
	}
}

func TestListValidFilter(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, tokensPath, http.StatusOK, map[string]any{
		"registration_tokens": []any{},
	})

	for args, want := range map[string]string{"--valid": "valid=true", "--valid=false": "valid=false"} {
		if _, err := execute(t, listCommand(clock.Fake(testNow)), homeserver.Args(args)); err != nil {
			t.Fatalf("token list %s: %v", args, err)
		}
		if query := homeserver.LastRequest(t).Query; query != want {
			t.Errorf("token list %s: query = %q, want %q", args, query, want)
		}
	}
}

func TestCreate(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	expires := testNow.Add(7 * 24 * time.Hour).UnixMilli()
	homeserver.Handle(http.MethodPost, tokensPath+"/new", http.StatusOK, tokenJSON("Gx2mRk9qLw0aZp4T", 1, 0, 0, expires))

	output, err := execute(t, createCommand(clock.Fake(testNow)), homeserver.Args(
		"--uses", "1", "--expires", "+7d", "--length", "16"))
	if err != nil {
		t.Fatalf("token create: %v", err)
	}
	if strings.TrimSpace(output) != "Gx2mRk9qLw0aZp4T" {
		t.Errorf("output = %q", output)
	}

	body := homeserver.LastRequest(t).DecodeBody(t)
	if body["uses_allowed"] != float64(1) || body["length"] != float64(16) || body["expiry_time"] != float64(expires) {
		t.Errorf("body = %v", body)
	}
	if _, present := body["token"]; present {
		t.Errorf("unset token sent: %v", body)
	}
}

func TestCreateValidation(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"token with length", []string{"--token", "abc", "--length", "8"}, "mutually exclusive"},
		{"length too long", []string{"--length", "65"}, "between 1 and 64"},
		{"negative uses", []string{"--uses", "-1"}, "negative"},
		{"expiry in the past", []string{"--expires", "7d"}, "in the past"},
		{"unparseable expiry", []string{"--expires", "next week"}, "invalid time"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := execute(t, createCommand(clock.Fake(testNow)), homeserver.Args(test.args...))
			if cli.CategoryOf(err) != cli.CategoryValidation {
				t.Fatalf("error = %v, want validation", err)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %v, want it to mention %q", err, test.want)
			}
		})
	}
	if len(homeserver.Requests()) != 0 {
		t.Error("request sent despite invalid flags")
	}
}

func TestUpdateSendsOnlyGivenLimits(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPut, tokensPath+"/conference-2025", http.StatusOK, tokenJSON("conference-2025", 300, 2, 150, nil))

	output, err := execute(t, updateCommand(clock.Fake(testNow)), homeserver.Args("conference-2025", "--uses", "300"))
	if err != nil {
		t.Fatalf("token update: %v", err)
	}
	body := homeserver.LastRequest(t).DecodeBody(t)
	if len(body) != 1 || body["uses_allowed"] != float64(300) {
		t.Errorf("body = %v, want only uses_allowed", body)
	}
	for _, want := range []string{"Uses allowed:", "300", "Completed:", "150", "Valid:", "true"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestUpdateRequiresAChange(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	_, err := execute(t, updateCommand(clock.Fake(testNow)), homeserver.Args("conference-2025"))
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestShowUnknownToken(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, tokensPath+"/missing", http.StatusNotFound, map[string]any{
		"errcode": "M_NOT_FOUND", "error": "No such registration token: missing",
	})

	_, err := execute(t, showCommand(clock.Fake(testNow)), homeserver.Args("missing"))
	if cli.CategoryOf(err) != cli.CategoryNotFound {
		t.Fatalf("error = %v, want not_found", err)
	}
}

func TestDelete(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodDelete, tokensPath+"/old", http.StatusOK, map[string]any{})

	output, err := execute(t, deleteCommand(), homeserver.Args("old"))
	if err != nil {
		t.Fatalf("token delete: %v", err)
	}
	if strings.TrimSpace(output) != "Deleted old" {
		t.Errorf("output = %q", output)
	}
}
