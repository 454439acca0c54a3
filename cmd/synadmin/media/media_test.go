// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli"
	"github.com/bureau-foundation/synadmin/cmd/synadmin/cli/clitest"
	"github.com/bureau-foundation/synadmin/lib/clock"
	"github.com/bureau-foundation/synadmin/lib/testutil"
)

const adminV1 = "/_synapse/admin/v1"

func execute(t *testing.T, command *cli.Command, args []string) (string, error) {
	t.Helper()
	return clitest.CaptureStdout(t, func() error {
		return command.Execute(context.Background(), args)
	})
}

func TestList(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, adminV1+"/room/%21abc:example.org/media", http.StatusOK, map[string]any{
		"local":  []string{"mxc://example.org/local1"},
		"remote": []string{"mxc://other.org/remote1", "mxc://other.org/remote2"},
	})

	output, err := execute(t, listCommand(), homeserver.Args("!abc:example.org"))
	if err != nil {
		t.Fatalf("media list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 4 {
		t.Fatalf("output lines = %d, want 4:\n%s", len(lines), output)
	}
	if !strings.Contains(lines[1], "mxc://example.org/local1") || !strings.Contains(lines[1], "local") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[3], "remote") {
		t.Errorf("last row = %q", lines[3])
	}
}

func TestQuarantineSelectors(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/media/quarantine/example.org/abc123", http.StatusOK, map[string]any{})
	homeserver.Handle(http.MethodPost, adminV1+"/room/%21spam:example.org/media/quarantine", http.StatusOK, map[string]any{
		"num_quarantined": 7,
	})
	homeserver.Handle(http.MethodPost, adminV1+"/user/@mallory:example.org/media/quarantine", http.StatusOK, map[string]any{
		"num_quarantined": 3,
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"single media without scheme", []string{"example.org/abc123"}, `{"media":"mxc://example.org/abc123","quarantined":1}`},
		{"room", []string{"--room", "!spam:example.org"}, `{"room_id":"!spam:example.org","quarantined":7}`},
		{"user", []string{"--user", "@mallory:example.org"}, `{"user_id":"@mallory:example.org","quarantined":3}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			output, err := execute(t, quarantineCommand(), homeserver.Args(append(test.args, "--json")...))
			if err != nil {
				t.Fatalf("media quarantine: %v", err)
			}
			testutil.RequireJSONEqual(t, output, test.want)
		})
	}
}

func TestQuarantineRequiresOneSelector(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	for _, args := range [][]string{
		nil,
		{"mxc://example.org/abc", "--room", "!spam:example.org"},
		{"--room", "!spam:example.org", "--user", "@mallory:example.org"},
	} {
		_, err := execute(t, quarantineCommand(), homeserver.Args(args...))
		if cli.CategoryOf(err) != cli.CategoryValidation {
			t.Errorf("args %q: error = %v, want validation", args, err)
		}
	}
	if len(homeserver.Requests()) != 0 {
		t.Error("request sent despite invalid selectors")
	}
}

func TestProtectAndUnprotect(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/media/protect/abc123", http.StatusOK, map[string]any{})
	homeserver.Handle(http.MethodPost, adminV1+"/media/unprotect/abc123", http.StatusOK, map[string]any{})

	output, err := execute(t, protectCommand(true), homeserver.Args("abc123"))
	if err != nil {
		t.Fatalf("media protect: %v", err)
	}
	if strings.TrimSpace(output) != "abc123 is protected" {
		t.Errorf("output = %q", output)
	}
	if _, err := execute(t, protectCommand(false), homeserver.Args("abc123")); err != nil {
		t.Fatalf("media unprotect: %v", err)
	}
	if path := homeserver.LastRequest(t).Path; path != adminV1+"/media/unprotect/abc123" {
		t.Errorf("path = %q", path)
	}
}

func TestDelete(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodDelete, adminV1+"/media/example.org/abc123", http.StatusOK, map[string]any{
		"deleted_media": []string{"abc123"}, "total": 1,
	})

	output, err := execute(t, deleteCommand(), homeserver.Args("mxc://example.org/abc123"))
	if err != nil {
		t.Fatalf("media delete: %v", err)
	}
	if output != "abc123\nDeleted 1 media\n" {
		t.Errorf("output = %q", output)
	}
}

func TestDeleteRemoteMediaForbidden(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodDelete, adminV1+"/media/other.org/abc123", http.StatusBadRequest, map[string]any{
		"errcode": "M_UNKNOWN", "error": "Can only delete local media",
	})

	_, err := execute(t, deleteCommand(), homeserver.Args("mxc://other.org/abc123"))
	if err == nil || !strings.Contains(err.Error(), "Can only delete local media") {
		t.Fatalf("error = %v", err)
	}
}

func TestDeleteBefore(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/media/delete", http.StatusOK, map[string]any{
		"deleted_media": []string{"a", "b"}, "total": 2,
	})

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	output, err := execute(t, deleteBeforeCommand(clock.Fake(now)), homeserver.Args(
		"--before", "1d", "--size-gt", "0", "--keep-profiles=false", "--json"))
	if err != nil {
		t.Fatalf("media delete-before: %v", err)
	}
	testutil.RequireJSONEqual(t, output, `{"deleted_media":["a","b"],"total":2}`)

	request := homeserver.LastRequest(t)
	want := "before_ts=1748692800000&keep_profiles=false&size_gt=0"
	if request.Query != want {
		t.Errorf("query = %q, want %q", request.Query, want)
	}
	if len(request.Body) != 0 {
		t.Errorf("body = %s, want none", request.Body)
	}
}

func TestDeleteBeforeValidation(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	fake := clock.Fake(time.Unix(0, 0))
	for _, args := range [][]string{
		nil,
		{"--before", "yesterday"},
		{"--before", "1d", "--size-gt", "-1"},
	} {
		_, err := execute(t, deleteBeforeCommand(fake), homeserver.Args(args...))
		if cli.CategoryOf(err) != cli.CategoryValidation {
			t.Errorf("args %q: error = %v, want validation", args, err)
		}
	}
}

func TestPurgeCache(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/purge_media_cache", http.StatusOK, map[string]any{
		"deleted": 12,
	})

	output, err := execute(t, purgeCacheCommand(clock.Fake(time.Unix(0, 0))), homeserver.Args(
		"--before", "2025-01-01T00:00:00Z"))
	if err != nil {
		t.Fatalf("media purge-cache: %v", err)
	}
	if strings.TrimSpace(output) != "Purged 12 cached remote media" {
		t.Errorf("output = %q", output)
	}
	if query := homeserver.LastRequest(t).Query; query != "before_ts=1735689600000" {
		t.Errorf("query = %q", query)
	}
}
