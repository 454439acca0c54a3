// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package user

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

const (
	adminV1   = "/_synapse/admin/v1"
	adminV2   = "/_synapse/admin/v2"
	testAlice = "@alice:example.org"
)

func execute(t *testing.T, command *cli.Command, args []string) (string, error) {
	t.Helper()
	return clitest.CaptureStdout(t, func() error {
		return command.Execute(context.Background(), args)
	})
}

func TestShow(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, adminV2+"/users/"+testAlice, http.StatusOK, map[string]any{
		"name": testAlice, "displayname": "Alice", "admin": true, "deactivated": false,
		"suspended": true, "locked": false, "creation_ts": 1735689600000,
		"threepids": []map[string]any{{"medium": "email", "address": "alice@example.org"}},
	})

	output, err := execute(t, showCommand(), homeserver.Args(testAlice))
	if err != nil {
		t.Fatalf("user show: %v", err)
	}
	for _, want := range []string{"Alice", "suspended", "2025-01-01T00:00:00Z", "email: alice@example.org", "Last seen:"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestList(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, adminV2+"/users", http.StatusOK, map[string]any{
		"users": []map[string]any{
			{"name": testAlice, "admin": false, "deactivated": false},
			{"name": "@bob:example.org", "admin": false, "deactivated": true, "erased": true},
		},
		"next_token": "2",
		"total":      5,
	})

	output, err := execute(t, listCommand(), homeserver.Args(
		"--limit", "2", "--deactivated", "--guests=false", "--order-by", "creation_ts", "--dir", "b", "--name", "ali"))
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	want := "deactivated=true&dir=b&guests=false&limit=2&name=ali&order_by=creation_ts"
	if query := homeserver.LastRequest(t).Query; query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("output lines = %d:\n%s", len(lines), output)
	}
	if !strings.Contains(lines[1], "active") || !strings.Contains(lines[2], "deactivated,erased") {
		t.Errorf("status columns wrong:\n%s", output)
	}
}

func TestListRejectsUnknownOrder(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	_, err := execute(t, listCommand(), homeserver.Args("--order-by", "age"))
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestRooms(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodGet, adminV1+"/users/"+testAlice+"/joined_rooms", http.StatusOK, map[string]any{
		"joined_rooms": []string{"!a:example.org", "!b:example.org"}, "total": 2,
	})

	output, err := execute(t, roomsCommand(), homeserver.Args(testAlice))
	if err != nil {
		t.Fatalf("user rooms: %v", err)
	}
	if output != "!a:example.org\n!b:example.org\n" {
		t.Errorf("output = %q", output)
	}
}

func TestResetPasswordFromFile(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/reset_password/"+testAlice, http.StatusOK, map[string]any{})
	passwordFile := testutil.WriteFile(t, "password", "correct horse battery staple\n")

	if _, err := execute(t, resetPasswordCommand(), homeserver.Args(testAlice, "--password-file", passwordFile)); err != nil {
		t.Fatalf("user reset-password: %v", err)
	}
	testutil.RequireJSONEqual(t, string(homeserver.LastRequest(t).Body),
		`{"new_password":"correct horse battery staple","logout_devices":true}`)

	if _, err := execute(t, resetPasswordCommand(), homeserver.Args(testAlice, "--password-file", passwordFile, "--logout-devices=false")); err != nil {
		t.Fatalf("user reset-password --logout-devices=false: %v", err)
	}
	if body := homeserver.LastRequest(t).DecodeBody(t); body["logout_devices"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestResetPasswordEmptyFile(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	passwordFile := testutil.WriteFile(t, "password", "\n")

	_, err := execute(t, resetPasswordCommand(), homeserver.Args(testAlice, "--password-file", passwordFile))
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if len(homeserver.Requests()) != 0 {
		t.Error("request sent with an empty password")
	}
}

func TestSuspendAndUnsuspend(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.HandleFunc(http.MethodPut, adminV1+"/suspend/"+testAlice, func(writer http.ResponseWriter, _ *http.Request) {
		clitest.WriteJSON(writer, http.StatusOK, map[string]any{"user_" + testAlice + "_suspended": true})
	})

	output, err := execute(t, suspendCommand(true), homeserver.Args(testAlice))
	if err != nil {
		t.Fatalf("user suspend: %v", err)
	}
	if strings.TrimSpace(output) != testAlice+" is suspended" {
		t.Errorf("output = %q", output)
	}
	if body := homeserver.LastRequest(t).DecodeBody(t); body["suspend"] != true {
		t.Errorf("suspend body = %v", body)
	}

	if _, err := execute(t, suspendCommand(false), homeserver.Args(testAlice)); err != nil {
		t.Fatalf("user unsuspend: %v", err)
	}
	if body := homeserver.LastRequest(t).DecodeBody(t); body["suspend"] != false {
		t.Errorf("unsuspend body = %v", body)
	}
}

func TestDeactivate(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/deactivate/@spammer:example.org", http.StatusOK, map[string]any{
		"id_server_unbind_result": "success",
	})

	output, err := execute(t, deactivateCommand(), homeserver.Args("@spammer:example.org", "--erase", "--json"))
	if err != nil {
		t.Fatalf("user deactivate: %v", err)
	}
	testutil.RequireJSONEqual(t, output,
		`{"user_id":"@spammer:example.org","erased":true,"id_server_unbind_result":"success"}`)
	testutil.RequireJSONEqual(t, string(homeserver.LastRequest(t).Body), `{"erase":true}`)
}

func TestDeactivateForbidden(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodPost, adminV1+"/deactivate/@spammer:example.org", http.StatusForbidden, map[string]any{
		"errcode": "M_FORBIDDEN", "error": "You are not a server admin",
	})

	_, err := execute(t, deactivateCommand(), homeserver.Args("@spammer:example.org"))
	if cli.CategoryOf(err) != cli.CategoryForbidden {
		t.Fatalf("error = %v, want forbidden", err)
	}
	if cli.ExitCodeFor(err) != 1 {
		t.Errorf("exit code = %d, want 1", cli.ExitCodeFor(err))
	}
}

func TestRenew(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := now.Add(365 * 24 * time.Hour)
	homeserver.Handle(http.MethodPost, adminV1+"/account_validity/validity", http.StatusOK, map[string]any{
		"expiration_ts": expires.UnixMilli(),
	})

	output, err := execute(t, renewCommand(clock.Fake(now)), homeserver.Args(testAlice, "--expires", "+365d", "--renewal-emails=false"))
	if err != nil {
		t.Fatalf("user renew: %v", err)
	}
	if strings.TrimSpace(output) != testAlice+" expires 2026-01-01T00:00:00Z" {
		t.Errorf("output = %q", output)
	}
	body := homeserver.LastRequest(t).DecodeBody(t)
	if body["user_id"] != testAlice || body["expiration_ts"] != float64(expires.UnixMilli()) || body["enable_renewal_emails"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestDeleteMedia(t *testing.T) {
	homeserver := clitest.NewHomeserver(t)
	homeserver.Handle(http.MethodDelete, adminV1+"/users/"+testAlice+"/media", http.StatusOK, map[string]any{
		"deleted_media": []string{"one", "two"}, "total": 2,
	})

	output, err := execute(t, deleteMediaCommand(), homeserver.Args(testAlice))
	if err != nil {
		t.Fatalf("user delete-media: %v", err)
	}
	if output != "one\ntwo\nDeleted 2 media\n" {
		t.Errorf("output = %q", output)
	}
}
