// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRoomID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid simple", input: "!abc123:example.org"},
		{name: "valid with port in server", input: "!opaque:localhost:8008"},
		{name: "empty string", input: "", wantErr: "empty room ID"},
		{name: "missing bang prefix", input: "abc123:example.org", wantErr: "must start with '!'"},
		{name: "wrong sigil", input: "#room:example.org", wantErr: "must start with '!'"},
		{name: "missing server", input: "!abc123", wantErr: "missing ':server' suffix"},
		{name: "empty local part", input: "!:example.org", wantErr: "empty localpart"},
		{name: "empty server name", input: "!abc123:", wantErr: "server name is empty"},
		{name: "slash in server", input: "!abc:example.org/evil", wantErr: "invalid character"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			roomID, err := ParseRoomID(test.input)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseRoomID(%q) = %v, want error containing %q", test.input, roomID, test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoomID(%q) failed: %v", test.input, err)
			}
			if roomID.String() != test.input {
				t.Errorf("String() = %q, want %q", roomID.String(), test.input)
			}
		})
	}
}

func TestParseUserID(t *testing.T) {
	userID, err := ParseUserID("@alice:example.org")
	if err != nil {
		t.Fatalf("ParseUserID failed: %v", err)
	}
	if userID.Localpart() != "alice" {
		t.Errorf("Localpart() = %q, want %q", userID.Localpart(), "alice")
	}
	if userID.Server().String() != "example.org" {
		t.Errorf("Server() = %q, want %q", userID.Server(), "example.org")
	}

	for _, invalid := range []string{"", "alice:example.org", "@:example.org", "@alice", "@alice:"} {
		if _, err := ParseUserID(invalid); err == nil {
			t.Errorf("ParseUserID(%q) succeeded, want error", invalid)
		}
	}
}

func TestNewUserID(t *testing.T) {
	userID, err := NewUserID("admin", MustParseServerName("example.org"))
	if err != nil {
		t.Fatalf("NewUserID failed: %v", err)
	}
	if userID.String() != "@admin:example.org" {
		t.Errorf("NewUserID = %q", userID)
	}
}

func TestParseEventID(t *testing.T) {
	for _, valid := range []string{"$abc", "$old:example.org"} {
		if _, err := ParseEventID(valid); err != nil {
			t.Errorf("ParseEventID(%q) failed: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "$", "abc"} {
		if _, err := ParseEventID(invalid); err == nil {
			t.Errorf("ParseEventID(%q) succeeded, want error", invalid)
		}
	}
}

func TestRoomIDOrAlias(t *testing.T) {
	alias, err := ParseRoomIDOrAlias("#general:example.org")
	if err != nil {
		t.Fatalf("alias: %v", err)
	}
	if !alias.IsAlias() {
		t.Error("IsAlias() = false for an alias")
	}
	if _, ok := alias.RoomID(); ok {
		t.Error("RoomID() ok = true for an alias")
	}

	roomID, err := ParseRoomIDOrAlias("!abc:example.org")
	if err != nil {
		t.Fatalf("room ID: %v", err)
	}
	if got, ok := roomID.RoomID(); !ok || got.String() != "!abc:example.org" {
		t.Errorf("RoomID() = %q, %v", got, ok)
	}

	if _, err := ParseRoomIDOrAlias("@user:example.org"); err == nil {
		t.Error("expected error for a user ID")
	}
}

func TestParseContentURI(t *testing.T) {
	uri, err := ParseContentURI("mxc://example.org/AbCdEf123")
	if err != nil {
		t.Fatalf("ParseContentURI failed: %v", err)
	}
	if uri.Server().String() != "example.org" || uri.MediaID() != "AbCdEf123" {
		t.Errorf("parsed = (%q, %q)", uri.Server(), uri.MediaID())
	}
	if uri.String() != "mxc://example.org/AbCdEf123" {
		t.Errorf("String() = %q", uri.String())
	}

	for _, invalid := range []string{"", "https://example.org/x", "mxc://example.org", "mxc://example.org/", "mxc:///abc", "mxc://example.org/a/b"} {
		if _, err := ParseContentURI(invalid); err == nil {
			t.Errorf("ParseContentURI(%q) succeeded, want error", invalid)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type record struct {
		User  UserID     `json:"user"`
		Room  RoomID     `json:"room"`
		Event EventID    `json:"event"`
		Media ContentURI `json:"media"`
		Unset RoomAlias  `json:"unset"`
	}
	input := `{"user":"@a:example.org","room":"!r:example.org","event":"$e","media":"mxc://example.org/m","unset":""}`

	var decoded record
	if err := json.Unmarshal([]byte(input), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Unset.IsZero() {
		t.Errorf("empty alias decoded to %q, want zero value", decoded.Unset)
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(encoded) != input {
		t.Errorf("round trip = %s, want %s", encoded, input)
	}
}

func TestJSONRejectsInvalidIdentifier(t *testing.T) {
	var decoded struct {
		User UserID `json:"user"`
	}
	if err := json.Unmarshal([]byte(`{"user":"not-a-user"}`), &decoded); err == nil {
		t.Fatal("expected an error decoding an invalid user ID")
	}
}
