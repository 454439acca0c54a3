// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// recordedRequest is what the fake server saw.
type recordedRequest struct {
	method  string
	path    string // escaped form
	query   string
	body    map[string]any
	hasBody bool
}

// newRecordingClient returns a client whose server records each request
// and answers with status and response.
func newRecordingClient(t *testing.T, status int, response string) (*Client, *recordedRequest) {
	t.Helper()
	recorded := &recordedRequest{}
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		recorded.method = request.Method
		recorded.path = request.URL.EscapedPath()
		recorded.query = request.URL.RawQuery
		data, err := io.ReadAll(request.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		if len(data) > 0 {
			recorded.hasBody = true
			if err := json.Unmarshal(data, &recorded.body); err != nil {
				t.Errorf("request body is not a JSON object: %s", data)
			}
			if request.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", request.Header.Get("Content-Type"))
			}
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		io.WriteString(writer, response)
	})
	return client, recorded
}

func (r *recordedRequest) expect(t *testing.T, method, path, query string) {
	t.Helper()
	if r.method != method {
		t.Errorf("method = %s, want %s", r.method, method)
	}
	if r.path != path {
		t.Errorf("path = %s, want %s", r.path, path)
	}
	if r.query != query {
		t.Errorf("query = %q, want %q", r.query, query)
	}
}

var (
	testRoom  = ref.MustParseRoomID("!abc:example.org")
	testUser  = ref.MustParseUserID("@alice:example.org")
	testEvent = ref.MustParseEventID("$event")
)

const (
	escapedRoom = "%21abc:example.org"
	adminV1     = "/_synapse/admin/v1"
	adminV2     = "/_synapse/admin/v2"
)

func TestRegistrationTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("list valid", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"registration_tokens":[
			{"token":"abcd","uses_allowed":3,"pending":0,"completed":1,"expiry_time":null},
			{"token":"efgh","uses_allowed":null,"pending":1,"completed":1,"expiry_time":1700000000000}]}`)
		tokens, err := client.RegistrationTokens(ctx, Ptr(true))
		if err != nil {
			t.Fatalf("RegistrationTokens failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/registration_tokens", "valid=true")
		if len(tokens) != 2 || tokens[0].Token != "abcd" || *tokens[0].UsesAllowed != 3 {
			t.Fatalf("tokens = %+v", tokens)
		}
		if tokens[1].ExpiryTime == nil || tokens[1].ExpiryTime.Millis() != 1700000000000 {
			t.Errorf("expiry = %v", tokens[1].ExpiryTime)
		}
	})

	t.Run("list all sends no query", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"registration_tokens":[]}`)
		if _, err := client.RegistrationTokens(ctx, nil); err != nil {
			t.Fatalf("RegistrationTokens failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/registration_tokens", "")
	})

	t.Run("create", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK,
			`{"token":"generated","uses_allowed":null,"pending":0,"completed":0,"expiry_time":null}`)
		token, err := client.CreateRegistrationToken(ctx, NewRegistrationToken{Length: Ptr(16)})
		if err != nil {
			t.Fatalf("CreateRegistrationToken failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/registration_tokens/new", "")
		if len(recorded.body) != 1 || recorded.body["length"] != float64(16) {
			t.Errorf("body = %v", recorded.body)
		}
		if token.Token != "generated" {
			t.Errorf("token = %+v", token)
		}
	})

	t.Run("update", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK,
			`{"token":"abcd","uses_allowed":10,"pending":0,"completed":0,"expiry_time":null}`)
		_, err := client.UpdateRegistrationToken(ctx, "abcd", RegistrationTokenUpdate{
			ExpiryTime: Ptr(TimestampFromMillis(1_800_000_000_000)),
		})
		if err != nil {
			t.Fatalf("UpdateRegistrationToken failed: %v", err)
		}
		recorded.expect(t, http.MethodPut, adminV1+"/registration_tokens/abcd", "")
		if recorded.body["expiry_time"] != float64(1_800_000_000_000) || len(recorded.body) != 1 {
			t.Errorf("body = %v", recorded.body)
		}
	})

	t.Run("delete", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{}`)
		if err := client.DeleteRegistrationToken(ctx, "abcd"); err != nil {
			t.Fatalf("DeleteRegistrationToken failed: %v", err)
		}
		recorded.expect(t, http.MethodDelete, adminV1+"/registration_tokens/abcd", "")
		if recorded.hasBody {
			t.Error("DELETE sent a body")
		}
	})

	t.Run("not found", func(t *testing.T) {
		client, _ := newRecordingClient(t, http.StatusNotFound, `{"errcode":"M_NOT_FOUND","error":"No such registration token: nope"}`)
		_, err := client.RegistrationToken(ctx, "nope")
		if !IsMatrixError(err, ErrCodeNotFound) {
			t.Fatalf("error = %v, want M_NOT_FOUND", err)
		}
	})
}

func TestRegistrationTokenIsValid(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		token RegistrationToken
		want  bool
	}{
		{"unlimited", RegistrationToken{Token: "a"}, true},
		{"expired", RegistrationToken{ExpiryTime: Ptr(NewTimestamp(now.Add(-time.Hour)))}, false},
		{"not yet expired", RegistrationToken{ExpiryTime: Ptr(NewTimestamp(now.Add(time.Hour)))}, true},
		{"uses exhausted", RegistrationToken{UsesAllowed: Ptr(2), Completed: 1, Pending: 1}, false},
		{"uses remaining", RegistrationToken{UsesAllowed: Ptr(2), Completed: 1}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.token.IsValid(now); got != test.want {
				t.Errorf("IsValid = %v, want %v", got, test.want)
			}
		})
	}
}

func TestEventReports(t *testing.T) {
	ctx := context.Background()
	client, recorded := newRecordingClient(t, http.StatusOK, `{"event_reports":[{"id":2,"received_ts":1700000000000,
		"room_id":"!abc:example.org","name":null,"event_id":"$event","user_id":"@alice:example.org",
		"reason":"spam","score":-100,"sender":"@spammer:example.org","canonical_alias":null}],
		"next_token":3,"total":10}`)

	reports, err := client.EventReports(ctx, EventReportsQuery{Limit: Ptr(1), Dir: Forward, RoomID: Ptr("!abc")})
	if err != nil {
		t.Fatalf("EventReports failed: %v", err)
	}
	recorded.expect(t, http.MethodGet, adminV1+"/event_reports", "dir=f&limit=1&room_id=%21abc")
	if reports.Total != 10 || *reports.NextToken != 3 || len(reports.EventReports) != 1 {
		t.Fatalf("reports = %+v", reports)
	}
	if report := reports.EventReports[0]; *report.Score != -100 || report.Sender.Localpart() != "spammer" {
		t.Errorf("report = %+v", report)
	}

	client, recorded = newRecordingClient(t, http.StatusOK, `{}`)
	if err := client.DeleteEventReport(ctx, 2); err != nil {
		t.Fatalf("DeleteEventReport failed: %v", err)
	}
	recorded.expect(t, http.MethodDelete, adminV1+"/event_reports/2", "")
}

func TestMediaEndpoints(t *testing.T) {
	ctx := context.Background()
	media, err := ref.ParseContentURI("mxc://example.org/AbCd")
	if err != nil {
		t.Fatalf("ParseContentURI: %v", err)
	}

	t.Run("room media", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK,
			`{"local":["mxc://example.org/AbCd"],"remote":["mxc://remote.org/XyZ"]}`)
		listing, err := client.RoomMedia(ctx, testRoom)
		if err != nil {
			t.Fatalf("RoomMedia failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/room/"+escapedRoom+"/media", "")
		if len(listing.Remote) != 1 || listing.Remote[0].Server().String() != "remote.org" {
			t.Errorf("listing = %+v", listing)
		}
	})

	t.Run("quarantine one", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{}`)
		if err := client.QuarantineMedia(ctx, media); err != nil {
			t.Fatalf("QuarantineMedia failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/media/quarantine/example.org/AbCd", "")
	})

	t.Run("quarantine user", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"num_quarantined":7}`)
		count, err := client.QuarantineUserMedia(ctx, testUser)
		if err != nil {
			t.Fatalf("QuarantineUserMedia failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/user/@alice:example.org/media/quarantine", "")
		if count != 7 {
			t.Errorf("count = %d", count)
		}
	})

	t.Run("delete before", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"deleted_media":["AbCd"],"total":1}`)
		result, err := client.DeleteMediaBefore(ctx, DeleteMediaQuery{
			Before:       time.UnixMilli(1_700_000_000_000),
			KeepProfiles: Ptr(true),
		})
		if err != nil {
			t.Fatalf("DeleteMediaBefore failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/media/delete", "before_ts=1700000000000&keep_profiles=true")
		if result.Total != 1 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("purge cache", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"deleted":12}`)
		deleted, err := client.PurgeMediaCache(ctx, time.UnixMilli(5))
		if err != nil {
			t.Fatalf("PurgeMediaCache failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/purge_media_cache", "before_ts=5")
		if deleted != 12 {
			t.Errorf("deleted = %d", deleted)
		}
	})

	t.Run("missing projected field", func(t *testing.T) {
		client, _ := newRecordingClient(t, http.StatusOK, `{}`)
		_, err := client.PurgeMediaCache(ctx, time.UnixMilli(5))
		if KindOf(err) != KindUnrecognizedResponse {
			t.Fatalf("KindOf = %s, want unrecognized_response", KindOf(err))
		}
	})
}

func TestRoomEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"rooms":[],"offset":0,"total_rooms":0}`)
		_, err := client.Rooms(ctx, RoomsQuery{OrderBy: RoomOrderName, Limit: Ptr(50)})
		if err != nil {
			t.Fatalf("Rooms failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/rooms", "limit=50&order_by=name")
	})

	t.Run("state", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"state":[{"type":"m.room.create","sender":"@alice:example.org",
			"state_key":"","content":{"room_version":"10"},"event_id":"$create","origin_server_ts":1}]}`)
		state, err := client.RoomState(ctx, testRoom)
		if err != nil {
			t.Fatalf("RoomState failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/rooms/"+escapedRoom+"/state", "")
		if len(state) != 1 || !state[0].IsState() || state[0].Type != "m.room.create" {
			t.Errorf("state = %+v", state)
		}
	})

	t.Run("timestamp to event", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"event_id":"$found","origin_server_ts":1000}`)
		eventID, err := client.TimestampToEvent(ctx, testRoom, TimestampToEventQuery{
			Timestamp: time.UnixMilli(1000),
			Dir:       Backward,
		})
		if err != nil {
			t.Fatalf("TimestampToEvent failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/rooms/"+escapedRoom+"/timestamp_to_event", "dir=b&ts=1000")
		if eventID.String() != "$found" {
			t.Errorf("eventID = %q", eventID)
		}
	})

	t.Run("event context with filter", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK,
			`{"start":"s1","end":"s2","events_before":[],"events_after":[],"state":[]}`)
		_, err := client.EventContext(ctx, testRoom, testEvent, EventContextQuery{
			Limit:  Ptr(5),
			Filter: json.RawMessage(`{ "types": ["m.room.message"] }`),
		})
		if err != nil {
			t.Fatalf("EventContext failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/rooms/"+escapedRoom+"/context/$event",
			"filter=%7B%22types%22%3A%5B%22m.room.message%22%5D%7D&limit=5")
	})

	t.Run("make room admin without user sends no body", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{}`)
		if err := client.MakeRoomAdmin(ctx, testRoom, nil); err != nil {
			t.Fatalf("MakeRoomAdmin failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/rooms/"+escapedRoom+"/make_room_admin", "")
		if recorded.hasBody {
			t.Errorf("body = %v, want none", recorded.body)
		}
	})

	t.Run("make room admin with user", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{}`)
		if err := client.MakeRoomAdmin(ctx, testRoom, &testUser); err != nil {
			t.Fatalf("MakeRoomAdmin failed: %v", err)
		}
		if recorded.body["user_id"] != "@alice:example.org" {
			t.Errorf("body = %v", recorded.body)
		}
	})

	t.Run("block", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"block":true}`)
		blocked, err := client.SetRoomBlocked(ctx, testRoom, true)
		if err != nil {
			t.Fatalf("SetRoomBlocked failed: %v", err)
		}
		recorded.expect(t, http.MethodPut, adminV1+"/rooms/"+escapedRoom+"/block", "")
		if !blocked || recorded.body["block"] != true {
			t.Errorf("blocked = %v, body = %v", blocked, recorded.body)
		}
	})

	t.Run("join by alias", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"room_id":"!abc:example.org"}`)
		alias, _ := ref.ParseRoomIDOrAlias("#lobby:example.org")
		roomID, err := client.JoinUserToRoom(ctx, alias, testUser)
		if err != nil {
			t.Fatalf("JoinUserToRoom failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/join/%23lobby:example.org", "")
		if roomID != testRoom {
			t.Errorf("roomID = %q", roomID)
		}
	})
}

func TestRoomDeletion(t *testing.T) {
	ctx := context.Background()

	t.Run("v2 delete", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"delete_id":"del123"}`)
		deleteID, err := client.DeleteRoom(ctx, testRoom, DeleteRoomRequest{Block: Ptr(true), Purge: Ptr(false)})
		if err != nil {
			t.Fatalf("DeleteRoom failed: %v", err)
		}
		recorded.expect(t, http.MethodDelete, adminV2+"/rooms/"+escapedRoom, "")
		if deleteID != "del123" {
			t.Errorf("deleteID = %q", deleteID)
		}
		if len(recorded.body) != 2 || recorded.body["block"] != true || recorded.body["purge"] != false {
			t.Errorf("body = %v", recorded.body)
		}
	})

	t.Run("status by id", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"status":"complete","shutdown_room":{
			"kicked_users":["@bob:example.org"],"failed_to_kick_users":[],"local_aliases":[],"new_room_id":null}}`)
		status, err := client.DeleteStatus(ctx, "del123")
		if err != nil {
			t.Fatalf("DeleteStatus failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV2+"/rooms/delete_status/del123", "")
		if !status.Status.Done() || len(status.ShutdownRoom.KickedUsers) != 1 {
			t.Errorf("status = %+v", status)
		}
	})

	t.Run("status by room", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK,
			`{"results":[{"delete_id":"del123","status":"purging"}]}`)
		statuses, err := client.RoomDeleteStatus(ctx, testRoom)
		if err != nil {
			t.Fatalf("RoomDeleteStatus failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV2+"/rooms/"+escapedRoom+"/delete_status", "")
		if len(statuses) != 1 || statuses[0].Status != PurgePurging || statuses[0].Status.Done() {
			t.Errorf("statuses = %+v", statuses)
		}
	})
}

func TestPurgeHistory(t *testing.T) {
	ctx := context.Background()
	client, recorded := newRecordingClient(t, http.StatusOK, `{"purge_id":"p1"}`)
	purgeID, err := client.PurgeHistory(ctx, testRoom, PurgeHistoryRequest{
		EventID:           testEvent,
		DeleteLocalEvents: Ptr(true),
	})
	if err != nil {
		t.Fatalf("PurgeHistory failed: %v", err)
	}
	recorded.expect(t, http.MethodPost, adminV1+"/purge_history/"+escapedRoom+"/$event", "")
	if purgeID != "p1" {
		t.Errorf("purgeID = %q", purgeID)
	}
	if len(recorded.body) != 1 || recorded.body["delete_local_events"] != true {
		t.Errorf("body = %v", recorded.body)
	}
}

func TestBackgroundUpdates(t *testing.T) {
	ctx := context.Background()

	t.Run("status path has a single prefix", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"enabled":true,"current_updates":{"main":[
			{"name":"event_stats","total_item_count":10,"total_duration_ms":1.5,"average_items_per_ms":6.6}]}}`)
		status, err := client.BackgroundUpdateStatus(ctx)
		if err != nil {
			t.Fatalf("BackgroundUpdateStatus failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV1+"/background_updates/status", "")
		if !status.Enabled || status.CurrentUpdates["main"][0].Name != "event_stats" {
			t.Errorf("status = %+v", status)
		}
	})

	t.Run("start job", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{}`)
		if err := client.StartBackgroundUpdateJob(ctx, JobRegenerateDirectory); err != nil {
			t.Fatalf("StartBackgroundUpdateJob failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/background_updates/start_job", "")
		if recorded.body["job_name"] != "regenerate_directory" {
			t.Errorf("body = %v", recorded.body)
		}
	})

	t.Run("disable", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"enabled":false}`)
		enabled, err := client.SetBackgroundUpdatesEnabled(ctx, false)
		if err != nil {
			t.Fatalf("SetBackgroundUpdatesEnabled failed: %v", err)
		}
		if enabled || recorded.body["enabled"] != false {
			t.Errorf("enabled = %v, body = %v", enabled, recorded.body)
		}
	})
}

func TestServerNotice(t *testing.T) {
	ctx := context.Background()
	client, recorded := newRecordingClient(t, http.StatusOK, `{"event_id":"$notice"}`)
	eventID, err := client.UpdateServerNotice(ctx, "txn 1", ServerNotice{
		UserID:  testUser,
		Content: HTMLNotice("maintenance", "<b>maintenance</b>"),
	})
	if err != nil {
		t.Fatalf("UpdateServerNotice failed: %v", err)
	}
	recorded.expect(t, http.MethodPut, adminV1+"/send_server_notice/txn%201", "")
	if eventID.String() != "$notice" {
		t.Errorf("eventID = %q", eventID)
	}
	content, _ := recorded.body["content"].(map[string]any)
	if content["msgtype"] != "m.text" || content["formatted_body"] != "<b>maintenance</b>" {
		t.Errorf("content = %v", content)
	}
	if _, present := recorded.body["type"]; present {
		t.Error("unset type was sent")
	}
}

func TestAccountValidity(t *testing.T) {
	ctx := context.Background()
	client, recorded := newRecordingClient(t, http.StatusOK, `{"expiration_ts":1800000000000}`)
	expiry, err := client.RenewAccount(ctx, AccountValidityUpdate{UserID: testUser})
	if err != nil {
		t.Fatalf("RenewAccount failed: %v", err)
	}
	recorded.expect(t, http.MethodPost, adminV1+"/account_validity/validity", "")
	if !expiry.Equal(time.UnixMilli(1_800_000_000_000)) {
		t.Errorf("expiry = %s", expiry)
	}
	if len(recorded.body) != 1 {
		t.Errorf("body = %v, want only user_id", recorded.body)
	}
}

func TestUserEndpoints(t *testing.T) {
	ctx := context.Background()

	t.Run("show", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"name":"@alice:example.org","admin":false,
			"deactivated":false,"creation_ts":1560432506000,"threepids":[{"medium":"email","address":"a@example.org"}]}`)
		user, err := client.User(ctx, testUser)
		if err != nil {
			t.Fatalf("User failed: %v", err)
		}
		recorded.expect(t, http.MethodGet, adminV2+"/users/@alice:example.org", "")
		if user.Name != testUser || len(user.ThreePIDs) != 1 || user.CreationTS.Millis() != 1560432506000 {
			t.Errorf("user = %+v", user)
		}
	})

	t.Run("deactivate", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"id_server_unbind_result":"success"}`)
		result, err := client.DeactivateUser(ctx, testUser, true)
		if err != nil {
			t.Fatalf("DeactivateUser failed: %v", err)
		}
		recorded.expect(t, http.MethodPost, adminV1+"/deactivate/@alice:example.org", "")
		if result != "success" || recorded.body["erase"] != true {
			t.Errorf("result = %q, body = %v", result, recorded.body)
		}
	})

	t.Run("suspend", func(t *testing.T) {
		client, recorded := newRecordingClient(t, http.StatusOK, `{"user_@alice:example.org_suspended":true}`)
		if err := client.SetUserSuspended(ctx, testUser, true); err != nil {
			t.Fatalf("SetUserSuspended failed: %v", err)
		}
		recorded.expect(t, http.MethodPut, adminV1+"/suspend/@alice:example.org", "")
	})

	t.Run("joined rooms", func(t *testing.T) {
		client, _ := newRecordingClient(t, http.StatusOK, `{"joined_rooms":["!abc:example.org"],"total":1}`)
		rooms, err := client.UserJoinedRooms(ctx, testUser)
		if err != nil {
			t.Fatalf("UserJoinedRooms failed: %v", err)
		}
		if len(rooms) != 1 || rooms[0] != testRoom {
			t.Errorf("rooms = %v", rooms)
		}
	})
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	client, recorded := newRecordingClient(t, http.StatusOK, `{"users":[{"displayname":"Alice","media_count":2,
		"media_length":4096,"user_id":"@alice:example.org"}],"total":1}`)
	stats, err := client.UserMediaStatistics(ctx, MediaStatisticsQuery{OrderBy: MediaOrderMediaLength, Dir: Backward})
	if err != nil {
		t.Fatalf("UserMediaStatistics failed: %v", err)
	}
	recorded.expect(t, http.MethodGet, adminV1+"/statistics/users/media", "dir=b&order_by=media_length")
	if stats.Total != 1 || stats.Users[0].MediaLength != 4096 || stats.NextToken != nil {
		t.Errorf("stats = %+v", stats)
	}
}
