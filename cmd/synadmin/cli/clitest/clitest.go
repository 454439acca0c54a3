// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clitest provides a fake Synapse admin API and output capture
// for synadmin command tests.
package clitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"

	"github.com/bureau-foundation/synadmin/lib/testutil"
)

// Token is the access token the fake homeserver expects.
const Token = "syt_clitest_admin"

// Request is one request received by the fake homeserver.
type Request struct {
	Method string
	// Path is the escaped request path, including /_synapse/admin/vN.
	Path  string
	Query string
	Body  []byte
}

// DecodeBody unmarshals the request body into a generic map.
func (r Request) DecodeBody(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(r.Body, &body); err != nil {
		t.Fatalf("decoding %s %s body %q: %v", r.Method, r.Path, r.Body, err)
	}
	return body
}

// Homeserver is a fake admin API. Routes are keyed by method and
// escaped path; unrouted requests fail the test and get M_UNRECOGNIZED.
type Homeserver struct {
	server    *httptest.Server
	tokenFile string

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []Request
}

// NewHomeserver starts a fake homeserver for the duration of the test.
// It clears SYNADMIN_CONFIG so the developer's config cannot leak in.
func NewHomeserver(t *testing.T) *Homeserver {
	t.Helper()
	t.Setenv("SYNADMIN_CONFIG", "")

	tokenFile := testutil.WriteFile(t, "token", Token+"\n")

	homeserver := &Homeserver{
		tokenFile: tokenFile,
		routes:    make(map[string]http.HandlerFunc),
	}
	homeserver.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		recorded := Request{
			Method: request.Method,
			Path:   request.URL.EscapedPath(),
			Query:  request.URL.RawQuery,
			Body:   body,
		}

		homeserver.mu.Lock()
		homeserver.requests = append(homeserver.requests, recorded)
		handler := homeserver.routes[recorded.Method+" "+recorded.Path]
		homeserver.mu.Unlock()

		if request.Header.Get("Authorization") != "Bearer "+Token {
			WriteJSON(writer, http.StatusUnauthorized, map[string]any{
				"errcode": "M_UNKNOWN_TOKEN", "error": "Invalid access token",
			})
			return
		}
		if handler == nil {
			t.Errorf("unexpected request %s %s?%s", recorded.Method, recorded.Path, recorded.Query)
			WriteJSON(writer, http.StatusNotFound, map[string]any{
				"errcode": "M_UNRECOGNIZED", "error": "Unrecognized request",
			})
			return
		}
		request.Body = io.NopCloser(bytes.NewReader(body))
		handler(writer, request)
	}))
	t.Cleanup(homeserver.server.Close)
	return homeserver
}

// Handle answers method and path (escaped, e.g.
// "/_synapse/admin/v1/rooms/%21abc:example.org") with status and body
// encoded as JSON.
func (h *Homeserver) Handle(method, path string, status int, body any) {
	h.HandleFunc(method, path, func(writer http.ResponseWriter, _ *http.Request) {
		WriteJSON(writer, status, body)
	})
}

// HandleFunc routes method and path to handler.
func (h *Homeserver) HandleFunc(method, path string, handler http.HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes[method+" "+path] = handler
}

// Requests returns the requests received so far, in order.
func (h *Homeserver) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Request(nil), h.requests...)
}

// LastRequest returns the most recent request, failing the test if
// there was none.
func (h *Homeserver) LastRequest(t *testing.T) Request {
	t.Helper()
	requests := h.Requests()
	if len(requests) == 0 {
		t.Fatal("no request reached the homeserver")
	}
	return requests[len(requests)-1]
}

// Flags returns the connection flags that point a command at the fake
// homeserver with a valid token.
func (h *Homeserver) Flags() []string {
	serverURL, _ := url.Parse(h.server.URL)
	return []string{
		"--homeserver", serverURL.Scheme + "://" + serverURL.Hostname(),
		"--port", serverURL.Port(),
		"--token-file", h.tokenFile,
	}
}

// Args returns args followed by the connection flags.
func (h *Homeserver) Args(args ...string) []string {
	return append(args, h.Flags()...)
}

// WriteJSON writes body as a JSON response with status.
func WriteJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(body)
}

// CaptureStdout runs fn with os.Stdout redirected and returns what it
// wrote along with fn's error.
func CaptureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = writer

	output := make(chan string, 1)
	go func() {
		var buffer bytes.Buffer
		io.Copy(&buffer, reader)
		reader.Close()
		output <- buffer.String()
	}()

	runErr := fn()

	writer.Close()
	os.Stdout = original
	return <-output, runErr
}
