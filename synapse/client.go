// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the scheme and host of the homeserver, without port or
	// path (e.g., "http://localhost", "https://matrix.example.org").
	BaseURL string

	// Port is the port the admin API listens on (e.g., 8008).
	Port int

	// AccessToken is the access token of a server admin. It is fixed into
	// the default headers at construction.
	AccessToken string

	// HTTPClient is used for all requests. If nil, http.DefaultClient is
	// used. Timeouts, TLS, proxies and connection pooling are its
	// concern.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// UserAgent, when set, is sent as the User-Agent header.
	UserAgent string
}

// Client is an authenticated handle on one homeserver's admin API.
//
// A Client holds no per-call state and is never modified after
// NewClient returns, so any number of goroutines may issue calls
// through it concurrently. There is no Close: the HTTP transport's
// lifetime is the Client's lifetime.
type Client struct {
	baseURL    string
	port       int
	headers    http.Header
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client from config. The only construction failure
// is an access token that cannot be carried in an HTTP header value,
// reported as an *Error of KindHeaderConstruction. The base URL is
// validated per call, when the request URL is composed.
func NewClient(config ClientConfig) (*Client, error) {
	authorization := "Bearer " + config.AccessToken
	if !httpguts.ValidHeaderFieldValue(authorization) {
		return nil, &Error{
			Kind: KindHeaderConstruction,
			Err:  fmt.Errorf("access token contains characters not permitted in an HTTP header"),
		}
	}

	headers := http.Header{}
	headers.Set("Authorization", authorization)
	headers.Set("Accept", "application/json")
	if config.UserAgent != "" {
		headers.Set("User-Agent", config.UserAgent)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		port:       config.Port,
		headers:    headers,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// New creates a Client with the default HTTP client and logger.
func New(baseURL string, port int, accessToken string) (*Client, error) {
	return NewClient(ClientConfig{BaseURL: baseURL, Port: port, AccessToken: accessToken})
}

// BaseURL returns the configured base URL with any trailing slash removed.
func (c *Client) BaseURL() string { return c.baseURL }

// Port returns the configured admin API port.
func (c *Client) Port() int { return c.port }

// URL composes the absolute URL of an admin endpoint on this client's
// homeserver. See BuildURL.
func (c *Client) URL(version APIVersion, path string) (string, error) {
	built, err := BuildURL(c.baseURL, c.port, version, path)
	if err != nil {
		return "", err
	}
	return built.String(), nil
}
