// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bureau-foundation/synadmin/lib/netutil"
)

// endpoint names one admin API call: method, version and escaped path,
// plus an optional query and JSON body.
type endpoint struct {
	method  string
	version APIVersion
	path    string
	query   url.Values
	body    any
}

func get(version APIVersion, path string) endpoint {
	return endpoint{method: http.MethodGet, version: version, path: path}
}

func post(version APIVersion, path string, body any) endpoint {
	return endpoint{method: http.MethodPost, version: version, path: path, body: body}
}

func put(version APIVersion, path string, body any) endpoint {
	return endpoint{method: http.MethodPut, version: version, path: path, body: body}
}

func del(version APIVersion, path string, body any) endpoint {
	return endpoint{method: http.MethodDelete, version: version, path: path, body: body}
}

func (e endpoint) withQuery(query url.Values) endpoint {
	e.query = query
	return e
}

// call performs one admin API exchange and decodes the response into T.
// There is exactly one request per call and no retry.
func call[T any](ctx context.Context, c *Client, e endpoint) (T, error) {
	var zero T

	status, body, err := c.send(ctx, e)
	if err != nil {
		return zero, err
	}

	success := status >= 200 && status < 300
	value, callErr := decodeEnvelope[T](body, success).result()
	if callErr != nil {
		callErr.Method = e.method
		callErr.Path = e.path
		callErr.StatusCode = status
		if callErr.Matrix != nil {
			callErr.Matrix.StatusCode = status
		}
		return zero, callErr
	}
	return value, nil
}

// project runs call and returns one field of the decoded payload. The
// field accessor runs only on success and cannot fail.
func project[T, F any](ctx context.Context, c *Client, e endpoint, field func(T) F) (F, error) {
	value, err := call[T](ctx, c, e)
	if err != nil {
		var zero F
		return zero, err
	}
	return field(value), nil
}

// empty is the payload of endpoints that answer with {}.
type empty struct{}

// send builds and issues the request, returning the status and body.
// Every failure is an *Error carrying the call's method and path.
func (c *Client) send(ctx context.Context, e endpoint) (int, []byte, error) {
	fail := func(kind ErrorKind, err error) (int, []byte, error) {
		return 0, nil, &Error{Kind: kind, Method: e.method, Path: e.path, Err: err}
	}

	requestURL, err := BuildURL(c.baseURL, c.port, e.version, e.path)
	if err != nil {
		urlErr := err.(*Error)
		urlErr.Method = e.method
		return 0, nil, urlErr
	}
	if len(e.query) > 0 {
		requestURL.RawQuery = e.query.Encode()
	}

	var bodyReader io.Reader
	if e.body != nil {
		encoded, err := json.Marshal(e.body)
		if err != nil {
			return fail(KindTransport, fmt.Errorf("encoding request body: %w", err))
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, e.method, requestURL.String(), bodyReader)
	if err != nil {
		return fail(KindTransport, fmt.Errorf("creating request: %w", err))
	}
	request.Header = c.headers.Clone()
	if e.body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("admin request failed",
			"method", e.method,
			"path", e.path,
			"duration", time.Since(start),
			"error", err,
		)
		return fail(KindTransport, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return fail(KindTransport, fmt.Errorf("reading response body: %w", err))
	}

	c.logger.Debug("admin request",
		"method", e.method,
		"path", e.path,
		"status", response.StatusCode,
		"duration", time.Since(start),
	)
	return response.StatusCode, responseBody, nil
}
