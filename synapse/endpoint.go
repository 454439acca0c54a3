// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// APIVersion selects the version segment of an admin API path. The zero
// value is V1.
type APIVersion int

const (
	V1 APIVersion = iota
	V2
)

func (v APIVersion) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("v%d", int(v)+1)
	}
}

// adminPrefix is the fixed path of the Synapse admin API.
const adminPrefix = "/_synapse/admin/"

// BuildURL composes {baseURL}:{port}/_synapse/admin/{version}{path}.
//
// path must begin with "/". Identifiers embedded in path must already be
// escaped (url.PathEscape); BuildURL performs no encoding of its own
// beyond what URL parsing enforces. The result must be an absolute URL
// whose authority carries exactly the configured port, otherwise
// BuildURL returns an *Error of KindURLParse.
func BuildURL(baseURL string, port int, version APIVersion, path string) (*url.URL, error) {
	fail := func(err error) (*url.URL, error) {
		return nil, &Error{Kind: KindURLParse, Path: path, Err: err}
	}
	if !strings.HasPrefix(path, "/") {
		return fail(fmt.Errorf("path %q must begin with '/'", path))
	}
	if version != V1 && version != V2 {
		return fail(fmt.Errorf("unknown API version %d", int(version)))
	}
	if port <= 0 || port > 65535 {
		return fail(fmt.Errorf("port %d out of range", port))
	}

	composed := fmt.Sprintf("%s:%d%s%s%s", strings.TrimRight(baseURL, "/"), port, adminPrefix, version, path)
	parsed, err := url.Parse(composed)
	if err != nil {
		return fail(err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fail(fmt.Errorf("%q is not an absolute URL", composed))
	}
	// A base URL that already carries a port or a path would shift the
	// configured port out of the authority.
	if parsed.Port() != strconv.Itoa(port) || (strings.Contains(parsed.Hostname(), ":") && !strings.HasPrefix(parsed.Host, "[")) {
		return fail(fmt.Errorf("base URL %q must be scheme://host without port or path", baseURL))
	}
	if parsed.User != nil {
		return fail(fmt.Errorf("base URL %q must not carry credentials", baseURL))
	}
	return parsed, nil
}

// escape percent-encodes one identifier for use as a path segment.
func escape(segment string) string {
	return url.PathEscape(segment)
}
