// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

const contentURIScheme = "mxc://"

// ContentURI is a validated Matrix content URI (mxc://server/mediaID).
//
// Media admin endpoints address media by (server, media ID) pairs in
// the path, while room media listings return full mxc:// URIs.
// ContentURI bridges the two.
type ContentURI struct {
	server  string
	mediaID string
}

// ParseContentURI validates an mxc:// URI.
func ParseContentURI(raw string) (ContentURI, error) {
	if !strings.HasPrefix(raw, contentURIScheme) {
		return ContentURI{}, fmt.Errorf("content URI must start with %q: %q", contentURIScheme, raw)
	}
	server, mediaID, found := strings.Cut(raw[len(contentURIScheme):], "/")
	if !found {
		return ContentURI{}, fmt.Errorf("content URI missing media ID: %q", raw)
	}
	if err := validateServer(server); err != nil {
		return ContentURI{}, fmt.Errorf("content URI %q: %w", raw, err)
	}
	if err := validateMediaID(mediaID); err != nil {
		return ContentURI{}, fmt.Errorf("content URI %q: %w", raw, err)
	}
	return ContentURI{server: server, mediaID: mediaID}, nil
}

// NewContentURI builds a content URI from its parts.
func NewContentURI(server ServerName, mediaID string) (ContentURI, error) {
	if server.IsZero() {
		return ContentURI{}, fmt.Errorf("content URI: server name is empty")
	}
	if err := validateMediaID(mediaID); err != nil {
		return ContentURI{}, err
	}
	return ContentURI{server: server.name, mediaID: mediaID}, nil
}

// validateMediaID accepts the characters Synapse generates for media IDs
// (and then some): anything printable except '/', '?' and '#'.
func validateMediaID(mediaID string) error {
	if mediaID == "" {
		return fmt.Errorf("media ID is empty")
	}
	for i := 0; i < len(mediaID); i++ {
		c := mediaID[i]
		if c <= ' ' || c == 0x7f || c == '/' || c == '?' || c == '#' {
			return fmt.Errorf("media ID %q: invalid character at position %d", mediaID, i)
		}
	}
	return nil
}

// Server returns the origin server of the media.
func (c ContentURI) Server() ServerName { return ServerName{name: c.server} }

// MediaID returns the media ID without the server.
func (c ContentURI) MediaID() string { return c.mediaID }

// IsZero reports whether the ContentURI is the zero value.
func (c ContentURI) IsZero() bool { return c.mediaID == "" }

// String returns the mxc:// form.
func (c ContentURI) String() string {
	if c.IsZero() {
		return ""
	}
	return contentURIScheme + c.server + "/" + c.mediaID
}

// MarshalText implements encoding.TextMarshaler.
func (c ContentURI) MarshalText() ([]byte, error) { return marshalText(c.String()) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ContentURI) UnmarshalText(data []byte) error {
	return unmarshalText(data, c, ParseContentURI)
}
