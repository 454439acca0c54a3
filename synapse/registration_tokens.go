// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"
	"time"
)

// RegistrationToken is a token that permits account registration on a
// server with token-gated registration enabled.
type RegistrationToken struct {
	Token string `json:"token"`
	// UsesAllowed is the number of registrations the token permits; nil
	// means unlimited.
	UsesAllowed *int `json:"uses_allowed"`
	// Pending counts registrations in progress with this token.
	Pending int `json:"pending"`
	// Completed counts finished registrations.
	Completed int `json:"completed"`
	// ExpiryTime is when the token stops being accepted; nil means never.
	ExpiryTime *Timestamp `json:"expiry_time"`
}

// IsValid reports whether the token can still be used at now: it has
// not expired and its uses are not exhausted.
func (t RegistrationToken) IsValid(now time.Time) bool {
	if t.ExpiryTime != nil && now.After(t.ExpiryTime.Time) {
		return false
	}
	if t.UsesAllowed != nil && t.Completed+t.Pending >= *t.UsesAllowed {
		return false
	}
	return true
}

// NewRegistrationToken is the request body for creating a token. Every
// field is optional; the server generates a random token when Token is
// nil.
type NewRegistrationToken struct {
	Token       *string    `json:"token,omitempty"`
	UsesAllowed *int       `json:"uses_allowed,omitempty"`
	ExpiryTime  *Timestamp `json:"expiry_time,omitempty"`
	// Length is the length of a generated token (1 to 64).
	Length *int `json:"length,omitempty"`
}

// RegistrationTokenUpdate is the request body for updating a token.
// Only the fields that are set are changed.
type RegistrationTokenUpdate struct {
	UsesAllowed *int       `json:"uses_allowed,omitempty"`
	ExpiryTime  *Timestamp `json:"expiry_time,omitempty"`
}

// RegistrationTokens lists registration tokens. A nil valid lists all
// tokens; otherwise only valid or only invalid tokens are listed.
func (c *Client) RegistrationTokens(ctx context.Context, valid *bool) ([]RegistrationToken, error) {
	type response struct {
		RegistrationTokens []RegistrationToken `json:"registration_tokens"`
	}
	query := newQuery().optionalBool("valid", valid).encode()
	return project(ctx, c, get(V1, "/registration_tokens").withQuery(query),
		func(r response) []RegistrationToken { return r.RegistrationTokens })
}

// RegistrationToken returns one token.
func (c *Client) RegistrationToken(ctx context.Context, token string) (RegistrationToken, error) {
	return call[RegistrationToken](ctx, c, get(V1, "/registration_tokens/"+escape(token)))
}

// CreateRegistrationToken creates a token and returns it as stored.
func (c *Client) CreateRegistrationToken(ctx context.Context, request NewRegistrationToken) (RegistrationToken, error) {
	return call[RegistrationToken](ctx, c, post(V1, "/registration_tokens/new", request))
}

// UpdateRegistrationToken changes a token's limits and returns it as
// stored.
func (c *Client) UpdateRegistrationToken(ctx context.Context, token string, update RegistrationTokenUpdate) (RegistrationToken, error) {
	return call[RegistrationToken](ctx, c, put(V1, "/registration_tokens/"+escape(token), update))
}

// DeleteRegistrationToken deletes a token.
func (c *Client) DeleteRegistrationToken(ctx context.Context, token string) error {
	_, err := call[empty](ctx, c, del(V1, "/registration_tokens/"+escape(token), nil))
	return err
}
