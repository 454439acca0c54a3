// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"context"
	"time"

	"github.com/bureau-foundation/synadmin/lib/ref"
)

// AccountValidityUpdate extends a user's account validity.
type AccountValidityUpdate struct {
	UserID ref.UserID `json:"user_id"`
	// ExpirationTS is the new expiry. The server defaults to now plus
	// the configured validity period.
	ExpirationTS        *Timestamp `json:"expiration_ts,omitempty"`
	EnableRenewalEmails *bool      `json:"enable_renewal_emails,omitempty"`
}

// RenewAccount sets a user's account expiry and returns it. Requires
// the account validity module on the server.
func (c *Client) RenewAccount(ctx context.Context, update AccountValidityUpdate) (time.Time, error) {
	type response struct {
		ExpirationTS Timestamp `json:"expiration_ts"`
	}
	return project(ctx, c, post(V1, "/account_validity/validity", update),
		func(r response) time.Time { return r.ExpirationTS.Time })
}
