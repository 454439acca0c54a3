// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import "context"

// ServerVersion is the response of the server version endpoint.
type ServerVersion struct {
	ServerVersion string `json:"server_version"`
	// PythonVersion was removed in Synapse 1.94 and is empty on newer
	// servers.
	PythonVersion string `json:"python_version,omitempty"`
}

// ServerVersion returns the Synapse version of the homeserver. Useful as
// a reachability and credentials probe: a non-admin token is rejected
// with M_FORBIDDEN.
func (c *Client) ServerVersion(ctx context.Context) (ServerVersion, error) {
	return call[ServerVersion](ctx, c, get(V1, "/server_version"))
}
