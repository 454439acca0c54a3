// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package room implements the synadmin room and purge-history command
// groups: listing and inspecting rooms, blocking, forced joins, room
// deletion, and history purges. Deletions and purges run server-side;
// their --wait flags poll status on an injectable clock.
package room
