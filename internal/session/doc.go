// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat collection and reconciles it with the
// remote backend.
//
// Store is the in-memory collection with a current-chat pointer. The
// Reconciler owns every mutation that involves the backend: sends run a
// two-phase commit so a provisional chat is only promoted once the server
// has acknowledged both the session creation and the first exchange, and
// deletions only remove a confirmed chat on an explicit server
// acknowledgment.
//
// The Backend and Snapshotter interfaces are the package's ports; the HTTP
// client in internal/api and the JSON snapshot in internal/storage satisfy
// them.
package session
