// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the chat backend.
//
// Client satisfies session.Backend over the REST surface: session listing
// and creation, message exchange, and deletion, plus the login and signup
// endpoints. The bearer token is supplied through a TokenSource function
// so credentials are threaded explicitly rather than read from globals.
//
// Role values are normalized at the decode boundary; the historical "ai"
// spelling never reaches the domain types.
package api
