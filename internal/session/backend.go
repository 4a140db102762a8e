// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// BACKEND PORT
// =============================================================================

// SessionSummary is one remote session as reported by the backend listing.
// Message roles are already normalized by the transport layer.
type SessionSummary struct {
	ID        string
	Title     string
	Messages  []model.Message
	CreatedAt int64
}

// DeleteResult classifies the outcome of a remote session deletion.
type DeleteResult int

const (
	// DeleteDeleted means the server acknowledged the removal.
	DeleteDeleted DeleteResult = iota
	// DeleteNotFound means the server does not know the session. The
	// local entry is kept; only an explicit acknowledgment removes it.
	DeleteNotFound
	// DeleteFailed means the outcome is unknown and the session must be
	// presumed to still exist remotely.
	DeleteFailed
)

// Backend is the remote surface the reconciler drives. internal/api
// provides the HTTP implementation; tests substitute fakes.
type Backend interface {
	// ListSessions returns every session the server holds for this user.
	ListSessions(ctx context.Context) ([]SessionSummary, error)

	// CreateSession registers a new session under the given title and
	// returns its server-assigned id.
	CreateSession(ctx context.Context, title string) (string, error)

	// ExchangeMessage sends one user message to a session and returns the
	// assistant's reply text.
	ExchangeMessage(ctx context.Context, text, sessionID string) (string, error)

	// DeleteSession removes a session remotely.
	DeleteSession(ctx context.Context, id string) (DeleteResult, error)
}

// Snapshotter persists the chat collection locally. internal/storage
// provides the JSON file implementation.
type Snapshotter interface {
	Save(chats []model.Chat) error
}
