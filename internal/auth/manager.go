// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/api"
)

// SnapshotClearer removes locally cached chat data. Satisfied by the
// storage snapshot store.
type SnapshotClearer interface {
	Clear() error
}

// =============================================================================
// AUTH MANAGER
// =============================================================================

// Manager runs the login lifecycle: exchanging credentials for a token,
// persisting it, and wiping local state on logout.
type Manager struct {
	client *api.Client
	store  *Store
	snap   SnapshotClearer
	log    zerolog.Logger
}

// NewManager wires a manager over the API client and credential store.
// snap may be nil when there is no local cache to wipe.
func NewManager(client *api.Client, store *Store, snap SnapshotClearer, log zerolog.Logger) *Manager {
	return &Manager{client: client, store: store, snap: snap, log: log}
}

// Login authenticates and persists the resulting token.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	creds, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.log.Warn().Err(err).Msg("login failed")
		return err
	}
	return m.finish(creds)
}

// Signup registers a new account and persists its first token.
func (m *Manager) Signup(ctx context.Context, email, password string) error {
	creds, err := m.client.Signup(ctx, email, password)
	if err != nil {
		m.log.Warn().Err(err).Msg("signup failed")
		return err
	}
	return m.finish(creds)
}

func (m *Manager) finish(creds api.Credentials) error {
	err := m.store.Save(Credentials{Token: creds.Token, Email: creds.Email})
	if err != nil {
		return err
	}
	m.log.Info().Str("email", creds.Email).Msg("logged in")
	return nil
}

// Logout drops the stored token and clears the chat snapshot so no data
// from the account lingers on disk.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	if m.snap != nil {
		if err := m.snap.Clear(); err != nil {
			return err
		}
	}
	m.log.Info().Msg("logged out")
	return nil
}

// LoggedIn reports whether a stored token exists.
func (m *Manager) LoggedIn() bool {
	return m.store.LoggedIn()
}

// Email returns the logged-in account email.
func (m *Manager) Email() string {
	return m.store.Email()
}
