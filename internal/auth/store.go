// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the stored credential and the login lifecycle.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/parley-tui/internal/util"
)

// credentialsFile is the name of the credential file under the state dir.
const credentialsFile = "credentials.json"

// Credentials is the persisted login state.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// =============================================================================
// CREDENTIAL STORE
// =============================================================================

// Store persists the bearer token and account email on disk.
// SECURITY: the credential file is written 0600 inside a 0700 directory.
type Store struct {
	mu      sync.Mutex
	baseDir string
	creds   Credentials
	loaded  bool
}

// NewStore creates a store under the user's state directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(homeDir, ".parley")), nil
}

// NewStoreWithDir creates a store with a custom directory.
func NewStoreWithDir(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Load reads the credential file. Returns false when no credential is
// stored or the file is unreadable.
func (s *Store) Load() (Credentials, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.creds, s.creds.Token != ""
	}

	data, err := os.ReadFile(s.filePath())
	if err != nil {
		s.loaded = true
		return Credentials{}, false
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		s.loaded = true
		return Credentials{}, false
	}

	s.creds = creds
	s.loaded = true
	return creds, creds.Token != ""
}

// Save persists the credential and caches it for Token lookups.
func (s *Store) Save(creds Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := util.AtomicWriteFile(s.filePath(), data, 0600, 0700); err != nil {
		return err
	}

	s.mu.Lock()
	s.creds = creds
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Clear removes the stored credential.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.loaded = true
	s.mu.Unlock()

	err := os.Remove(s.filePath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the current bearer token, or "" when logged out. Wired
// into the API client as its token source.
func (s *Store) Token() string {
	creds, ok := s.Load()
	if !ok {
		return ""
	}
	return creds.Token
}

// Email returns the logged-in account email, or "".
func (s *Store) Email() string {
	creds, _ := s.Load()
	return creds.Email
}

// LoggedIn reports whether a token is stored.
func (s *Store) LoggedIn() bool {
	_, ok := s.Load()
	return ok
}

// filePath returns the credential file path.
func (s *Store) filePath() string {
	return filepath.Join(s.baseDir, credentialsFile)
}
