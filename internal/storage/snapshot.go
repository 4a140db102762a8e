// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local chat snapshot for parley.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jeranaias/parley-tui/internal/model"
	"github.com/jeranaias/parley-tui/internal/util"
)

// snapshotFile is the name of the snapshot under the state directory.
const snapshotFile = "chats.json"

// =============================================================================
// SNAPSHOT STORE
// =============================================================================

// SnapshotStore persists the chat collection as a single JSON file in the
// exact wire shape of the chat list. It exists so the UI can paint the
// last known state instantly on startup; the server list replaces it as
// soon as the initial fetch lands.
type SnapshotStore struct {
	// BaseDir is the state directory, default ~/.parley
	BaseDir string
}

// NewSnapshotStore creates a store under the user's state directory.
func NewSnapshotStore() (*SnapshotStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewSnapshotStoreWithDir(filepath.Join(homeDir, ".parley"))
}

// NewSnapshotStoreWithDir creates a store with a custom directory.
func NewSnapshotStoreWithDir(baseDir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &SnapshotStore{BaseDir: baseDir}, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Save writes the chat collection atomically. Called after every
// confirming mutation.
func (s *SnapshotStore) Save(chats []model.Chat) error {
	if chats == nil {
		chats = []model.Chat{}
	}
	data, err := json.MarshalIndent(chats, "", "  ")
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents a torn snapshot on crash
	return util.AtomicWriteFile(s.filePath(), data, 0644, 0755)
}

// Load reads the snapshot. A missing or corrupt file is not an error, it
// yields an empty collection and the server remains the source of truth.
func (s *SnapshotStore) Load() []model.Chat {
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		return []model.Chat{}
	}

	var chats []model.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return []model.Chat{}
	}
	for i := range chats {
		if chats[i].Messages == nil {
			chats[i].Messages = []model.Message{}
		}
	}
	return chats
}

// Clear removes the snapshot file. Called on logout.
func (s *SnapshotStore) Clear() error {
	err := os.Remove(s.filePath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// filePath returns the snapshot file path.
func (s *SnapshotStore) filePath() string {
	return filepath.Join(s.BaseDir, snapshotFile)
}
