// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/parley-tui/internal/model"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	chats := []model.Chat{
		model.NewConfirmedChat("42", "Hello",
			model.NewUserMessage("Hello"),
			model.NewAssistantMessage("Hi there"),
		),
		model.NewProvisionalChat(),
	}

	if err := store.Save(chats); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := store.Load()
	if len(loaded) != 2 {
		t.Fatalf("loaded %d chats, want 2", len(loaded))
	}
	if loaded[0].ID != "42" || loaded[0].IsLocal {
		t.Errorf("confirmed chat round-trip broken: %+v", loaded[0])
	}
	if !loaded[1].IsLocal {
		t.Error("provisional flag lost in round trip")
	}
	if loaded[0].Messages[1].Role != model.RoleAssistant {
		t.Errorf("role = %q, want assistant", loaded[0].Messages[1].Role)
	}
	if loaded[1].Messages == nil {
		t.Error("messages must load as an empty slice, not nil")
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	store := newTestStore(t)

	loaded := store.Load()
	if len(loaded) != 0 {
		t.Errorf("missing snapshot should load empty, got %d", len(loaded))
	}
}

func TestSnapshotCorruptFile(t *testing.T) {
	store := newTestStore(t)

	path := filepath.Join(store.BaseDir, "chats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load()
	if len(loaded) != 0 {
		t.Errorf("corrupt snapshot should load empty, got %d", len(loaded))
	}
}

func TestSnapshotLegacyRoleSpelling(t *testing.T) {
	store := newTestStore(t)

	// Snapshots written by older builds used the "ai" role spelling.
	legacy := `[{"id":"42","title":"Hello","createdAt":100,"isLocal":false,
		"messages":[{"id":"m1","role":"ai","content":"Hi there","timestamp":101}]}]`
	path := filepath.Join(store.BaseDir, "chats.json")
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load()
	if len(loaded) != 1 {
		t.Fatalf("loaded %d chats, want 1", len(loaded))
	}
	if loaded[0].Messages[0].Role != model.RoleAssistant {
		t.Errorf("legacy role not normalized: %q", loaded[0].Messages[0].Role)
	}
}

func TestSnapshotClear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save([]model.Chat{model.NewProvisionalChat()}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(store.Load()) != 0 {
		t.Error("snapshot survives Clear")
	}

	// Clearing an already-missing snapshot is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestSnapshotSaveNil(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(nil); err != nil {
		t.Fatalf("save nil: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.BaseDir, "chats.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("nil save should write an empty array, got %s", data)
	}
}
