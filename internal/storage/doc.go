// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local chat snapshot for parley.
//
// The snapshot is a single JSON file holding the chat list in the exact
// shape the in-memory types marshal to. It is written atomically after
// every confirming mutation, read once at startup so the UI can paint
// immediately, and cleared on logout. The server remains the source of
// truth; a missing or corrupt snapshot simply yields an empty list.
//
// # Usage
//
//	store, err := storage.NewSnapshotStore()
//	chats := store.Load()
//	err = store.Save(chats)
//	err = store.Clear()
//
// # Storage Location
//
// The snapshot lives at ~/.parley/chats.json.
package storage
