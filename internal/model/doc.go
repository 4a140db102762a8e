// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
//
// This package defines the core domain types used throughout the
// application for representing chat sessions and their messages.
//
// # Key Types
//
//   - Chat: a chat session with messages and metadata; IsLocal tags
//     whether the chat is a local draft or anchored to a backend session
//   - Message: single message with role, content, and epoch-ms timestamp
//   - Role: message role enumeration (user, assistant)
//
// # Usage
//
// Create a local draft and derive its title from the first message:
//
//	chat := model.NewProvisionalChat()
//	title := model.DeriveTitle("Explain goroutines to me please")
//
// Timestamps are epoch milliseconds throughout so the in-memory types
// marshal directly to the wire and snapshot formats.
package model
