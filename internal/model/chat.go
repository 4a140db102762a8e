// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats and messages.
package model

import (
	"github.com/google/uuid"
)

// TitleMaxRunes is the longest a derived chat title may be before the
// source text gets truncated.
const TitleMaxRunes = 30

// DefaultTitle is the placeholder title for a chat that has no messages yet.
const DefaultTitle = "New Chat"

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat holds a chat session with its history and metadata.
//
// IsLocal is the identity tag: a local chat exists only in this client and
// carries a generated UUID, a confirmed chat carries the backend session id.
// Identity is never inferred from the shape of the ID.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"`
	IsLocal   bool      `json:"isLocal"`
}

// NewProvisionalChat creates a local draft chat with a generated ID and
// the placeholder title.
func NewProvisionalChat() Chat {
	return Chat{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: NowMillis(),
		IsLocal:   true,
	}
}

// NewConfirmedChat creates a chat anchored to a backend session.
func NewConfirmedChat(sessionID, title string, msgs ...Message) Chat {
	if msgs == nil {
		msgs = []Message{}
	}
	return Chat{
		ID:        sessionID,
		Title:     title,
		Messages:  msgs,
		CreatedAt: NowMillis(),
		IsLocal:   false,
	}
}

// =============================================================================
// CHAT METHODS
// =============================================================================

// IsEmpty returns true if there are no messages.
func (c Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// MessageCount returns the number of messages.
func (c Chat) MessageCount() int {
	return len(c.Messages)
}

// LastMessage returns the most recent message, or false if empty.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Clone creates a deep copy of the chat. Callers holding a clone cannot
// mutate the original's message slice.
func (c Chat) Clone() Chat {
	clone := c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return clone
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle builds a chat title from the first message text. Text at or
// under TitleMaxRunes runes passes through unchanged; longer text is cut at
// TitleMaxRunes runes with an ellipsis appended.
// UNICODE: counted in runes, a multibyte first message never gets split
// mid code point.
func DeriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= TitleMaxRunes {
		return text
	}
	return string(runes[:TitleMaxRunes]) + "..."
}
