// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"sync"

	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Store holds the in-memory chat collection and the current-chat pointer.
// All methods are safe for concurrent use.
//
// The current pointer is an id reference, not ownership: when it names no
// member of the collection, Current resolves to none.
type Store struct {
	mu        sync.Mutex
	chats     []model.Chat
	currentID string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List returns a deep copy of the chats, newest first.
func (s *Store) List() []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Chat, len(s.chats))
	for i, c := range s.chats {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of chats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

// Current returns a copy of the current chat, or false when the
// collection is empty.
func (s *Store) Current() (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(s.currentID)
	if i < 0 {
		return model.Chat{}, false
	}
	return s.chats[i].Clone(), true
}

// CurrentID returns the id of the current chat, or "" when none is set.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Get returns a copy of the chat with the given id.
func (s *Store) Get(id string) (model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Chat{}, false
	}
	return s.chats[i].Clone(), true
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Select sets the current pointer to the given id unconditionally.
// Selecting an id that is not in the collection is legal; Current then
// resolves to none until the pointer moves again.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
}

// CreateProvisional prepends a fresh local draft chat and selects it.
func (s *Store) CreateProvisional() model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := model.NewProvisionalChat()
	s.chats = append([]model.Chat{chat}, s.chats...)
	s.currentID = chat.ID
	return chat.Clone()
}

// Replace swaps the chat identified by oldID for the given chat in place,
// keeping its position. If the current pointer referenced oldID it follows
// the replacement. Used by the two-phase commit to promote a provisional
// chat to its confirmed identity in one step.
func (s *Store) Replace(oldID string, c model.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(oldID)
	if i < 0 {
		return ErrChatNotFound
	}
	s.chats[i] = c.Clone()
	if s.currentID == oldID {
		s.currentID = c.ID
	}
	return nil
}

// Append adds messages to the end of an existing chat. A chat receiving
// its first messages while still carrying the placeholder title gets a
// title derived from the first non-empty message text.
func (s *Store) Append(id string, msgs ...model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrChatNotFound
	}
	if len(s.chats[i].Messages) == 0 && s.chats[i].Title == model.DefaultTitle {
		for _, msg := range msgs {
			if strings.TrimSpace(msg.Content) != "" {
				s.chats[i].Title = model.DeriveTitle(msg.Content)
				break
			}
		}
	}
	s.chats[i].Messages = append(s.chats[i].Messages, msgs...)
	return nil
}

// Remove deletes the chat with the given id. When the removed chat was
// current, the pointer clears; the caller is expected to select or create
// a replacement right away.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrChatNotFound
	}
	s.chats = append(s.chats[:i], s.chats[i+1:]...)

	if s.currentID == id {
		s.currentID = ""
	}
	return nil
}

// ResetAll replaces the whole collection. The newest chat becomes current;
// an empty replacement clears the current pointer.
func (s *Store) ResetAll(chats []model.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats = make([]model.Chat, len(chats))
	for i, c := range chats {
		s.chats[i] = c.Clone()
	}
	if len(s.chats) > 0 {
		s.currentID = s.chats[0].ID
	} else {
		s.currentID = ""
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// indexOf returns the position of the chat with the given id, or -1.
// Caller must hold s.mu.
func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.chats {
		if s.chats[i].ID == id {
			return i
		}
	}
	return -1
}
