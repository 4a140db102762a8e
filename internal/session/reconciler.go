// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler mediates every store mutation that involves the backend.
//
// RELIABILITY: confirming operations are two-phase. The store is only
// touched after the backend has acknowledged the whole operation, so a
// failure mid-flight never leaves partial user-visible state.
type Reconciler struct {
	backend Backend
	store   *Store
	snap    Snapshotter
	log     zerolog.Logger

	// sending guards against overlapping sends. CAS, not mutex: the
	// losing caller must fail fast, not queue.
	sending atomic.Bool
}

// NewReconciler wires a reconciler over the given backend and store.
// snap may be nil when no local snapshot is wanted (tests).
func NewReconciler(backend Backend, store *Store, snap Snapshotter, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		backend: backend,
		store:   store,
		snap:    snap,
		log:     log,
	}
}

// Store exposes the underlying store for read-side UI access.
func (r *Reconciler) Store() *Store {
	return r.store
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage sends one user message on the current chat and returns the
// updated chat once the assistant reply has been committed.
//
// A provisional current chat is confirmed first: the session is created
// under the derived title, the message exchanged, and only then is the
// draft replaced wholesale by its confirmed identity. A confirmed chat
// just gets the user message and the reply appended together.
func (r *Reconciler) SendMessage(ctx context.Context, text string) (model.Chat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Chat{}, ErrEmptyMessage
	}

	if !r.sending.CompareAndSwap(false, true) {
		return model.Chat{}, ErrSendInFlight
	}
	defer r.sending.Store(false)

	current, ok := r.store.Current()
	if !ok {
		current = r.store.CreateProvisional()
	}

	if current.IsLocal {
		return r.sendConfirming(ctx, current, text)
	}
	return r.sendAppending(ctx, current, text)
}

// sendConfirming runs the two-phase commit for a provisional chat.
func (r *Reconciler) sendConfirming(ctx context.Context, draft model.Chat, text string) (model.Chat, error) {
	title := model.DeriveTitle(text)

	sessionID, err := r.backend.CreateSession(ctx, title)
	if err != nil {
		r.log.Warn().Err(err).Msg("create session failed")
		return model.Chat{}, err
	}

	reply, err := r.backend.ExchangeMessage(ctx, text, sessionID)
	if err != nil {
		// The remote session now exists but the draft stays local.
		// The next send will create a fresh session; the orphan is
		// reconciled away by the next initial fetch.
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("first exchange failed")
		return model.Chat{}, err
	}

	confirmed := model.NewConfirmedChat(sessionID, title,
		model.NewUserMessage(text),
		model.NewAssistantMessage(reply),
	)
	confirmed.CreatedAt = draft.CreatedAt

	if err := r.store.Replace(draft.ID, confirmed); err != nil {
		return model.Chat{}, err
	}
	r.persist()

	r.log.Info().Str("session_id", sessionID).Msg("chat confirmed")
	return confirmed, nil
}

// sendAppending exchanges a message on an already-confirmed chat.
func (r *Reconciler) sendAppending(ctx context.Context, chat model.Chat, text string) (model.Chat, error) {
	reply, err := r.backend.ExchangeMessage(ctx, text, chat.ID)
	if err != nil {
		r.log.Warn().Err(err).Str("session_id", chat.ID).Msg("exchange failed")
		return model.Chat{}, err
	}

	// User message and reply land together, after the acknowledgment.
	err = r.store.Append(chat.ID,
		model.NewUserMessage(text),
		model.NewAssistantMessage(reply),
	)
	if err != nil {
		return model.Chat{}, err
	}
	r.persist()

	updated, _ := r.store.Get(chat.ID)
	return updated, nil
}

// Sending reports whether a send is currently in flight.
func (r *Reconciler) Sending() bool {
	return r.sending.Load()
}

// =============================================================================
// CHAT LIFECYCLE
// =============================================================================

// CreateNewChat starts a fresh draft chat, unless the current chat is
// already an unused draft, in which case it is simply kept. Never touches
// the network.
func (r *Reconciler) CreateNewChat() model.Chat {
	if current, ok := r.store.Current(); ok && current.IsLocal && current.IsEmpty() {
		return current
	}
	return r.store.CreateProvisional()
}

// SelectChat makes the chat with the given id current. Selecting an
// unknown id is legal and resolves to no current chat.
func (r *Reconciler) SelectChat(id string) {
	r.store.Select(id)
}

// DeleteChat removes a chat. Drafts are removed locally with no network
// traffic. Confirmed chats are removed only on an explicit server
// acknowledgment: a not-found report keeps the chat and surfaces
// ErrRemoteNotFound, any other outcome keeps it and returns an
// AmbiguousError. After a removal a fresh draft becomes current.
func (r *Reconciler) DeleteChat(ctx context.Context, id string) error {
	chat, ok := r.store.Get(id)
	if !ok {
		return ErrChatNotFound
	}

	if !chat.IsLocal {
		result, err := r.backend.DeleteSession(ctx, id)
		switch result {
		case DeleteDeleted:
		case DeleteNotFound:
			// Removal happens only on explicit confirmation; a 404 may
			// mean a stale id, not a deleted session.
			r.log.Warn().Str("session_id", id).Msg("remote session not found, chat kept")
			return ErrRemoteNotFound
		default:
			r.log.Warn().Err(err).Str("session_id", id).Msg("delete outcome unknown")
			return &AmbiguousError{Op: "delete chat", Err: err}
		}
	}

	if err := r.store.Remove(id); err != nil {
		return err
	}
	r.CreateNewChat()
	r.persist()
	return nil
}

// FetchInitialChats replaces the collection with the server's sessions,
// newest first. When the server has none, a fresh draft is created so the
// user always has a chat to type into. On failure the store is left as is,
// which preserves whatever the snapshot pre-loaded.
func (r *Reconciler) FetchInitialChats(ctx context.Context) error {
	summaries, err := r.backend.ListSessions(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("initial fetch failed")
		return err
	}

	chats := make([]model.Chat, 0, len(summaries))
	for _, s := range summaries {
		msgs := s.Messages
		if msgs == nil {
			msgs = []model.Message{}
		}
		chats = append(chats, model.Chat{
			ID:        s.ID,
			Title:     s.Title,
			Messages:  msgs,
			CreatedAt: s.CreatedAt,
			IsLocal:   false,
		})
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].CreatedAt > chats[j].CreatedAt
	})

	r.store.ResetAll(chats)
	if r.store.Len() == 0 {
		r.store.CreateProvisional()
	}
	r.persist()

	r.log.Info().Int("chats", len(chats)).Msg("initial chats loaded")
	return nil
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// persist writes the current collection through the snapshotter. Snapshot
// failures are logged and swallowed, the in-memory state stays canonical.
func (r *Reconciler) persist() {
	if r.snap == nil {
		return
	}
	if err := r.snap.Save(r.store.List()); err != nil {
		r.log.Warn().Err(err).Msg("snapshot write failed")
	}
}
