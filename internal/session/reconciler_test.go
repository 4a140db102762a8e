// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/model"
)

// fakeBackend implements Backend with per-call hooks.
type fakeBackend struct {
	listFn     func(ctx context.Context) ([]SessionSummary, error)
	createFn   func(ctx context.Context, title string) (string, error)
	exchangeFn func(ctx context.Context, text, sessionID string) (string, error)
	deleteFn   func(ctx context.Context, id string) (DeleteResult, error)
}

func (f *fakeBackend) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx)
}

func (f *fakeBackend) CreateSession(ctx context.Context, title string) (string, error) {
	if f.createFn == nil {
		return "", errors.New("unexpected CreateSession")
	}
	return f.createFn(ctx, title)
}

func (f *fakeBackend) ExchangeMessage(ctx context.Context, text, sessionID string) (string, error) {
	if f.exchangeFn == nil {
		return "", errors.New("unexpected ExchangeMessage")
	}
	return f.exchangeFn(ctx, text, sessionID)
}

func (f *fakeBackend) DeleteSession(ctx context.Context, id string) (DeleteResult, error) {
	if f.deleteFn == nil {
		return DeleteFailed, errors.New("unexpected DeleteSession")
	}
	return f.deleteFn(ctx, id)
}

// memorySnapshot records every Save for assertions.
type memorySnapshot struct {
	mu    sync.Mutex
	saves int
	last  []model.Chat
}

func (m *memorySnapshot) Save(chats []model.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.last = chats
	return nil
}

func newTestReconciler(b Backend) (*Reconciler, *Store, *memorySnapshot) {
	store := NewStore()
	snap := &memorySnapshot{}
	return NewReconciler(b, store, snap, zerolog.Nop()), store, snap
}

// =============================================================================
// SEND
// =============================================================================

func TestSendMessageConfirmsProvisional(t *testing.T) {
	backend := &fakeBackend{
		createFn: func(_ context.Context, title string) (string, error) {
			assert.Equal(t, "Hello", title)
			return "42", nil
		},
		exchangeFn: func(_ context.Context, text, sessionID string) (string, error) {
			assert.Equal(t, "Hello", text)
			assert.Equal(t, "42", sessionID)
			return "Hi there", nil
		},
	}
	r, store, snap := newTestReconciler(backend)
	store.CreateProvisional()

	chat, err := r.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)

	assert.Equal(t, "42", chat.ID)
	assert.False(t, chat.IsLocal)
	assert.Equal(t, "Hello", chat.Title)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, model.RoleUser, chat.Messages[0].Role)
	assert.Equal(t, "Hello", chat.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, chat.Messages[1].Role)
	assert.Equal(t, "Hi there", chat.Messages[1].Content)

	// One chat total, confirmed identity replaced the draft in place.
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "42", store.CurrentID())

	assert.Equal(t, 1, snap.saves)
}

func TestSendMessageWithoutCurrentCreatesDraft(t *testing.T) {
	backend := &fakeBackend{
		createFn:   func(_ context.Context, _ string) (string, error) { return "7", nil },
		exchangeFn: func(_ context.Context, _, _ string) (string, error) { return "ok", nil },
	}
	r, store, _ := newTestReconciler(backend)

	chat, err := r.SendMessage(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "7", chat.ID)
	assert.Equal(t, 1, store.Len())
}

func TestSendMessageAppendsToConfirmed(t *testing.T) {
	backend := &fakeBackend{
		exchangeFn: func(_ context.Context, text, sessionID string) (string, error) {
			assert.Equal(t, "42", sessionID)
			return "reply to " + text, nil
		},
	}
	r, store, snap := newTestReconciler(backend)
	store.ResetAll([]model.Chat{model.NewConfirmedChat("42", "Hello",
		model.NewUserMessage("Hello"),
		model.NewAssistantMessage("Hi there"),
	)})

	chat, err := r.SendMessage(context.Background(), "How are you")
	require.NoError(t, err)

	require.Len(t, chat.Messages, 4)
	assert.Equal(t, "How are you", chat.Messages[2].Content)
	assert.Equal(t, "reply to How are you", chat.Messages[3].Content)
	assert.Equal(t, "Hello", chat.Title, "title must not change after confirmation")
	assert.Equal(t, 1, snap.saves)
}

func TestSendMessageEmptyRejected(t *testing.T) {
	r, store, snap := newTestReconciler(&fakeBackend{})
	store.CreateProvisional()

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := r.SendMessage(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	current, _ := store.Current()
	assert.True(t, current.IsEmpty(), "rejected sends must not touch the store")
	assert.Equal(t, 0, snap.saves)
}

func TestSendMessageCreateFailureLeavesDraft(t *testing.T) {
	backend := &fakeBackend{
		createFn: func(_ context.Context, _ string) (string, error) {
			return "", &NetworkError{Op: "create session", Err: errors.New("connection refused")}
		},
	}
	r, store, snap := newTestReconciler(backend)
	draft := store.CreateProvisional()

	_, err := r.SendMessage(context.Background(), "Hello")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))

	// Two-phase commit: nothing visible changed.
	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, draft.ID, current.ID)
	assert.True(t, current.IsLocal)
	assert.True(t, current.IsEmpty())
	assert.Equal(t, 0, snap.saves)
}

func TestSendMessageExchangeFailureLeavesDraft(t *testing.T) {
	backend := &fakeBackend{
		createFn: func(_ context.Context, _ string) (string, error) { return "42", nil },
		exchangeFn: func(_ context.Context, _, _ string) (string, error) {
			return "", &NetworkError{Op: "exchange", Err: errors.New("timeout")}
		},
	}
	r, store, _ := newTestReconciler(backend)
	draft := store.CreateProvisional()

	_, err := r.SendMessage(context.Background(), "Hello")
	require.Error(t, err)

	// Session creation succeeded remotely but the draft stays untouched.
	current, _ := store.Current()
	assert.Equal(t, draft.ID, current.ID)
	assert.True(t, current.IsLocal)
	assert.True(t, current.IsEmpty())
}

func TestSendMessageExchangeFailureLeavesConfirmedUntouched(t *testing.T) {
	backend := &fakeBackend{
		exchangeFn: func(_ context.Context, _, _ string) (string, error) {
			return "", &NetworkError{Op: "exchange", Err: errors.New("timeout")}
		},
	}
	r, store, _ := newTestReconciler(backend)
	store.ResetAll([]model.Chat{model.NewConfirmedChat("42", "Hello", model.NewUserMessage("Hello"))})

	_, err := r.SendMessage(context.Background(), "Again")
	require.Error(t, err)

	chat, _ := store.Get("42")
	assert.Equal(t, 1, chat.MessageCount(), "failed exchange must not append the user message")
}

func TestSendMessageSingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	backend := &fakeBackend{
		createFn: func(_ context.Context, _ string) (string, error) { return "42", nil },
		exchangeFn: func(_ context.Context, _, _ string) (string, error) {
			close(entered)
			<-release
			return "Hi there", nil
		},
	}
	r, store, _ := newTestReconciler(backend)
	store.CreateProvisional()

	done := make(chan error, 1)
	go func() {
		_, err := r.SendMessage(context.Background(), "Hello")
		done <- err
	}()

	<-entered
	assert.True(t, r.Sending())

	// Second send while the first is blocked in the backend.
	_, err := r.SendMessage(context.Background(), "Again")
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, r.Sending())

	// The rejected send left no trace.
	assert.Equal(t, 1, store.Len())
	chat, _ := store.Get("42")
	assert.Equal(t, 2, chat.MessageCount())
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestCreateNewChatReusesEmptyDraft(t *testing.T) {
	r, store, _ := newTestReconciler(&fakeBackend{})
	draft := store.CreateProvisional()

	got := r.CreateNewChat()
	assert.Equal(t, draft.ID, got.ID)
	assert.Equal(t, 1, store.Len())
}

func TestCreateNewChatFromConfirmed(t *testing.T) {
	r, store, _ := newTestReconciler(&fakeBackend{})
	store.ResetAll([]model.Chat{model.NewConfirmedChat("42", "Hello", model.NewUserMessage("Hello"))})

	got := r.CreateNewChat()
	assert.True(t, got.IsLocal)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, got.ID, store.CurrentID())
}

func TestDeleteChatDraftSkipsNetwork(t *testing.T) {
	backend := &fakeBackend{
		deleteFn: func(_ context.Context, _ string) (DeleteResult, error) {
			t.Fatal("draft deletion must not reach the backend")
			return DeleteFailed, nil
		},
	}
	r, store, snap := newTestReconciler(backend)
	draft := store.CreateProvisional()

	require.NoError(t, r.DeleteChat(context.Background(), draft.ID))

	// Collection never goes empty, a fresh draft replaces the last chat.
	assert.Equal(t, 1, store.Len())
	current, _ := store.Current()
	assert.True(t, current.IsLocal)
	assert.NotEqual(t, draft.ID, current.ID)
	assert.Equal(t, 1, snap.saves)
}

func TestDeleteChatConfirmedAcknowledged(t *testing.T) {
	backend := &fakeBackend{
		deleteFn: func(_ context.Context, id string) (DeleteResult, error) {
			assert.Equal(t, "42", id)
			return DeleteDeleted, nil
		},
	}
	r, store, _ := newTestReconciler(backend)
	store.ResetAll([]model.Chat{
		model.NewConfirmedChat("42", "Hello"),
		model.NewConfirmedChat("43", "Other"),
	})

	require.NoError(t, r.DeleteChat(context.Background(), "42"))

	// The deleted chat is gone and a fresh draft is current, never a
	// silently promoted neighbor.
	_, ok := store.Get("42")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())
	current, found := store.Current()
	require.True(t, found)
	assert.True(t, current.IsLocal, "a fresh draft must be current after a delete")
	if other, ok := store.Get("43"); assert.True(t, ok) {
		assert.Equal(t, "Other", other.Title)
	}
}

func TestDeleteChatNotFoundRemotely(t *testing.T) {
	backend := &fakeBackend{
		deleteFn: func(_ context.Context, _ string) (DeleteResult, error) {
			return DeleteNotFound, nil
		},
	}
	r, store, snap := newTestReconciler(backend)
	store.ResetAll([]model.Chat{model.NewConfirmedChat("42", "Hello")})

	// A 404 is not a confirmation. The chat stays and the caller gets a
	// non-fatal error.
	err := r.DeleteChat(context.Background(), "42")
	assert.ErrorIs(t, err, ErrRemoteNotFound)

	assert.Equal(t, 1, store.Len())
	if chat, ok := store.Get("42"); assert.True(t, ok, "chat must survive an unacknowledged delete") {
		assert.False(t, chat.IsLocal)
	}
	assert.Equal(t, "42", store.CurrentID())
	assert.Equal(t, 0, snap.saves)
}

func TestDeleteChatAmbiguousFailure(t *testing.T) {
	backend := &fakeBackend{
		deleteFn: func(_ context.Context, _ string) (DeleteResult, error) {
			return DeleteFailed, errors.New("connection reset")
		},
	}
	r, store, snap := newTestReconciler(backend)
	store.ResetAll([]model.Chat{model.NewConfirmedChat("42", "Hello")})

	err := r.DeleteChat(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, IsAmbiguous(err))

	// The chat stays, the user can retry.
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 0, snap.saves)
}

func TestDeleteChatUnknownID(t *testing.T) {
	r, _, _ := newTestReconciler(&fakeBackend{})
	err := r.DeleteChat(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

// =============================================================================
// INITIAL FETCH
// =============================================================================

func TestFetchInitialChats(t *testing.T) {
	backend := &fakeBackend{
		listFn: func(_ context.Context) ([]SessionSummary, error) {
			return []SessionSummary{
				{ID: "1", Title: "Older", CreatedAt: 100, Messages: []model.Message{
					{ID: "m1", Role: model.RoleUser, Content: "hi", Timestamp: 100},
					{ID: "m2", Role: model.RoleAssistant, Content: "hello", Timestamp: 101},
				}},
				{ID: "2", Title: "Newer", CreatedAt: 200},
			}, nil
		},
	}
	r, store, snap := newTestReconciler(backend)
	// Stale snapshot contents get replaced wholesale.
	store.ResetAll([]model.Chat{model.NewConfirmedChat("stale", "Stale")})

	require.NoError(t, r.FetchInitialChats(context.Background()))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID, "newest first")
	assert.Equal(t, "1", list[1].ID)
	assert.False(t, list[0].IsLocal)
	assert.NotNil(t, list[0].Messages)
	assert.Equal(t, "2", store.CurrentID())
	assert.Equal(t, 1, snap.saves)
}

func TestFetchInitialChatsEmptyServer(t *testing.T) {
	backend := &fakeBackend{
		listFn: func(_ context.Context) ([]SessionSummary, error) { return nil, nil },
	}
	r, store, _ := newTestReconciler(backend)

	require.NoError(t, r.FetchInitialChats(context.Background()))

	require.Equal(t, 1, store.Len())
	current, _ := store.Current()
	assert.True(t, current.IsLocal)
	assert.Equal(t, model.DefaultTitle, current.Title)
}

func TestFetchInitialChatsFailurePreservesStore(t *testing.T) {
	backend := &fakeBackend{
		listFn: func(_ context.Context) ([]SessionSummary, error) {
			return nil, &NetworkError{Op: "list sessions", Err: errors.New("dns failure")}
		},
	}
	r, store, snap := newTestReconciler(backend)
	store.ResetAll([]model.Chat{model.NewConfirmedChat("42", "From snapshot")})

	err := r.FetchInitialChats(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))

	// Snapshot-loaded state survives the failed fetch.
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "42", store.CurrentID())
	assert.Equal(t, 0, snap.saves)
}
