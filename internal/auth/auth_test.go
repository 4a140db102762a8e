// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jeranaias/parley-tui/internal/api"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithDir(filepath.Join(dir, "state"))

	if store.LoggedIn() {
		t.Error("fresh store should not be logged in")
	}
	if store.Token() != "" {
		t.Error("fresh store should return empty token")
	}

	creds := Credentials{Token: "tok123", Email: "dev@example.com"}
	if err := store.Save(creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	if store.Token() != "tok123" {
		t.Errorf("token = %q", store.Token())
	}
	if store.Email() != "dev@example.com" {
		t.Errorf("email = %q", store.Email())
	}

	// A second store over the same directory sees the saved credential.
	reopened := NewStoreWithDir(filepath.Join(dir, "state"))
	if reopened.Token() != "tok123" {
		t.Error("credential did not persist across stores")
	}

	info, err := os.Stat(filepath.Join(dir, "state", "credentials.json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("credential file perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestStoreClear(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	if err := store.Save(Credentials{Token: "tok"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.LoggedIn() {
		t.Error("store logged in after clear")
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

// fakeSnapshot counts Clear calls.
type fakeSnapshot struct{ cleared int }

func (f *fakeSnapshot) Clear() error {
	f.cleared++
	return nil
}

func TestManagerLoginLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"token":"tok123","user":{"email":"dev@example.com"}}`))
	}))
	defer srv.Close()

	store := NewStoreWithDir(t.TempDir())
	client := api.NewClient(srv.URL, store.Token, zerolog.Nop())
	snap := &fakeSnapshot{}
	mgr := NewManager(client, store, snap, zerolog.Nop())

	if err := mgr.Login(context.Background(), "dev@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !mgr.LoggedIn() {
		t.Error("manager not logged in after login")
	}
	if store.Token() != "tok123" {
		t.Errorf("token = %q", store.Token())
	}

	if err := mgr.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if mgr.LoggedIn() {
		t.Error("manager still logged in after logout")
	}
	if snap.cleared != 1 {
		t.Errorf("snapshot cleared %d times, want 1", snap.cleared)
	}
}

func TestManagerLoginFailureKeepsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewStoreWithDir(t.TempDir())
	client := api.NewClient(srv.URL, store.Token, zerolog.Nop())
	mgr := NewManager(client, store, nil, zerolog.Nop())

	err := mgr.Login(context.Background(), "dev@example.com", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if mgr.LoggedIn() {
		t.Error("failed login must not store a credential")
	}
}
