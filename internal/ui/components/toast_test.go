// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
	"time"
)

func TestToastManagerAddAssignsIncreasingIDs(t *testing.T) {
	mgr := NewToastManager()

	id1 := mgr.AddError("first")
	id2 := mgr.AddStatus("second")

	if id1 == id2 {
		t.Fatalf("expected distinct IDs, got %d twice", id1)
	}
	if !mgr.HasToasts() {
		t.Fatal("expected active toasts")
	}
}

func TestToastManagerNewestFirstAndCapped(t *testing.T) {
	mgr := NewToastManager()

	for i := 0; i < 8; i++ {
		mgr.AddStatus("toast")
	}

	toasts := mgr.Toasts()
	if len(toasts) != 5 {
		t.Fatalf("expected cap of 5 toasts, got %d", len(toasts))
	}
	// Newest carries the highest ID and sits at the front.
	if toasts[0].ID < toasts[1].ID {
		t.Errorf("expected newest first, got IDs %d then %d", toasts[0].ID, toasts[1].ID)
	}
}

func TestToastManagerDismiss(t *testing.T) {
	mgr := NewToastManager()
	id := mgr.AddError("oops")
	mgr.AddStatus("keep me")

	mgr.Dismiss(id)

	toasts := mgr.Toasts()
	if len(toasts) != 1 {
		t.Fatalf("expected 1 toast after dismiss, got %d", len(toasts))
	}
	if toasts[0].Message != "keep me" {
		t.Errorf("wrong toast survived: %q", toasts[0].Message)
	}
}

func TestToastManagerTickExpires(t *testing.T) {
	mgr := NewToastManager()
	expired := NewStatusToast("old")
	expired.CreatedAt = time.Now().Add(-time.Minute)
	mgr.Add(expired)
	mgr.AddError("fresh")

	remaining := mgr.Tick()
	if len(remaining) != 1 {
		t.Fatalf("expected 1 toast after tick, got %d", len(remaining))
	}
	if remaining[0].Message != "fresh" {
		t.Errorf("wrong toast survived expiry: %q", remaining[0].Message)
	}
}

func TestToastManagerClear(t *testing.T) {
	mgr := NewToastManager()
	mgr.AddError("a")
	mgr.AddWarning("b")

	mgr.Clear()

	if mgr.HasToasts() {
		t.Error("expected no toasts after Clear")
	}
}

func TestWrapToastText(t *testing.T) {
	got := wrapToastText("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wrapToastText = %q, want %q", got, want)
	}
}
