// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrEmptyMessage is returned when a send is attempted with text that
	// is empty after trimming. The UI rejects it silently.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned when a send is attempted while another
	// send is still awaiting its reply.
	ErrSendInFlight = errors.New("a send is already in flight")

	// ErrChatNotFound is returned when an operation names a chat that is
	// not in the collection.
	ErrChatNotFound = errors.New("chat not found")

	// ErrRemoteNotFound is returned when the backend reports a session as
	// not found during deletion. The local chat is kept; it is only
	// removed on an explicit acknowledgment.
	ErrRemoteNotFound = errors.New("session not found on server")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// NetworkError wraps a transport failure. The operation did not happen and
// may be retried.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AmbiguousError wraps a failure whose remote outcome is unknown. The
// caller must not assume the operation either happened or did not.
type AmbiguousError struct {
	Op  string
	Err error
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous outcome during %s: %v", e.Op, e.Err)
}

func (e *AmbiguousError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAmbiguous reports whether err is (or wraps) an AmbiguousError.
func IsAmbiguous(err error) bool {
	var ae *AmbiguousError
	return errors.As(err, &ae)
}
