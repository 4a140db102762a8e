// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// SubmitMsg is emitted when the user submits the input line.
// The root model owns the reconciler and performs the actual send.
type SubmitMsg struct {
	Content string
}

// SendStartedMsg marks the beginning of an in-flight send.
type SendStartedMsg struct{}

// SendFinishedMsg marks the end of an in-flight send, successful or not.
type SendFinishedMsg struct {
	Err error
}
