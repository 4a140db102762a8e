// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat pane for the parley TUI.

The pane renders one chat: its message history in a scrollable viewport,
an input line, and a spinner while a send is in flight. It deliberately
owns no session state. Submitting input emits a SubmitMsg that the root
model turns into a reconciler call, and the updated chat flows back in
through SetChat. SendStartedMsg and SendFinishedMsg toggle the waiting
state so the input stays locked for the duration of a send.

# Key Types

  - Model - the Bubble Tea model for the pane
  - SubmitMsg - emitted when the user presses enter with text

# Usage

	pane := chat.New(theme, markdown)
	pane.SetChat(current)
*/
package chat
