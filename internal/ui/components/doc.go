// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the parley TUI.

# Components

  - MessageBubble / MessageList (message.go) - chat messages as styled
    bubbles, user on the right, assistant on the left
  - MarkdownRenderer (markdown.go) - glamour-backed markdown rendering
    for assistant replies, with plain-text fallback
  - CodeBlock (codeblock.go) - chroma syntax highlighting for fenced
    code blocks when markdown rendering is disabled
  - Sidebar (sidebar.go) - the chat list with the current chat
    highlighted and unsaved drafts dimmed
  - ToastManager (toast.go) - non-blocking bottom-right notifications
    for failed sends, deletes, and other background outcomes

Components render from state passed in by their callers. None of them
talk to the network or the session store directly.
*/
package components
