// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the parley TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection, with an explicit override available through the configured
theme mode.

# Color System (colors.go)

## Accent Colors

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for info and user highlights
  - Emerald - Success states
  - Rose - Errors and destructive actions
  - Amber - Warnings and ambiguous outcomes

## Surface and Text Colors

Layered surface tokens (Surface, SurfaceDim, Overlay, SelectionBg) give
the layout depth, and the text hierarchy (TextPrimary, TextSecondary,
TextMuted) keeps supporting copy de-emphasized.

# Theme System (theme.go)

The Theme struct bundles every styled component the TUI renders, from
message bubbles through the sidebar to the auth form:

	theme := styles.NewThemeWithMode(cfg.UI.Theme)
	if theme.IsDark {
		// Dark terminal detected or forced
	}

# Usage Example

	import "github.com/jeranaias/parley-tui/internal/ui/styles"

	theme := styles.NewTheme()
	line := theme.RenderError("request failed")
*/
package styles
