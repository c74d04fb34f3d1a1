// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ultron TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColor values so light and dark terminals
both read well:

  - Violet - assistant text, the settings panel border
  - Cyan - brand, the input prompt, links
  - Emerald - success notes and "Saved" labels
  - Amber - warnings and pending states
  - Rose - diagnostics

MandalaPalette is the glow ramp used by the braille canvas, dim to bright.

# Theme (theme.go)

NewTheme detects the terminal profile with termenv and builds every style
the chat view uses. Mode "dark" or "light" forces the background instead of
asking the terminal.

# Links

Hyperlink wraps text in an OSC 8 sequence when the profile supports color,
so the health URL in the banner is clickable in terminals that honor it.
*/
package styles
