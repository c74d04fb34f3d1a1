// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI pieces the ultron chat view is built
from. Each component is a plain value with Update/View style methods; the
chat model owns them and routes messages.

  - ThinkingIndicator (spinner.go) - spinner plus elapsed time while a reply is pending
  - Banner (banner.go) - the single status region; transient notes auto-hide,
    diagnostics stay until replaced
  - SettingsPanel (panel.go) - backend URL and API key inputs with
    Save / Reset / Close buttons and short-lived button labels
  - Transcript (transcript.go) - the conversation, optionally rendered as
    markdown with glamour
*/
package components
