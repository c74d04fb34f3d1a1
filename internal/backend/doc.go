// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the chat transport.
//
// Client.Send posts one message to the active backend and always comes
// back with something displayable: a normalized reply on success, or a
// connect.Diagnostic rendered as the reply text on failure. When the page
// is secure and the backend is plain http, a failed send is retried once
// over https and, if that works, the upgraded URL is promoted and
// persisted through the connect.Resolver.
package backend
