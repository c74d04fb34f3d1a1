// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connect resolves and verifies the chat backend endpoint.
//
// # Resolution
//
// The effective backend URL and API key are layered field by field:
// runtime overrides (flags or a "backend=...&apikey=..." query) beat
// persisted settings, which beat the built-in defaults. The result is
// installed into Active, which swaps URL and derived origin together.
//
// # Verification
//
// When the front-end's page origin is https and the backend is plain http,
// AutoUpgrade probes the https variant's /health endpoint and promotes it
// only if the probe succeeds. Otherwise it reports a mixed-content
// Diagnostic with remediation hints. Verify runs the upgrade step and then
// probes the active health URL.
//
// Every Diagnostic carries the concrete health URL and a curl command the
// user can run to check the backend by hand.
package connect
