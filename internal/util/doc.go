// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across ultron.
//
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - TruncateWidth / FitWidth: display-width aware truncation for
//     status lines and banners
//   - Fingerprint: short, log-safe identifier for a secret
package util
