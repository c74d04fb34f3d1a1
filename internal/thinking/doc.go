// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package thinking tracks whether the assistant is working on a reply.
//
// The Machine guarantees that once it reports Thinking it keeps doing so for
// at least a minimum duration, even when the reply arrives instantly. Stop
// requests are deferred through a cancellable timer obtained from a Clock, so
// tests can drive time with FakeClock instead of sleeping.
package thinking
