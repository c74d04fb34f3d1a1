// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ultron command line.
//
// Commands:
//
//	ultron                         terminal UI (default)
//	ultron gui                     desktop window
//	ultron ask <message>           send one message and print the reply
//	ultron chat                    line-based REPL
//	ultron health                  verify the backend and print the outcome
//	ultron settings show|set|reset persisted backend URL and key
//	ultron config show|get|set|path
//	ultron version
//
// Connectivity overrides come from --backend, --apikey and --query
// ("backend=...&apikey=..."). They are never persisted.
package cli
