// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNew_FiltersAndTags(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(&buf, "warn"), "connect")

	l.Info().Msg("hidden")
	l.Warn().Str("health", "https://h/health").Msg("probe failed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "connect", entry["component"])
	assert.Equal(t, "probe failed", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	l := Console(&buf, "info")
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ultron.log")
	l, closer, err := OpenFile(path, "debug")
	require.NoError(t, err)
	l.Debug().Msg("written")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
