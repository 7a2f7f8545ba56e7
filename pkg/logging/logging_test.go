// Copyright (c) 2025, The mkagent Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStructuredLoggerAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := newStructuredLogger(&buf, "mkagentd", "v0.1.0", "info")
	l.Info("report served", "peer", "10.0.0.5")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "mkagentd", rec["module"])
	assert.Equal(t, "v0.1.0", rec["version"])
	assert.Equal(t, "10.0.0.5", rec["peer"])
	assert.NotContains(t, rec, "source")
}

func TestStructuredLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newStructuredLogger(&buf, "mkagentd", "dev", "warn")
	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	l := newStructuredLogger(&buf, "mkagentd", "dev", "debug")
	l.Debug("cache hit")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Contains(t, rec, "source")
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	assert.Equal(t, slog.LevelError, ParseLogLevel(levelFromEnv()))
}
