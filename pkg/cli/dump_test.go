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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bashclub/mkagent/pkg/agent"
	"github.com/bashclub/mkagent/pkg/config"
	"github.com/bashclub/mkagent/pkg/report"
	"github.com/bashclub/mkagent/pkg/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct{}

func (stubFactory) CreateSectionProducers() []report.Producer {
	return []report.Producer{
		report.Func("alpha", func(context.Context) ([]string, error) {
			return []string{"<<<alpha>>>", "a 1"}, nil
		}),
		report.Func("broken", func(context.Context) ([]string, error) {
			return nil, errors.New("boom")
		}),
	}
}

func (stubFactory) CreateLocalProducers() []report.Producer { return nil }

func newTestAgent(t *testing.T, passphrase string) *agent.Agent {
	t.Helper()
	cfg := config.Default()
	cfg.LocalDir = t.TempDir()
	cfg.SpoolDir = t.TempDir()
	cfg.Encrypt = passphrase
	a, err := agent.New(cfg, agent.WithFactory(stubFactory{}), agent.WithVersion("test"))
	require.NoError(t, err)
	return a
}

func TestDump_Text(t *testing.T) {
	var out, errOut bytes.Buffer
	err := dump(context.Background(), newTestAgent(t, ""), serializer.FormatText, false, &out, &errOut)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), report.MarkerCheckMK+"\n"))
	assert.Contains(t, out.String(), "<<<alpha>>>\na 1\n")
	assert.Contains(t, out.String(), report.FailedPrefix+"broken")
	assert.Contains(t, errOut.String(), "producer broken failed: boom")
}

func TestDump_JSON(t *testing.T) {
	var out, errOut bytes.Buffer
	err := dump(context.Background(), newTestAgent(t, ""), serializer.FormatJSON, false, &out, &errOut)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.NotEmpty(t, rep.ID)
	assert.Contains(t, rep.Lines, "a 1")
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "broken", rep.Failures[0].Name)
}

func TestDump_Decrypt(t *testing.T) {
	t.Run("without passphrase", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := dump(context.Background(), newTestAgent(t, ""), serializer.FormatText, true, &out, &errOut)
		assert.Error(t, err)
		assert.Empty(t, out.String())
	})

	t.Run("with passphrase", func(t *testing.T) {
		var out, errOut bytes.Buffer
		err := dump(context.Background(), newTestAgent(t, "secret"), serializer.FormatText, true, &out, &errOut)
		require.NoError(t, err)
		assert.Contains(t, errOut.String(), "envelope round trip ok")
		assert.True(t, strings.HasPrefix(out.String(), report.MarkerCheckMK))
	})
}
