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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bashclub/mkagent/pkg/config"
	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestNewRootCmd(t *testing.T) {
	root := newRootCmd()

	assert.Equal(t, name, root.Name)
	assert.Equal(t, "serve", root.DefaultCommand)

	got := make(map[string]bool)
	for _, c := range root.Commands {
		got[c.Name] = true
		if c.Action == nil {
			t.Errorf("command %s has no action", c.Name)
		}
	}
	for _, want := range []string{"serve", "dump", "status", "stop"} {
		assert.True(t, got[want], "missing command %s", want)
	}

	flags := make(map[string]bool)
	for _, f := range root.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, want := range []string{"config", "port", "onlyfrom", "skipcheck", "encrypt",
		"localdir", "spooldir", "pidfile", "metrics-address", "log-level", "trace"} {
		assert.True(t, flags[want], "missing flag %s", want)
	}
}

// loadWithArgs runs the root command with a probe subcommand that only loads
// the configuration.
func loadWithArgs(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var got *config.Config
	root := newRootCmd()
	root.Before = nil
	root.DefaultCommand = ""
	root.Commands = []*cli.Command{{
		Name: "probe",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			got = cfg
			return err
		},
	}}
	err := root.Run(context.Background(), append(append([]string{name}, args...), "probe"))
	return got, err
}

func TestLoadConfig_FileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mkagentd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nonlyfrom: 10.0.0.1\nskipcheck: ps\n"), 0o600))

	cfg, err := loadWithArgs(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, config.StringList{"10.0.0.1"}, cfg.OnlyFrom)

	cfg, err = loadWithArgs(t,
		"--config", path,
		"--port", "7001",
		"--onlyfrom", "127.0.0.1,10.0.0.0/8",
		"--skipcheck", "ps,tcp",
		"--encrypt", "secret",
		"--localdir", "/opt/local",
		"--spooldir", "/opt/spool",
		"--pidfile", "/tmp/x.pid",
		"--metrics-address", "127.0.0.1:9556",
	)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, config.StringList{"127.0.0.1", "10.0.0.0/8"}, cfg.OnlyFrom)
	assert.Equal(t, config.StringList{"ps", "tcp"}, cfg.SkipCheck)
	assert.Equal(t, "secret", cfg.Encrypt)
	assert.Equal(t, "/opt/local", cfg.LocalDir)
	assert.Equal(t, "/opt/spool", cfg.SpoolDir)
	assert.Equal(t, "/tmp/x.pid", cfg.PIDFile)
	assert.Equal(t, "127.0.0.1:9556", cfg.MetricsAddress)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mkagentd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\n"), 0o600))

	tests := []struct {
		name string
		args []string
		code cnserrors.ErrorCode
	}{
		{name: "explicit missing file", args: []string{"--config", filepath.Join(dir, "missing.yaml")}, code: cnserrors.ErrCodeNotFound},
		{name: "port out of range", args: []string{"--config", path, "--port", "70000"}, code: cnserrors.ErrCodeInvalidRequest},
		{name: "bad onlyfrom", args: []string{"--config", path, "--onlyfrom", "nope"}, code: cnserrors.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadWithArgs(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, cnserrors.CodeOf(err))
		})
	}
}
