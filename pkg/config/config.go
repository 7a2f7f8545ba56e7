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

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bashclub/mkagent/pkg/collector/command"
	"github.com/bashclub/mkagent/pkg/defaults"
	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/bashclub/mkagent/pkg/server"
	"gopkg.in/yaml.v3"
)

// StringList is a list that unmarshals from a comma separated string or a
// YAML sequence.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = SplitList(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		out := make(StringList, 0, len(items))
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				out = append(out, it)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list", node.Line)
	}
}

// SplitList splits a comma or whitespace separated value, dropping empty
// items.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Config is the agent configuration.
type Config struct {
	Port      int        `json:"port" yaml:"port"`
	Encrypt   string     `json:"-" yaml:"encrypt"`
	OnlyFrom  StringList `json:"onlyfrom,omitempty" yaml:"onlyfrom"`
	SkipCheck StringList `json:"skipcheck,omitempty" yaml:"skipcheck"`

	LocalDir string `json:"localdir" yaml:"localdir"`
	SpoolDir string `json:"spooldir" yaml:"spooldir"`
	AgentDir string `json:"agentdir" yaml:"agentdir"`
	PIDFile  string `json:"pidfile" yaml:"pidfile"`

	MetricsAddress  string        `json:"metricsAddress,omitempty" yaml:"metrics_address"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdown_timeout"`
	MaxWait         time.Duration `json:"maxWait" yaml:"max_wait"`
	UncachedTimeout time.Duration `json:"uncachedTimeout" yaml:"uncached_timeout"`

	Services   StringList        `json:"services,omitempty" yaml:"services"`
	Interfaces map[string]string `json:"interfaces,omitempty" yaml:"interfaces"`
	Commands   []command.Spec    `json:"commands,omitempty" yaml:"commands"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Port:            defaults.Port,
		LocalDir:        defaults.LocalDir,
		SpoolDir:        defaults.SpoolDir,
		AgentDir:        defaults.AgentDir,
		PIDFile:         defaults.PIDFile,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		MaxWait:         defaults.MaxWait,
		UncachedTimeout: defaults.UncachedCommandTimeout,
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "failed to parse configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
				"configuration file not found", err, map[string]any{"path": path})
		}
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"failed to read configuration", err, map[string]any{"path": path})
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.CodeOf(err),
			"invalid configuration", err, map[string]any{"path": path})
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults
// when optional is set.
func LoadOrDefault(path string, optional bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && optional && cnserrors.CodeOf(err) == cnserrors.ErrCodeNotFound {
		return Default(), nil
	}
	return cfg, err
}

// Allowlist parses OnlyFrom.
func (c *Config) Allowlist() (*server.Allowlist, error) {
	return server.ParseAllowlist(c.OnlyFrom)
}

// Encrypted reports whether responses are sealed.
func (c *Config) Encrypted() bool {
	return c.Encrypt != ""
}

// Validate checks the configuration for errors that must stop startup.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "port out of range",
			map[string]any{"port": c.Port})
	}

	if _, err := c.Allowlist(); err != nil {
		return err
	}

	for name, d := range map[string]time.Duration{
		"shutdown_timeout": c.ShutdownTimeout,
		"max_wait":         c.MaxWait,
	} {
		if d <= 0 {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "duration must be positive",
				map[string]any{"key": name, "value": d.String()})
		}
	}

	// zero leaves commands with a zero TTL unbounded
	if c.UncachedTimeout < 0 {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "duration must not be negative",
			map[string]any{"key": "uncached_timeout", "value": c.UncachedTimeout.String()})
	}

	seen := make(map[string]bool, len(c.Commands))
	for _, spec := range c.Commands {
		if err := spec.Validate(); err != nil {
			return err
		}
		if seen[spec.Name] {
			return cnserrors.NewWithContext(cnserrors.ErrCodeConflict, "duplicate command name",
				map[string]any{"name": spec.Name})
		}
		seen[spec.Name] = true
	}

	for iface, alias := range c.Interfaces {
		if strings.TrimSpace(iface) == "" {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "empty interface name",
				map[string]any{"alias": alias})
		}
	}

	return nil
}
