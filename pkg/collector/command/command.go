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

// Package command turns configured external programs into report producers.
//
// Every configured command runs through the cached command runner, so
// expensive probes (smartctl, zpool status, pkg audit) are executed at most
// once per TTL no matter how often the collector polls.
//
//	commands:
//	  - name: zpool
//	    section: zpool_status
//	    args: [zpool, status, -x]
//	    ttl: 300
//	  - name: pkgaudit
//	    shell: /usr/local/bin/audit-check
//	    ttl: 360
//	    capture_on_error: true
//	    local: true
package command

import (
	"context"
	"regexp"
	"strings"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/bashclub/mkagent/pkg/report"
	"github.com/bashclub/mkagent/pkg/runner"
)

var sectionName = regexp.MustCompile(`^[A-Za-z0-9_.-]+(:[^<>]+)?$`)

// Spec is the configuration of one command producer.
type Spec struct {
	Name           string   `json:"name" yaml:"name"`
	Section        string   `json:"section,omitempty" yaml:"section,omitempty"`
	Args           []string `json:"args,omitempty" yaml:"args,omitempty"`
	Shell          string   `json:"shell,omitempty" yaml:"shell,omitempty"`
	TTL            int      `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	CaptureOnError bool     `json:"captureOnError,omitempty" yaml:"capture_on_error,omitempty"`
	Local          bool     `json:"local,omitempty" yaml:"local,omitempty"`
}

// Command returns the runner command of the spec.
func (s Spec) Command() runner.Command {
	return runner.Command{Args: s.Args, Shell: s.Shell, CaptureOnError: s.CaptureOnError}
}

// Validate checks the spec for configuration errors.
func (s Spec) Validate() error {
	ctx := map[string]any{"name": s.Name}
	if strings.TrimSpace(s.Name) == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "command name is required")
	}
	if s.TTL < 0 {
		return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "command ttl must not be negative", ctx)
	}
	if s.Section != "" {
		if s.Local {
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "local commands cannot declare a section", ctx)
		}
		if !sectionName.MatchString(s.Section) {
			ctx["section"] = s.Section
			return cnserrors.NewWithContext(cnserrors.ErrCodeInvalidRequest, "invalid section name", ctx)
		}
	}
	if err := s.Command().Validate(); err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest, "invalid command", err, ctx)
	}
	return nil
}

// Producer runs a command spec through the runner registry.
type Producer struct {
	spec    Spec
	runners *runner.Registry
}

// New returns the producer for spec.
func New(spec Spec, runners *runner.Registry) *Producer {
	return &Producer{spec: spec, runners: runners}
}

// Name implements report.Producer.
func (p *Producer) Name() string { return p.spec.Name }

// Local reports whether the producer belongs after the local marker.
func (p *Producer) Local() bool { return p.spec.Local }

// Produce implements report.Producer. Command failures yield no lines.
func (p *Producer) Produce(ctx context.Context) ([]string, error) {
	res := p.runners.Get(ctx, p.spec.Command(), p.spec.TTL)
	if res.Empty() {
		return nil, nil
	}
	if p.spec.Local {
		return res.LocalLines(), nil
	}
	if p.spec.Section != "" {
		res.Text = "<<<" + p.spec.Section + ">>>\n" + res.Text
	}
	return strings.Split(res.Sections(), "\n"), nil
}

var _ report.Producer = (*Producer)(nil)
