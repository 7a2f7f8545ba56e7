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

package collector

import (
	"github.com/bashclub/mkagent/pkg/collector/command"
	"github.com/bashclub/mkagent/pkg/collector/system"
	"github.com/bashclub/mkagent/pkg/collector/systemd"
	"github.com/bashclub/mkagent/pkg/counter"
	"github.com/bashclub/mkagent/pkg/report"
	"github.com/bashclub/mkagent/pkg/runner"
)

// Factory creates the producers of a report.
type Factory interface {
	CreateSectionProducers() []report.Producer
	CreateLocalProducers() []report.Producer
}

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithServices sets the systemd units checked by the services local check.
// The check is omitted when no units are configured.
func WithServices(units []string) Option {
	return func(f *DefaultFactory) {
		f.Services = units
	}
}

// WithInterfaces restricts the traffic check to the given interfaces and
// sets their display names.
func WithInterfaces(aliases map[string]string) Option {
	return func(f *DefaultFactory) {
		f.Interfaces = aliases
	}
}

// WithCommands adds configured command producers.
func WithCommands(specs []command.Spec) Option {
	return func(f *DefaultFactory) {
		f.Commands = specs
	}
}

// WithSource replaces the system access of the built-in sections.
func WithSource(src *system.Source) Option {
	return func(f *DefaultFactory) {
		f.Source = src
	}
}

// DefaultFactory creates producers with production dependencies.
type DefaultFactory struct {
	Services   []string
	Interfaces map[string]string
	Commands   []command.Spec
	Source     *system.Source

	runners  *runner.Registry
	counters *counter.Store
}

// NewDefaultFactory returns a factory sharing runners and counters with all
// producers it creates.
func NewDefaultFactory(runners *runner.Registry, counters *counter.Store, opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		Source:   system.DefaultSource(),
		runners:  runners,
		counters: counters,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateSectionProducers returns the built-in sections and section commands.
func (f *DefaultFactory) CreateSectionProducers() []report.Producer {
	out := system.Sections(f.Source)
	for _, spec := range f.Commands {
		if !spec.Local {
			out = append(out, command.New(spec, f.runners))
		}
	}
	return out
}

// CreateLocalProducers returns the local checks and local commands.
func (f *DefaultFactory) CreateLocalProducers() []report.Producer {
	out := []report.Producer{
		system.NewTraffic(f.Source, f.counters, f.Interfaces),
	}
	if len(f.Services) > 0 {
		out = append(out, systemd.NewServices(f.Services))
	}
	for _, spec := range f.Commands {
		if spec.Local {
			out = append(out, command.New(spec, f.runners))
		}
	}
	return out
}

// Register adds every producer of f to reg.
func Register(reg *report.Registry, f Factory) error {
	for _, p := range f.CreateSectionProducers() {
		if err := reg.AddSection(p); err != nil {
			return err
		}
	}
	for _, p := range f.CreateLocalProducers() {
		if err := reg.AddLocal(p); err != nil {
			return err
		}
	}
	return nil
}
