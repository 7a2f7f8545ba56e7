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

package report

import (
	"context"
	"sort"
	"sync"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
)

// Producer contributes lines to the report.
// Section producers emit their own <<<section>>> header.
type Producer interface {
	Name() string
	Produce(ctx context.Context) ([]string, error)
}

type funcProducer struct {
	name string
	fn   func(ctx context.Context) ([]string, error)
}

func (f *funcProducer) Name() string { return f.name }

func (f *funcProducer) Produce(ctx context.Context) ([]string, error) { return f.fn(ctx) }

// Func adapts a function to a Producer.
func Func(name string, fn func(ctx context.Context) ([]string, error)) Producer {
	return &funcProducer{name: name, fn: fn}
}

// Kind distinguishes section producers from local check producers.
type Kind string

const (
	KindSection Kind = "section"
	KindLocal   Kind = "local"
)

// Registry holds the producers of a report, keyed by name.
// Names are unique across both kinds so the failure manifest is unambiguous.
type Registry struct {
	mu        sync.RWMutex
	producers map[Kind]map[string]Producer
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		producers: map[Kind]map[string]Producer{
			KindSection: {},
			KindLocal:   {},
		},
	}
}

// AddSection registers a section producer.
func (r *Registry) AddSection(p Producer) error {
	return r.add(KindSection, p)
}

// AddLocal registers a local check producer.
func (r *Registry) AddLocal(p Producer) error {
	return r.add(KindLocal, p)
}

func (r *Registry) add(kind Kind, p Producer) error {
	if p == nil || p.Name() == "" {
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "producer must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for k, m := range r.producers {
		if _, ok := m[p.Name()]; ok {
			return cnserrors.NewWithContext(cnserrors.ErrCodeConflict, "producer already registered",
				map[string]any{"name": p.Name(), "kind": string(k)})
		}
	}
	r.producers[kind][p.Name()] = p
	return nil
}

// Producers returns the producers of kind sorted by name.
func (r *Registry) Producers(kind Kind) []Producer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.producers[kind]
	out := make([]Producer, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for _, m := range r.producers {
		for name := range m {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
