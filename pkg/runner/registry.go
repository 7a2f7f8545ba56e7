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

package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bashclub/mkagent/pkg/defaults"
)

type entry struct {
	mu         sync.Mutex
	capturedAt int64
	text       string
}

func (e *entry) load() (int64, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capturedAt, e.text
}

func (e *entry) store(at int64, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.capturedAt = at
	e.text = text
}

func (e *entry) fresh(now int64, ttl int) bool {
	at, _ := e.load()
	return ttl > 0 && at != 0 && now-at <= int64(ttl)
}

// Option configures a Registry.
type Option func(*Registry)

// WithExecutor replaces the process executor.
func WithExecutor(ex Executor) Option {
	return func(r *Registry) {
		r.exec = ex
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithMaxWait sets how long a caller waits for an in-flight refresh.
func WithMaxWait(d time.Duration) Option {
	return func(r *Registry) {
		r.maxWait = d
	}
}

// WithUncachedTimeout bounds commands requested with a zero TTL.
// Zero disables the bound.
func WithUncachedTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.uncachedTimeout = d
	}
}

// Registry caches command output by identity. The zero value is not usable;
// create one with NewRegistry.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group

	exec            Executor
	now             func() time.Time
	maxWait         time.Duration
	uncachedTimeout time.Duration
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:         make(map[string]*entry),
		exec:            &ExecExecutor{},
		now:             time.Now,
		maxWait:         defaults.MaxWait,
		uncachedTimeout: defaults.UncachedCommandTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) entry(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{}
		r.entries[id] = e
	}
	return e
}

// Len returns the number of distinct command identities seen.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Get returns the output of cmd, refreshing it when older than ttl seconds.
// It never returns an error; failed commands yield empty text.
func (r *Registry) Get(ctx context.Context, cmd Command, ttl int) Result {
	if ttl < 0 {
		ttl = 0
	}
	id := cmd.Identity()
	e := r.entry(id)

	if e.fresh(r.now().Unix(), ttl) {
		cacheHits.Inc()
		at, text := e.load()
		return Result{Text: text, CapturedAt: at, TTL: ttl}
	}

	ch := r.group.DoChan(id, func() (any, error) {
		// a caller that raced a just-finished refresh must not run it again
		if e.fresh(r.now().Unix(), ttl) {
			return nil, nil
		}
		r.refresh(cmd, e, ttl)
		return nil, nil
	})

	timer := time.NewTimer(r.maxWait)
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
		staleReads.Inc()
		slog.Debug("refresh still running, serving cached output",
			"command", cmd.String(),
			"maxWait", r.maxWait.String())
	case <-ctx.Done():
		staleReads.Inc()
	}

	at, text := e.load()
	return Result{Text: text, CapturedAt: at, TTL: ttl}
}

func (r *Registry) timeout(ttl int) time.Duration {
	if ttl > 0 {
		return time.Duration(2*ttl-1) * time.Second
	}
	return r.uncachedTimeout
}

func (r *Registry) refresh(cmd Command, e *entry, ttl int) {
	ctx := context.Background()
	if d := r.timeout(ttl); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	refreshes.Inc()
	start := time.Now()
	out, err := r.exec.Execute(ctx, cmd)
	refreshDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		failures.Inc()
		slog.Debug("command failed",
			"command", cmd.String(),
			"captureOnError", cmd.CaptureOnError,
			"error", err)
		if !cmd.CaptureOnError {
			out = ""
		}
	}

	e.store(r.now().Unix(), out)
}
