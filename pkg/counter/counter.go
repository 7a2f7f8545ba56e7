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

package counter

import (
	"sync"
	"time"

	"github.com/bashclub/mkagent/pkg/defaults"
)

// Slot is the stored observation for one (domain, key) pair.
type Slot struct {
	// Start is the slot boundary in epoch seconds.
	Start int64
	A     int64
	B     int64
}

type slotKey struct {
	domain string
	key    string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a concurrency-safe map of counter slots.
type Store struct {
	mu    sync.Mutex
	slots map[slotKey]Slot
	now   func() time.Time
	width int64
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		slots: make(map[slotKey]Slot),
		now:   time.Now,
		width: int64(defaults.CounterSlot / time.Second),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate records counters a and b for (domain, key) and returns their per-second
// rates against the previous slot. The first observation returns zero rates.
// Counter resets are not detected and yield negative rates.
func (s *Store) Rate(domain, key string, a, b int64) (float64, float64) {
	now := s.now().Unix()
	slot := now - now%s.width
	k := slotKey{domain: domain, key: key}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.slots[k]
	if !ok {
		s.slots[k] = Slot{Start: slot, A: a, B: b}
		return 0, 0
	}

	elapsed := max(1, slot-prev.Start)
	rateA := float64(a-prev.A) / float64(elapsed)
	rateB := float64(b-prev.B) / float64(elapsed)

	if prev.Start != slot {
		s.slots[k] = Slot{Start: slot, A: a, B: b}
	}
	return rateA, rateB
}

// Get returns the stored slot for (domain, key).
func (s *Store) Get(domain, key string) (Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[slotKey{domain: domain, key: key}]
	return v, ok
}

// Len returns the number of tracked (domain, key) pairs.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
