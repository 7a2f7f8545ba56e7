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
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// slot-aligned start so tests are independent of wall time
var epoch = time.Unix(1_700_000_040, 0)

func TestRateFirstObservation(t *testing.T) {
	clk := &fakeClock{now: epoch}
	s := NewStore(WithClock(clk.Now))

	a, b := s.Rate("if", "eth0", 1000, 2000)
	if a != 0 || b != 0 {
		t.Errorf("Rate() = (%v, %v), want (0, 0)", a, b)
	}

	slot, ok := s.Get("if", "eth0")
	if !ok {
		t.Fatal("expected slot to be stored")
	}
	if slot.Start != epoch.Unix() || slot.A != 1000 || slot.B != 2000 {
		t.Errorf("stored slot = %+v", slot)
	}
}

func TestRateAcrossSlots(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		a, b    int64
		wantA   float64
		wantB   float64
	}{
		{"one slot later", 60 * time.Second, 1060, 2120, 1, 2},
		{"two slots later", 120 * time.Second, 1060, 2000, 0.5, 0},
		{"ninety seconds rounds down to one slot", 90 * time.Second, 1060, 2000, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := &fakeClock{now: epoch}
			s := NewStore(WithClock(clk.Now))
			s.Rate("if", "eth0", 1000, 2000)

			clk.Advance(tt.advance)
			a, b := s.Rate("if", "eth0", tt.a, tt.b)
			if a != tt.wantA || b != tt.wantB {
				t.Errorf("Rate() = (%v, %v), want (%v, %v)", a, b, tt.wantA, tt.wantB)
			}
		})
	}
}

// Samples 90s apart are measured between slot boundaries, never against the
// raw 90s: the result depends on where the first sample falls in its slot.
func TestRateNinetySecondsApart(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   float64
	}{
		{"first sample on a boundary", 0, 1},
		{"first sample late in its slot", 45 * time.Second, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := &fakeClock{now: epoch.Add(tt.offset)}
			s := NewStore(WithClock(clk.Now))
			s.Rate("if", "eth0", 100, 200)

			clk.Advance(90 * time.Second)
			a, b := s.Rate("if", "eth0", 160, 260)
			if a != tt.want || b != tt.want {
				t.Errorf("Rate() = (%v, %v), want (%v, %v)", a, b, tt.want, tt.want)
			}
		})
	}
}

func TestRateSameSlotKeepsBaseline(t *testing.T) {
	clk := &fakeClock{now: epoch}
	s := NewStore(WithClock(clk.Now))
	s.Rate("if", "eth0", 1000, 0)

	clk.Advance(10 * time.Second)
	a, _ := s.Rate("if", "eth0", 1010, 0)
	// same slot: elapsed clamps to one second
	if a != 10 {
		t.Errorf("Rate() a = %v, want 10", a)
	}

	slot, _ := s.Get("if", "eth0")
	if slot.A != 1000 {
		t.Errorf("baseline overwritten within slot: A = %d, want 1000", slot.A)
	}

	clk.Advance(50 * time.Second)
	a, _ = s.Rate("if", "eth0", 1060, 0)
	if a != 1 {
		t.Errorf("Rate() a = %v, want 1", a)
	}
	slot, _ = s.Get("if", "eth0")
	if slot.A != 1060 {
		t.Errorf("baseline not advanced: A = %d, want 1060", slot.A)
	}
}

func TestRateKeysAreIndependent(t *testing.T) {
	clk := &fakeClock{now: epoch}
	s := NewStore(WithClock(clk.Now))
	s.Rate("if", "eth0", 0, 0)
	s.Rate("if", "eth1", 0, 0)
	s.Rate("pkts", "eth0", 0, 0)

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestRateConcurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Rate("if", fmt.Sprintf("eth%d", i%4), int64(i), int64(i))
		}(i)
	}
	wg.Wait()

	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}
