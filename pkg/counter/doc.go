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

// Package counter remembers the last observation of monotonically increasing
// counter pairs (bytes in/out, packets in/out) and turns successive
// observations into per-second rates.
//
// Observations are aligned to one-minute slots. Only the most recent slot is
// kept for each (domain, key) pair; a newer observation within the same slot
// is compared against the stored one but does not replace it, so two polls in
// the same minute measure against the same baseline.
//
//	store := counter.NewStore()
//	inRate, outRate := store.Rate("if", "eth0", rxBytes, txBytes)
package counter
