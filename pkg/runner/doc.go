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

// Package runner executes external probe commands and caches their output.
//
// A Registry holds one cache entry per command identity. Callers ask for the
// output of a command together with a time-to-live in seconds:
//
//   - When the entry was captured within the TTL, the cached text is returned
//     without running anything.
//   - Otherwise exactly one refresh runs per identity at a time. Concurrent
//     callers join the in-flight refresh instead of spawning a duplicate.
//   - No caller waits longer than the registry's MaxWait. A caller whose wait
//     expires reads whatever the entry currently holds and the refresh keeps
//     running in the background.
//
// A TTL of zero always executes the command but still joins an in-flight run.
// Command failures (non-zero exit, timeout, spawn error) are never returned to
// callers; the entry stores empty text unless the command opts into capturing
// output on error.
//
// Results can be rendered with a cache tag so the collector knows how old the
// data is:
//
//	res := reg.Get(ctx, runner.Command{Args: []string{"pkg", "audit", "-F"}}, 360)
//	lines := res.LocalLines() // "cached(1700000000,360) 0 pkgaudit - ..."
package runner
