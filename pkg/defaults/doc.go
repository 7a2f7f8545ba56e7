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

// Package defaults provides centralized configuration constants for the agent.
//
// # Categories
//
//   - Agent: listening port and filesystem locations compatible with the
//     check_mk agent layout
//   - Runner: cache wait ceiling and command timeouts
//   - Server: connection and shutdown timeouts
//   - Side listener: timeouts and rate limits for the metrics HTTP endpoint
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.UncachedCommandTimeout)
//	defer cancel()
package defaults
