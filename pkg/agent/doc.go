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

// Package agent assembles a running agent from its configuration.
//
// New wires the shared process state, which lives as long as the agent:
//
//   - one runner registry caching external command output
//   - one counter store for rate computing checks
//   - the producer registry filled by the collector factory
//   - the report orchestrator, sealing output when a passphrase is set
//
// Serve guards the host with a PID file and runs the report server until a
// stop signal arrives.
package agent
