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

// Package collector wires the built-in and configured producers into a
// report registry.
//
// # Factory Pattern
//
// The Factory interface abstracts producer creation so the agent can be
// assembled with fakes in tests:
//
//	type Factory interface {
//	    CreateSectionProducers() []report.Producer
//	    CreateLocalProducers() []report.Producer
//	}
//
// The DefaultFactory provides the production producers:
//
//	factory := collector.NewDefaultFactory(runners, counters,
//	    collector.WithServices([]string{"sshd.service"}),
//	    collector.WithCommands(cfg.Commands),
//	)
//	reg := report.NewRegistry()
//	if err := collector.Register(reg, factory); err != nil {
//	    return err
//	}
//
// # Subpackages
//
//   - collector/system - gopsutil backed sections and the traffic local check
//   - collector/systemd - services local check over D-Bus
//   - collector/command - configured external commands via the cached runner
//   - collector/os - preamble host metadata
//   - collector/file - parser for line oriented system files
package collector
