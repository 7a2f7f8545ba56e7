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

// Package report assembles the agent report served to the collector.
//
// A report is built fresh for every request from:
//
//   - the <<<check_mk>>> preamble (agent OS, version, hostname, directories)
//   - one section per registered section producer, in lexicographic name order
//   - the <<<local:sep(0)>>> marker followed by local producers
//   - executable scripts found under the local directory, run through the
//     cached command runner; a numeric parent directory names the cache TTL
//   - files in the spool directory whose optional numeric name prefix gives
//     the maximum age in seconds
//   - a trailing FailedPythonPlugins line naming every producer that failed
//
// Each producer runs inside its own panic and error boundary: a failing
// producer contributes nothing to the report and is named in the failure
// manifest, its stack trace retained on the Report for diagnostics.
//
// Usage:
//
//	reg := report.NewRegistry()
//	_ = reg.AddSection(report.Func("uptime", uptimeLines))
//
//	o := report.NewOrchestrator(cfg, reg, runners,
//	    report.WithHostInfo(hostInfo),
//	    report.WithSealer(sealer),
//	)
//	payload := o.Run(ctx)
package report
