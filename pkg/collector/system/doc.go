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

// Package system provides the built-in report producers backed by gopsutil.
//
// Sections:
//
//	<<<cpu>>>               load averages, running/total tasks, last pid, cpu count
//	<<<statgrab_mem>>>      memory and swap usage in bytes
//	<<<uptime>>>            uptime and idle seconds
//	<<<df>>>                usage of physical filesystems in KiB
//	<<<tcp_conn_stats>>>    count of ESTABLISHED and LISTEN sockets
//	<<<labels:sep(0)>>>     host labels such as cmk/device_type=vm
//	<<<statgrab_net>>>      interface counters and link attributes
//	<<<ps>>>                process table
//
// The traffic local check turns interface byte and packet counters into
// per-second rates with the counter store.
//
// All system access goes through a Source so producers can be tested with
// canned data.
package system
