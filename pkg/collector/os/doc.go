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

// Package os reports the host metadata shown in the report preamble:
// operating system name and version from os-release, and the hostname.
//
// Per the freedesktop.org convention /etc/os-release is read first with
// /usr/lib/os-release as fallback. Hosts without either file (the BSDs) fall
// back to the platform information of gopsutil.
package os
