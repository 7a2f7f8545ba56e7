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

// Package systemd provides the services local check.
//
// The check asks systemd over D-Bus for the state of each configured unit and
// reports a single line:
//
//	0 Services running_services=3|stopped_service=0 All Services running
//	2 Services running_services=2|stopped_service=1 Services: Docker Application Container Engine not running
//
// A unit counts as running when its ActiveState is "active". Units that are
// not loaded (typos, uninstalled packages) count as stopped.
//
// # Usage
//
//	svc := systemd.NewServices([]string{"sshd.service", "unbound.service"})
//	_ = reg.AddLocal(svc)
package systemd
