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

// Package config loads the agent configuration file.
//
// The file is YAML. The flat `key: value` layout of existing check_mk agent
// configurations is accepted as is, so
//
//	port: 6556
//	encrypt: secret
//	onlyfrom: 10.0.0.5,192.168.10.0/24
//	skipcheck: ps,tcp
//
// loads unchanged. List values take either a comma separated string or a
// YAML sequence. Additional keys:
//
//	agentdir: /usr/local/etc/check_mk
//	pidfile: /run/mkagentd.pid
//	metrics_address: 127.0.0.1:9556
//	shutdown_timeout: 30s
//	max_wait: 30s
//	uncached_timeout: 60s
//	services: [sshd.service, unbound.service]
//	interfaces:
//	  eth0: WAN
//	commands:
//	  - name: zpool
//	    section: zpool_status
//	    args: [zpool, status, -x]
//	    ttl: 300
//
// Keys that are absent keep their defaults. Unknown keys are rejected.
package config
