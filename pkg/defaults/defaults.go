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

package defaults

import "time"

// Agent identity and layout.
const (
	// Port is the TCP port collectors connect to.
	Port = 6556

	// ConfigFile is the default configuration file location.
	ConfigFile = "/etc/mkagentd/mkagentd.yaml"

	// PIDFile guards against two agents answering on the same host.
	PIDFile = "/run/mkagentd.pid"

	// LocalDir holds operator supplied local check scripts.
	LocalDir = "/usr/local/lib/check_mk_agent/local"

	// AgentDir is reported in the preamble for collector compatibility.
	AgentDir = "/usr/local/etc/check_mk"

	// SpoolDir holds pre-rendered report fragments written by other tools.
	SpoolDir = "/var/lib/check_mk_agent/spool"
)

// Runner timeouts.
const (
	// MaxWait is the longest a caller waits for an in-flight refresh before
	// reading whatever the cache holds.
	MaxWait = 30 * time.Second

	// UncachedCommandTimeout bounds a command requested with a zero TTL.
	UncachedCommandTimeout = 60 * time.Second

	// CounterSlot is the granularity of the rate helper.
	CounterSlot = 60 * time.Second
)

// Report server timeouts.
const (
	// ConnWriteTimeout bounds writing a report to a single collector.
	ConnWriteTimeout = 30 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Side listener (metrics and health) configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// RateLimit is the sustained request rate of the side listener.
	RateLimit = 20

	// RateLimitBurst is the burst size of the side listener.
	RateLimitBurst = 40
)
