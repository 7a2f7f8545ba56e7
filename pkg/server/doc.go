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

// Package server delivers agent reports to monitoring collectors.
//
// # Report Listener
//
// The collector protocol has no request: connecting is the request. For
// every accepted connection the server
//
//   - refuses peers missing from the allowlist without writing a byte
//   - takes the report lock, so at most one report is assembled at a time
//   - writes the complete payload under a write deadline and closes
//
// Write failures mean the collector went away and are only logged at debug
// level.
//
// # Lifecycle
//
// Run listens on the configured port and returns after SIGTERM or SIGINT.
// Stopping closes the listener, lets the connection holding the report lock
// finish (bounded by ShutdownTimeout) and drops connections still queued.
// SIGHUP is logged and ignored. Under systemd, readiness and stopping are
// reported with sd_notify.
//
// # Side Listener
//
// When a metrics address is configured an HTTP server exposes:
//
//	GET /metrics - Prometheus metrics
//	GET /health  - liveness
//	GET /ready   - 200 while the report listener accepts connections
//
// Requests other than the probes pass through request ID, panic recovery,
// rate limiting (golang.org/x/time/rate) and logging middleware.
//
// # Usage
//
//	allow, err := server.ParseAllowlist([]string{"10.0.0.5", "192.168.10.0/24"})
//	if err != nil {
//	    return err
//	}
//	s := server.New(orchestrator,
//	    server.WithPort(6556),
//	    server.WithAllowlist(allow),
//	    server.WithMetricsAddress("127.0.0.1:9556"),
//	)
//	return s.Run(ctx)
package server
