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

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mkagent_runner_cache_hits_total",
			Help: "Total number of command requests served from cache",
		},
	)

	refreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mkagent_runner_refreshes_total",
			Help: "Total number of command executions",
		},
	)

	failures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mkagent_runner_failures_total",
			Help: "Total number of command executions that failed or timed out",
		},
	)

	staleReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mkagent_runner_stale_reads_total",
			Help: "Total number of callers that stopped waiting for a refresh and read cached output",
		},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mkagent_runner_refresh_duration_seconds",
			Help:    "Command execution latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
	)
)
