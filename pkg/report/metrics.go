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

package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mkagent_report_producer_failures_total",
			Help: "Total number of producer runs that failed or panicked",
		},
		[]string{"producer"},
	)

	reportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mkagent_report_duration_seconds",
			Help:    "Report assembly latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)
