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
	"strings"
	"time"
)

const (
	// MarkerCheckMK opens the preamble and the failure manifest.
	MarkerCheckMK = "<<<check_mk>>>"

	// MarkerLocal separates sections from local check lines.
	MarkerLocal = "<<<local:sep(0)>>>"

	// FailedPrefix introduces the comma separated list of failed producers.
	FailedPrefix = "FailedPythonPlugins: "
)

// HostInfo is the host metadata reported in the preamble.
type HostInfo struct {
	OS       string `json:"os" yaml:"os"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	Hostname string `json:"hostname" yaml:"hostname"`
}

// Failure records a producer that returned an error or panicked.
type Failure struct {
	Name  string `json:"name" yaml:"name"`
	Error string `json:"error" yaml:"error"`
	Stack string `json:"stack,omitempty" yaml:"stack,omitempty"`
}

// Report is one assembled report.
type Report struct {
	ID          string        `json:"id" yaml:"id"`
	GeneratedAt time.Time     `json:"generatedAt" yaml:"generatedAt"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Host        HostInfo      `json:"host" yaml:"host"`
	Lines       []string      `json:"lines" yaml:"lines"`
	Failures    []Failure     `json:"failures,omitempty" yaml:"failures,omitempty"`
	Skipped     []string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Text joins the report lines with newlines.
func (r *Report) Text() string {
	return strings.Join(r.Lines, "\n")
}

// FailedNames returns the names in the failure manifest, in run order.
func (r *Report) FailedNames() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Name)
	}
	return names
}
