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
	"fmt"
	"regexp"
	"strings"
)

var sectionMarker = regexp.MustCompile(`\B<<<(.*?)>>>\B`)

// Result is a snapshot of a cache entry.
type Result struct {
	Text string
	// CapturedAt is the epoch second the text was captured, 0 if never.
	CapturedAt int64
	TTL        int
}

// Empty reports whether the result carries no output.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Text) == ""
}

func (r Result) tag() string {
	return fmt.Sprintf("cached(%d,%d)", r.CapturedAt, r.TTL)
}

// tagged reports whether output carries a cache tag. Zero TTL output is
// always fresh, so local lines get no cached(t,0) prefix either.
func (r Result) tagged() bool {
	return r.TTL > 0 && r.CapturedAt > 0
}

// Raw returns the output without trailing newlines, or "" when empty.
func (r Result) Raw() string {
	if r.Empty() {
		return ""
	}
	return strings.TrimRight(r.Text, "\r\n")
}

// Sections returns the output with every <<<name>>> marker rewritten to
// <<<name:cached(capturedAt,ttl)>>>. Untagged when TTL is zero.
func (r Result) Sections() string {
	raw := r.Raw()
	if raw == "" || !r.tagged() {
		return raw
	}
	return sectionMarker.ReplaceAllString(raw, "<<<${1}:"+r.tag()+">>>")
}

// LocalLines returns the non-blank lines of the output, each prefixed with
// "cached(capturedAt,ttl) " when TTL is positive.
func (r Result) LocalLines() []string {
	raw := r.Raw()
	if raw == "" {
		return nil
	}
	prefix := ""
	if r.tagged() {
		prefix = r.tag() + " "
	}

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, prefix+l)
	}
	return out
}
