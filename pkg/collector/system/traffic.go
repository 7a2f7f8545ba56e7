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

package system

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bashclub/mkagent/pkg/counter"
	"github.com/bashclub/mkagent/pkg/report"
)

const (
	domainBytes   = "traffic_bytes"
	domainPackets = "traffic_packets"
)

// Traffic is the local check reporting per-interface throughput.
type Traffic struct {
	src      *Source
	counters *counter.Store
	// aliases maps interface names to display names. When non-empty only
	// the listed interfaces are reported.
	aliases map[string]string
}

// NewTraffic returns the traffic local check.
func NewTraffic(src *Source, counters *counter.Store, aliases map[string]string) *Traffic {
	return &Traffic{
		src:      src,
		counters: counters,
		aliases:  aliases,
	}
}

// Name implements report.Producer.
func (t *Traffic) Name() string { return "traffic" }

func (t *Traffic) displayName(iface string) string {
	if alias := t.aliases[iface]; alias != "" {
		return alias
	}
	return cases.Upper(language.Und).String(iface)
}

// Produce implements report.Producer.
func (t *Traffic) Produce(ctx context.Context) ([]string, error) {
	stats, err := t.src.IOCounters(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("interface counters: %w", err)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	var lines []string
	for _, st := range stats {
		if len(t.aliases) > 0 {
			if _, ok := t.aliases[st.Name]; !ok {
				continue
			}
		} else if st.Name == "lo" || st.Name == "lo0" {
			continue
		}

		inB, outB := t.counters.Rate(domainBytes, st.Name, int64(st.BytesRecv), int64(st.BytesSent))
		inP, outP := t.counters.Rate(domainPackets, st.Name, int64(st.PacketsRecv), int64(st.PacketsSent))

		lines = append(lines, fmt.Sprintf(
			"0 \"Interface %s\" if_in_octets=%.0f|if_out_octets=%.0f|if_in_pkts=%.0f|if_out_pkts=%.0f In: %s/s Out: %s/s (%s)",
			t.displayName(st.Name), inB, outB, inP, outP, humanBytes(inB), humanBytes(outB), st.Name))
	}
	return lines, nil
}

var _ report.Producer = (*Traffic)(nil)

func humanBytes(v float64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
