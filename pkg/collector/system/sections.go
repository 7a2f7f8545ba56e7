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
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bashclub/mkagent/pkg/report"
)

// Sections returns the section producers backed by src.
func Sections(src *Source) []report.Producer {
	return []report.Producer{
		report.Func("cpu", src.cpu),
		report.Func("mem", src.mem),
		report.Func("uptime", src.uptime),
		report.Func("df", src.df),
		report.Func("tcp", src.tcp),
		report.Func("label", src.label),
		report.Func("net", src.net),
		report.Func("ps", src.ps),
	}
}

func (s *Source) cpu(ctx context.Context) ([]string, error) {
	avg, err := s.LoadAvg(ctx)
	if err != nil {
		return nil, fmt.Errorf("load average: %w", err)
	}
	misc, err := s.LoadMisc(ctx)
	if err != nil {
		return nil, fmt.Errorf("task counts: %w", err)
	}
	ncpu, err := s.CPUCount(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("cpu count: %w", err)
	}

	var lastPid int32
	if pids, err := s.Pids(ctx); err == nil && len(pids) > 0 {
		lastPid = slices.Max(pids)
	}

	return []string{
		"<<<cpu>>>",
		fmt.Sprintf("%.2f %.2f %.2f %d/%d %d %d",
			avg.Load1, avg.Load5, avg.Load15,
			misc.ProcsRunning, misc.ProcsTotal, lastPid, ncpu),
	}, nil
}

func (s *Source) mem(ctx context.Context) ([]string, error) {
	vm, err := s.VirtualMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}
	var swapTotal, swapUsed, swapFree uint64
	if sw, err := s.SwapMemory(ctx); err == nil {
		swapTotal, swapUsed, swapFree = sw.Total, sw.Used, sw.Free
	}

	return []string{
		"<<<statgrab_mem>>>",
		fmt.Sprintf("mem.cache %d", vm.Cached),
		fmt.Sprintf("mem.free %d", vm.Free),
		fmt.Sprintf("mem.total %d", vm.Total),
		fmt.Sprintf("mem.used %d", vm.Total-vm.Available),
		fmt.Sprintf("swap.free %d", swapFree),
		fmt.Sprintf("swap.total %d", swapTotal),
		fmt.Sprintf("swap.used %d", swapUsed),
	}, nil
}

func (s *Source) uptime(ctx context.Context) ([]string, error) {
	up, err := s.Uptime(ctx)
	if err != nil {
		return nil, fmt.Errorf("uptime: %w", err)
	}
	var idle float64
	if times, err := s.CPUTimes(ctx, false); err == nil && len(times) > 0 {
		idle = times[0].Idle
	}
	return []string{
		"<<<uptime>>>",
		fmt.Sprintf("%d %.2f", up, idle),
	}, nil
}

func (s *Source) df(ctx context.Context) ([]string, error) {
	parts, err := s.Partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("partitions: %w", err)
	}

	lines := []string{"<<<df>>>"}
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		u, err := s.Usage(ctx, p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %d %d %d %.0f%% %s",
			p.Device, p.Fstype, u.Total/1024, u.Used/1024, u.Free/1024, u.UsedPercent, p.Mountpoint))
	}
	return lines, nil
}

func (s *Source) tcp(ctx context.Context) ([]string, error) {
	conns, err := s.Connections(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("connections: %w", err)
	}

	counts := map[string]int{}
	for _, c := range conns {
		if c.Status == "ESTABLISHED" || c.Status == "LISTEN" {
			counts[c.Status]++
		}
	}

	lines := []string{"<<<tcp_conn_stats>>>"}
	for _, state := range []string{"ESTABLISHED", "LISTEN"} {
		if n := counts[state]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s %d", state, n))
		}
	}
	return lines, nil
}

func (s *Source) label(ctx context.Context) ([]string, error) {
	lines := []string{"<<<labels:sep(0)>>>"}
	_, role, err := s.Virtualization(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtualization: %w", err)
	}
	if role == "guest" {
		lines = append(lines, `{"cmk/device_type":"vm"}`)
	}
	return lines, nil
}

func (s *Source) net(ctx context.Context) ([]string, error) {
	ifaces, err := s.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}
	counters, err := s.IOCounters(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("interface counters: %w", err)
	}
	byName := make(map[string]int, len(counters))
	for i, c := range counters {
		byName[c.Name] = i
	}

	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Name < ifaces[j].Name })
	now := time.Now().Unix()

	lines := []string{"<<<statgrab_net>>>"}
	for _, ifc := range ifaces {
		if slices.Contains(ifc.Flags, "loopback") {
			continue
		}
		n := ifc.Name
		up := slices.Contains(ifc.Flags, "up") && slices.Contains(ifc.Flags, "running")
		if ifc.HardwareAddr != "" {
			lines = append(lines, fmt.Sprintf("%s.phys_address %s", n, ifc.HardwareAddr))
		}
		lines = append(lines,
			fmt.Sprintf("%s.interface_name %s", n, n),
			fmt.Sprintf("%s.mtu %d", n, ifc.MTU),
			fmt.Sprintf("%s.up %t", n, up),
			fmt.Sprintf("%s.systime %d", n, now),
		)
		if i, ok := byName[n]; ok {
			c := counters[i]
			lines = append(lines,
				fmt.Sprintf("%s.rx %d", n, c.BytesRecv),
				fmt.Sprintf("%s.tx %d", n, c.BytesSent),
				fmt.Sprintf("%s.ipackets %d", n, c.PacketsRecv),
				fmt.Sprintf("%s.opackets %d", n, c.PacketsSent),
				fmt.Sprintf("%s.ierror %d", n, c.Errin),
				fmt.Sprintf("%s.oerror %d", n, c.Errout),
				fmt.Sprintf("%s.idrop %d", n, c.Dropin),
				fmt.Sprintf("%s.drop %d", n, c.Dropout),
			)
		}
	}
	return lines, nil
}

func (s *Source) ps(ctx context.Context) ([]string, error) {
	procs, err := s.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("process table: %w", err)
	}
	lines := make([]string, 0, len(procs)+1)
	lines = append(lines, "<<<ps>>>")
	for _, p := range procs {
		user := p.User
		if user == "" {
			user = "unknown"
		}
		lines = append(lines, fmt.Sprintf("(%s,%d,%d,%.1f) %s",
			user, p.VSZ, p.RSS, p.CPU, strings.ReplaceAll(p.Command, "\n", " ")))
	}
	return lines, nil
}
