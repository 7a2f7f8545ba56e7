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

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessInfo is one row of the process table.
type ProcessInfo struct {
	User    string
	VSZ     uint64
	RSS     uint64
	CPU     float64
	Command string
}

// Source is the system access used by the producers.
type Source struct {
	LoadAvg        func(ctx context.Context) (*load.AvgStat, error)
	LoadMisc       func(ctx context.Context) (*load.MiscStat, error)
	CPUCount       func(ctx context.Context, logical bool) (int, error)
	CPUTimes       func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)
	Pids           func(ctx context.Context) ([]int32, error)
	VirtualMemory  func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory     func(ctx context.Context) (*mem.SwapMemoryStat, error)
	Uptime         func(ctx context.Context) (uint64, error)
	Virtualization func(ctx context.Context) (string, string, error)
	Partitions     func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	Usage          func(ctx context.Context, path string) (*disk.UsageStat, error)
	Connections    func(ctx context.Context, kind string) ([]psnet.ConnectionStat, error)
	IOCounters     func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
	Interfaces     func(ctx context.Context) (psnet.InterfaceStatList, error)
	Processes      func(ctx context.Context) ([]ProcessInfo, error)
}

// DefaultSource returns a Source reading the running system.
func DefaultSource() *Source {
	return &Source{
		LoadAvg:        load.AvgWithContext,
		LoadMisc:       load.MiscWithContext,
		CPUCount:       cpu.CountsWithContext,
		CPUTimes:       cpu.TimesWithContext,
		Pids:           process.PidsWithContext,
		VirtualMemory:  mem.VirtualMemoryWithContext,
		SwapMemory:     mem.SwapMemoryWithContext,
		Uptime:         host.UptimeWithContext,
		Virtualization: host.VirtualizationWithContext,
		Partitions:     disk.PartitionsWithContext,
		Usage:          disk.UsageWithContext,
		Connections:    psnet.ConnectionsWithContext,
		IOCounters:     psnet.IOCountersWithContext,
		Interfaces:     psnet.InterfacesWithContext,
		Processes:      processTable,
	}
}

func processTable(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		cmd, err := p.CmdlineWithContext(ctx)
		if err != nil {
			// process exited while walking the table
			continue
		}
		if cmd == "" {
			name, _ := p.NameWithContext(ctx)
			cmd = "[" + name + "]"
		}
		info := ProcessInfo{Command: cmd}
		info.User, _ = p.UsernameWithContext(ctx)
		if m, err := p.MemoryInfoWithContext(ctx); err == nil {
			info.VSZ = m.VMS / 1024
			info.RSS = m.RSS / 1024
		}
		info.CPU, _ = p.CPUPercentWithContext(ctx)
		out = append(out, info)
	}
	return out, nil
}
