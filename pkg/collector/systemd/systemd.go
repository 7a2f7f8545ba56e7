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

package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/bashclub/mkagent/pkg/report"
)

// UnitLister is the subset of the systemd D-Bus connection used by the check.
type UnitLister interface {
	ListUnitsByNamesContext(ctx context.Context, units []string) ([]dbus.UnitStatus, error)
	Close()
}

// Services is the services local check.
type Services struct {
	Units []string

	dial func(ctx context.Context) (UnitLister, error)
}

// NewServices returns the check for units.
func NewServices(units []string) *Services {
	return &Services{
		Units: units,
		dial: func(ctx context.Context) (UnitLister, error) {
			return dbus.NewSystemdConnectionContext(ctx)
		},
	}
}

// Name implements report.Producer.
func (s *Services) Name() string { return "services" }

// Produce implements report.Producer.
func (s *Services) Produce(ctx context.Context) ([]string, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	defer conn.Close()

	statuses, err := conn.ListUnitsByNamesContext(ctx, s.Units)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	byName := make(map[string]dbus.UnitStatus, len(statuses))
	for _, st := range statuses {
		byName[st.Name] = st
	}

	var stopped []string
	for _, unit := range s.Units {
		st, ok := byName[unit]
		if ok && st.ActiveState == "active" {
			continue
		}
		desc := unit
		if ok && st.Description != "" && st.LoadState == "loaded" {
			desc = st.Description
		}
		stopped = append(stopped, desc)
	}

	running := len(s.Units) - len(stopped)
	perf := fmt.Sprintf("running_services=%d|stopped_service=%d", running, len(stopped))
	if len(stopped) > 0 {
		return []string{fmt.Sprintf("2 Services %s Services: %s not running", perf, strings.Join(stopped, ", "))}, nil
	}
	return []string{fmt.Sprintf("0 Services %s All Services running", perf)}, nil
}

var _ report.Producer = (*Services)(nil)
