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
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	units  []dbus.UnitStatus
	err    error
	closed bool
}

func (f *fakeConn) ListUnitsByNamesContext(_ context.Context, names []string) ([]dbus.UnitStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []dbus.UnitStatus
	for _, u := range f.units {
		for _, n := range names {
			if u.Name == n {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeConn) Close() { f.closed = true }

func newTestServices(units []string, conn *fakeConn) *Services {
	s := NewServices(units)
	s.dial = func(context.Context) (UnitLister, error) { return conn, nil }
	return s
}

func TestServicesAllRunning(t *testing.T) {
	conn := &fakeConn{units: []dbus.UnitStatus{
		{Name: "sshd.service", LoadState: "loaded", ActiveState: "active"},
		{Name: "unbound.service", LoadState: "loaded", ActiveState: "active"},
	}}
	s := newTestServices([]string{"sshd.service", "unbound.service"}, conn)

	lines, err := s.Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0 Services running_services=2|stopped_service=0 All Services running"}, lines)
	assert.True(t, conn.closed)
}

func TestServicesStopped(t *testing.T) {
	conn := &fakeConn{units: []dbus.UnitStatus{
		{Name: "sshd.service", LoadState: "loaded", ActiveState: "active"},
		{Name: "docker.service", Description: "Docker Application Container Engine", LoadState: "loaded", ActiveState: "failed"},
		{Name: "typo.service", Description: "typo.service", LoadState: "not-found", ActiveState: "inactive"},
	}}
	s := newTestServices([]string{"sshd.service", "docker.service", "typo.service", "gone.service"}, conn)

	lines, err := s.Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2 Services running_services=1|stopped_service=3 Services: Docker Application Container Engine, typo.service, gone.service not running",
	}, lines)
}

func TestServicesErrors(t *testing.T) {
	t.Run("dial", func(t *testing.T) {
		s := NewServices([]string{"sshd.service"})
		s.dial = func(context.Context) (UnitLister, error) { return nil, errors.New("no bus") }
		_, err := s.Produce(context.Background())
		assert.ErrorContains(t, err, "failed to connect to systemd")
	})

	t.Run("list", func(t *testing.T) {
		conn := &fakeConn{err: errors.New("access denied")}
		s := newTestServices([]string{"sshd.service"}, conn)
		_, err := s.Produce(context.Background())
		assert.ErrorContains(t, err, "failed to list units")
		assert.True(t, conn.closed)
	})
}

func TestServicesIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	lines, err := NewServices([]string{"dbus.service"}).Produce(context.Background())
	if err != nil {
		t.Skipf("systemd not available: %v", err)
	}
	assert.Len(t, lines, 1)
}
