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

package server

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllowlist(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		wantLen int
		wantErr bool
	}{
		{name: "empty", entries: nil, wantLen: 0},
		{name: "blank entries ignored", entries: []string{" ", ""}, wantLen: 0},
		{name: "addresses", entries: []string{"10.0.0.1", "::1"}, wantLen: 2},
		{name: "prefix", entries: []string{"192.168.0.0/24"}, wantLen: 1},
		{name: "mixed with spaces", entries: []string{" 10.0.0.1", "fd00::/8 "}, wantLen: 2},
		{name: "bad address", entries: []string{"10.0.0.300"}, wantErr: true},
		{name: "bad prefix", entries: []string{"10.0.0.0/33"}, wantErr: true},
		{name: "hostname", entries: []string{"monitor.example.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAllowlist(tt.entries)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, a.Len())
		})
	}
}

func TestAllowlist_AllowsAddr(t *testing.T) {
	a, err := ParseAllowlist([]string{"10.0.0.1", "192.168.1.0/24", "fd00::/8"})
	require.NoError(t, err)

	tests := []struct {
		addr string
		want bool
	}{
		{"10.0.0.1", true},
		{"10.0.0.2", false},
		{"192.168.1.77", true},
		{"192.168.2.1", false},
		{"::ffff:10.0.0.1", true},
		{"fd12::1", true},
		{"fe80::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, a.AllowsAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestAllowlist_Allows(t *testing.T) {
	a, err := ParseAllowlist([]string{"127.0.0.1"})
	require.NoError(t, err)

	assert.True(t, a.Allows(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 40000}))
	assert.False(t, a.Allows(&net.TCPAddr{IP: net.ParseIP("127.0.0.2"), Port: 40000}))
	assert.False(t, a.Allows(&net.UnixAddr{Name: "/tmp/sock", Net: "unix"}))

	var empty *Allowlist
	assert.True(t, empty.Allows(&net.UnixAddr{Name: "/tmp/sock", Net: "unix"}))
}
