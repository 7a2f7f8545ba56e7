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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSections(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{
			name: "tags every marker",
			res:  Result{Text: "<<<zpool>>>\nok\n<<<zfs:sep(9)>>>\nx\n", CapturedAt: 1700000000, TTL: 60},
			want: "<<<zpool:cached(1700000000,60)>>>\nok\n<<<zfs:sep(9):cached(1700000000,60)>>>\nx",
		},
		{
			name: "zero ttl leaves markers",
			res:  Result{Text: "<<<zpool>>>\nok\n", CapturedAt: 1700000000, TTL: 0},
			want: "<<<zpool>>>\nok",
		},
		{
			name: "blank output",
			res:  Result{Text: " \n\n", CapturedAt: 1700000000, TTL: 60},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Sections())
		})
	}
}

func TestLocalLines(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want []string
	}{
		{
			name: "prefixes non-blank lines",
			res:  Result{Text: "0 a - ok\n\n1 b - warn\n", CapturedAt: 1700000000, TTL: 300},
			want: []string{"cached(1700000000,300) 0 a - ok", "cached(1700000000,300) 1 b - warn"},
		},
		{
			name: "zero ttl drops blanks only",
			res:  Result{Text: "0 a - ok\r\n  \n", CapturedAt: 1700000000},
			want: []string{"0 a - ok"},
		},
		{
			name: "empty",
			res:  Result{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.LocalLines())
		})
	}
}

func TestCommandValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"args", Command{Args: []string{"uptime"}}, false},
		{"shell", Command{Shell: "uptime | cut -d, -f1"}, false},
		{"both", Command{Args: []string{"uptime"}, Shell: "uptime"}, true},
		{"neither", Command{}, true},
		{"blank program", Command{Args: []string{" "}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
