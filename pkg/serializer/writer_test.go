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

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testConfig struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type rawText string

func (r rawText) Text() string { return string(r) }

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: " YAML ", want: FormatYAML},
		{in: "text", want: FormatText},
		{in: "table", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	_, err := NewWriter(Format("xml"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatJSON, &buf)
	require.NoError(t, err)

	data := []testConfig{{Name: "test1", Value: 123}, {Name: "test2", Value: 456}}
	require.NoError(t, w.Serialize(context.Background(), data))

	var result []testConfig
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, data, result)
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatYAML, &buf)
	require.NoError(t, err)

	data := testConfig{Name: "test1", Value: 123}
	require.NoError(t, w.Serialize(context.Background(), data))

	var result testConfig
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, data, result)
}

func TestWriter_SerializeText(t *testing.T) {
	t.Run("texter written verbatim", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter(FormatText, &buf)
		require.NoError(t, err)

		require.NoError(t, w.Serialize(context.Background(), rawText("<<<check_mk>>>\nVersion: 1\n")))
		assert.Equal(t, "<<<check_mk>>>\nVersion: 1\n", buf.String())
	})

	t.Run("other values as table", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter(FormatText, &buf)
		require.NoError(t, err)

		require.NoError(t, w.Serialize(context.Background(), testConfig{Name: "x", Value: 1}))
		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "FIELD"))
		assert.Contains(t, out, "Name")
		assert.Contains(t, out, "Value")
	})

	t.Run("empty value", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter(FormatText, &buf)
		require.NoError(t, err)

		require.NoError(t, w.Serialize(context.Background(), map[string]string{}))
		assert.Equal(t, "<empty>\n", buf.String())
	})
}

func TestFlattenValue(t *testing.T) {
	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(struct {
		A []int
		B map[string]string
		c int
	}{A: []int{1, 2}, B: map[string]string{"k": "v"}}), "")

	assert.Equal(t, map[string]any{"A.[0]": 1, "A.[1]": 2, "B.k": "v"}, flat)
}
