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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
)

func TestExecExecutor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process execution in short mode")
	}
	ex := &ExecExecutor{}

	t.Run("success", func(t *testing.T) {
		out, err := ex.Execute(context.Background(), Command{Shell: "echo hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello\n", out)
	})

	t.Run("non-zero exit keeps stdout", func(t *testing.T) {
		out, err := ex.Execute(context.Background(), Command{Shell: "echo partial; exit 3"})
		require.Error(t, err)
		assert.Equal(t, "partial\n", out)
		assert.Equal(t, cnserrors.ErrCodeInternal, cnserrors.CodeOf(err))
	})

	t.Run("timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := ex.Execute(ctx, Command{Args: []string{"sleep", "5"}})
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeTimeout, cnserrors.CodeOf(err))
	})

	t.Run("missing program", func(t *testing.T) {
		_, err := ex.Execute(context.Background(), Command{Args: []string{"/nonexistent/probe"}})
		require.Error(t, err)
		assert.Equal(t, cnserrors.ErrCodeNotFound, cnserrors.CodeOf(err))
	})
}
