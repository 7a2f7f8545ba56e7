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
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
)

// Shell is the interpreter used for Command.Shell.
const Shell = "/bin/sh"

// Command describes an external program. Exactly one of Args or Shell is set.
type Command struct {
	// Args is the argument vector; Args[0] is resolved via PATH.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Shell is a command line passed to /bin/sh -c.
	Shell string `json:"shell,omitempty" yaml:"shell,omitempty"`

	// CaptureOnError keeps stdout when the command exits non-zero or times out.
	CaptureOnError bool `json:"captureOnError,omitempty" yaml:"capture_on_error,omitempty"`
}

// Identity returns the cache key of the command. Commands with the same
// arguments and flags share one cache entry.
func (c Command) Identity() string {
	var b strings.Builder
	if c.Shell != "" {
		b.WriteString("sh:")
		b.WriteString(strings.TrimSpace(c.Shell))
	} else {
		b.WriteString("argv:")
		for i, a := range c.Args {
			if i > 0 {
				b.WriteByte(0)
			}
			b.WriteString(a)
		}
	}
	b.WriteString("|capture=")
	b.WriteString(strconv.FormatBool(c.CaptureOnError))
	return b.String()
}

// String renders the command for logs.
func (c Command) String() string {
	if c.Shell != "" {
		return c.Shell
	}
	return strings.Join(c.Args, " ")
}

// Validate reports whether the command can be executed.
func (c Command) Validate() error {
	switch {
	case c.Shell != "" && len(c.Args) > 0:
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "command sets both args and shell")
	case c.Shell == "" && len(c.Args) == 0:
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "command has neither args nor shell")
	case len(c.Args) > 0 && strings.TrimSpace(c.Args[0]) == "":
		return cnserrors.New(cnserrors.ErrCodeInvalidRequest, "command has an empty program name")
	}
	return nil
}

// Executor runs a command and returns its standard output.
// On failure the returned text holds whatever was written before the failure.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (string, error)
}

// ExecExecutor runs commands as child processes.
type ExecExecutor struct {
	// WaitDelay bounds how long pipes are drained after the context expires.
	WaitDelay time.Duration
}

// Execute implements Executor.
func (e *ExecExecutor) Execute(ctx context.Context, cmd Command) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	var c *exec.Cmd
	if cmd.Shell != "" {
		c = exec.CommandContext(ctx, Shell, "-c", cmd.Shell)
	} else {
		c = exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	}
	c.WaitDelay = e.WaitDelay
	if c.WaitDelay == 0 {
		c.WaitDelay = time.Second
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), cnserrors.WrapWithContext(cnserrors.ErrCodeTimeout,
			"command timed out", ctxErr, map[string]any{"command": cmd.String()})
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), cnserrors.WrapWithContext(cnserrors.ErrCodeInternal,
			"command exited with error", err, map[string]any{
				"command":  cmd.String(),
				"exitCode": exitErr.ExitCode(),
				"stderr":   strings.TrimSpace(stderr.String()),
			})
	}

	return stdout.String(), cnserrors.WrapWithContext(cnserrors.ErrCodeNotFound,
		"failed to start command", err, map[string]any{"command": cmd.String()})
}
