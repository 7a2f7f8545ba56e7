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

package agent

import (
	"errors"
	"os"
	"strconv"
	"strings"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"golang.org/x/sys/unix"
)

// PIDFile marks the host as served by this process.
type PIDFile struct {
	path string
	pid  int
}

// AcquirePIDFile writes the current PID to path. It fails with CONFLICT when
// the file names another live process. A stale file is replaced. An empty
// path disables the check and returns a nil *PIDFile, which is safe to
// Release.
func AcquirePIDFile(path string) (*PIDFile, error) {
	if path == "" {
		return nil, nil
	}

	self := os.Getpid()
	if other, ok := readPID(path); ok && other != self && processAlive(other) {
		return nil, cnserrors.NewWithContext(cnserrors.ErrCodeConflict, "agent already running",
			map[string]any{"pid": other, "path": path})
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(self)+"\n"), 0o644); err != nil {
		return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "failed to write pid file", err,
			map[string]any{"path": path})
	}
	return &PIDFile{path: path, pid: self}, nil
}

// Release removes the file if it still holds our PID.
func (p *PIDFile) Release() error {
	if p == nil {
		return nil
	}
	if pid, ok := readPID(p.path); !ok || pid != p.pid {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// processAlive probes pid with signal 0. EPERM means the process exists but
// belongs to another user.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// SignalRunning sends sig to the agent recorded in path and returns its PID.
// It fails with NOT_FOUND when no live agent is recorded.
func SignalRunning(path string, sig unix.Signal) (int, error) {
	pid, ok := readPID(path)
	if !ok || !processAlive(pid) {
		return 0, cnserrors.NewWithContext(cnserrors.ErrCodeNotFound, "agent not running",
			map[string]any{"path": path})
	}
	if err := unix.Kill(pid, sig); err != nil {
		return pid, cnserrors.WrapWithContext(cnserrors.ErrCodeInternal, "failed to signal agent", err,
			map[string]any{"pid": pid, "signal": sig.String()})
	}
	return pid, nil
}
