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

package report

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bashclub/mkagent/pkg/runner"
)

// LocalScript is an executable found under the local directory.
type LocalScript struct {
	Path string
	TTL  int
}

// Name is the skip-list name of the script.
func (s LocalScript) Name() string {
	return filepath.Base(s.Path)
}

// FindLocalScripts walks dir for executable regular files. Hidden files and
// directories are ignored. A script whose parent directory below dir has a
// numeric name gets that many seconds as its cache TTL.
func FindLocalScripts(dir string) ([]LocalScript, error) {
	var out []LocalScript
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			slog.Debug("skipping unreadable local path", "path", path, "error", err)
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		// follow symlinks like the shell would
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		if unix.Access(path, unix.X_OK) != nil {
			return nil
		}

		ttl := 0
		if parent := filepath.Dir(path); parent != filepath.Clean(dir) {
			if n, err := strconv.Atoi(filepath.Base(parent)); err == nil && n > 0 {
				ttl = n
			}
		}
		out = append(out, LocalScript{Path: path, TTL: ttl})
		return nil
	})
	return out, err
}

func (o *Orchestrator) localScripts(ctx context.Context, r *Report) []string {
	if o.cfg.LocalDir == "" || o.runners == nil {
		return nil
	}
	if st, err := os.Stat(o.cfg.LocalDir); err != nil || !st.IsDir() {
		return nil
	}

	scripts, err := FindLocalScripts(o.cfg.LocalDir)
	if err != nil {
		slog.Warn("failed to scan local directory", "dir", o.cfg.LocalDir, "error", err)
		return nil
	}

	var lines []string
	for _, s := range scripts {
		if o.skipped(s.Name()) {
			r.Skipped = append(r.Skipped, s.Name())
			continue
		}
		res := o.runners.Get(ctx, runner.Command{Args: []string{s.Path}}, s.TTL)
		lines = append(lines, res.LocalLines()...)
	}
	return lines
}

// spoolMaxAge returns the leading decimal digits of name as seconds.
func spoolMaxAge(name string) (int64, bool) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(name[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (o *Orchestrator) spool() []string {
	if o.cfg.SpoolDir == "" {
		return nil
	}
	entries, err := os.ReadDir(o.cfg.SpoolDir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read spool directory", "dir", o.cfg.SpoolDir, "error", err)
		}
		return nil
	}

	now := o.now()
	var lines []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(o.cfg.SpoolDir, e.Name())

		if maxAge, ok := spoolMaxAge(e.Name()); ok {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if now.Sub(info.ModTime()).Seconds() > float64(maxAge) {
				slog.Debug("spool file outdated", "file", e.Name(), "maxAge", maxAge)
				continue
			}
		}

		b, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("failed to read spool file", "file", path, "error", err)
			continue
		}
		if content := strings.TrimRight(string(b), "\n"); content != "" {
			lines = append(lines, content)
		}
	}
	return lines
}
