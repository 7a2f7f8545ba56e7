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

package os

import (
	"context"
	"errors"
	"os"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/bashclub/mkagent/pkg/collector/file"
	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/bashclub/mkagent/pkg/report"
)

var releasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// Provider implements report.HostInfoProvider.
type Provider struct {
	// ReleasePaths are tried in order; the first readable file wins.
	ReleasePaths []string

	hostname func() (string, error)
	platform func(ctx context.Context) (*host.InfoStat, error)
}

// NewProvider returns a Provider reading the system files.
func NewProvider() *Provider {
	return &Provider{
		ReleasePaths: releasePaths,
		hostname:     os.Hostname,
		platform:     host.InfoWithContext,
	}
}

// Release returns the key/value pairs of the first readable os-release file.
func (p *Provider) Release(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := file.NewParser(
		file.WithKVDelimiter("="),
		file.WithVTrimChars(`"'`),
		file.WithSkipEmptyValues(true),
	)

	var lastErr error
	for _, path := range p.ReleasePaths {
		m, err := parser.GetMap(path)
		if err == nil {
			return m, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = cnserrors.New(cnserrors.ErrCodeNotFound, "no os-release path configured")
	}
	return nil, lastErr
}

// HostInfo implements report.HostInfoProvider. Partial results are returned
// together with the first error encountered.
func (p *Provider) HostInfo(ctx context.Context) (report.HostInfo, error) {
	var info report.HostInfo
	var errs []error

	if rel, err := p.Release(ctx); err == nil {
		info.OS = rel["NAME"]
		info.Version = rel["VERSION_ID"]
	} else {
		errs = append(errs, err)
	}

	if info.OS == "" && p.platform != nil {
		if st, err := p.platform(ctx); err == nil {
			info.OS = st.Platform
			info.Version = st.PlatformVersion
			info.Hostname = st.Hostname
		} else {
			errs = append(errs, err)
		}
	}

	if p.hostname != nil {
		if name, err := p.hostname(); err == nil && name != "" {
			info.Hostname = name
		} else if err != nil {
			errs = append(errs, err)
		}
	}

	if info.OS != "" && info.Hostname != "" {
		return info, nil
	}
	return info, errors.Join(errs...)
}
