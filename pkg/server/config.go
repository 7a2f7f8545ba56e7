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
	"net/http"
	"os"
	"time"

	"github.com/bashclub/mkagent/pkg/defaults"
	"golang.org/x/time/rate"
)

// Config holds server configuration
type Config struct {
	// Server identity
	Name    string
	Version string

	// Report listener
	Address string
	Port    int
	Allow   *Allowlist

	// WriteTimeout bounds writing one report to a collector.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds waiting for the in-flight report on stop.
	ShutdownTimeout time.Duration

	// MetricsAddress enables the HTTP side listener when not empty.
	MetricsAddress string

	// Additional handlers mounted on the side listener
	Handlers map[string]http.HandlerFunc

	// Side listener rate limiting
	RateLimit      rate.Limit
	RateLimitBurst int

	// Side listener timeouts
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	HTTPWriteTimeout  time.Duration
	IdleTimeout       time.Duration
}

// NewConfig returns a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Name:              "mkagentd",
		Version:           "undefined",
		Port:              defaults.Port,
		WriteTimeout:      defaults.ConnWriteTimeout,
		ShutdownTimeout:   defaults.ServerShutdownTimeout,
		RateLimit:         defaults.RateLimit,
		RateLimitBurst:    defaults.RateLimitBurst,
		ReadTimeout:       defaults.ServerReadTimeout,
		ReadHeaderTimeout: defaults.ServerReadHeaderTimeout,
		HTTPWriteTimeout:  defaults.ServerWriteTimeout,
		IdleTimeout:       defaults.ServerIdleTimeout,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the server name reported by the side listener.
func WithName(name string) Option {
	return func(s *Server) {
		s.config.Name = name
	}
}

// WithVersion sets the version reported by the side listener.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.config.Version = version
	}
}

// WithAddress sets the host the report listener binds to.
func WithAddress(address string) Option {
	return func(s *Server) {
		s.config.Address = address
	}
}

// WithPort sets the report listener port.
func WithPort(port int) Option {
	return func(s *Server) {
		s.config.Port = port
	}
}

// WithHangup hands Run a channel the caller already registered for SIGHUP
// with signal.Notify. The caller owns signal.Stop.
func WithHangup(ch chan os.Signal) Option {
	return func(s *Server) {
		s.hangup = ch
	}
}

// WithAllowlist restricts which peers receive a report.
func WithAllowlist(a *Allowlist) Option {
	return func(s *Server) {
		s.config.Allow = a
	}
}

// WithShutdownTimeout bounds the graceful stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.config.ShutdownTimeout = d
		}
	}
}

// WithWriteTimeout bounds writing a report to one collector.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.config.WriteTimeout = d
		}
	}
}

// WithMetricsAddress enables the HTTP side listener on addr.
func WithMetricsAddress(addr string) Option {
	return func(s *Server) {
		s.config.MetricsAddress = addr
	}
}

// WithHandler mounts extra handlers on the side listener.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		s.config.Handlers = handlers
	}
}

// WithRateLimit sets the side listener rate limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) {
		s.config.RateLimit = limit
		s.config.RateLimitBurst = burst
	}
}
