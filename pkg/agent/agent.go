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
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bashclub/mkagent/pkg/collector"
	osinfo "github.com/bashclub/mkagent/pkg/collector/os"
	"github.com/bashclub/mkagent/pkg/config"
	"github.com/bashclub/mkagent/pkg/counter"
	"github.com/bashclub/mkagent/pkg/envelope"
	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/bashclub/mkagent/pkg/report"
	"github.com/bashclub/mkagent/pkg/runner"
	"github.com/bashclub/mkagent/pkg/server"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"
)

// Option configures an Agent.
type Option func(*Agent)

// WithVersion sets the agent version reported in the preamble.
func WithVersion(version string) Option {
	return func(a *Agent) {
		a.version = version
	}
}

// WithTracerProvider sets the provider for report spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Agent) {
		a.tracerProvider = tp
	}
}

// WithFactory replaces the producer factory.
func WithFactory(f collector.Factory) Option {
	return func(a *Agent) {
		a.factory = f
	}
}

// WithHostInfo replaces the preamble metadata source.
func WithHostInfo(p report.HostInfoProvider) Option {
	return func(a *Agent) {
		a.host = p
	}
}

// WithExecutor replaces the process executor of the runner registry.
func WithExecutor(ex runner.Executor) Option {
	return func(a *Agent) {
		a.executor = ex
	}
}

// Agent is a configured agent.
type Agent struct {
	cfg     *config.Config
	version string

	tracerProvider trace.TracerProvider
	factory        collector.Factory
	host           report.HostInfoProvider
	executor       runner.Executor

	allow        *server.Allowlist
	sealer       *envelope.Sealer
	runners      *runner.Registry
	counters     *counter.Store
	producers    *report.Registry
	orchestrator *report.Orchestrator
}

// New validates cfg and wires the agent. Configuration faults, including a
// passphrase the envelope rejects, are returned here so that a
// misconfigured agent never starts serving.
func New(cfg *config.Config, opts ...Option) (*Agent, error) {
	if cfg == nil {
		return nil, cnserrors.New(cnserrors.ErrCodeInvalidRequest, "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Agent{
		cfg:     cfg,
		version: "dev",
		host:    osinfo.NewProvider(),
	}
	for _, opt := range opts {
		opt(a)
	}

	allow, err := cfg.Allowlist()
	if err != nil {
		return nil, err
	}
	a.allow = allow

	if cfg.Encrypted() {
		s, sErr := envelope.NewSealer(cfg.Encrypt)
		if sErr != nil {
			return nil, cnserrors.Wrap(cnserrors.ErrCodeInvalidRequest, "invalid encryption passphrase", sErr)
		}
		a.sealer = s
	}

	runnerOpts := []runner.Option{
		runner.WithMaxWait(cfg.MaxWait),
		runner.WithUncachedTimeout(cfg.UncachedTimeout),
	}
	if a.executor != nil {
		runnerOpts = append(runnerOpts, runner.WithExecutor(a.executor))
	}
	a.runners = runner.NewRegistry(runnerOpts...)
	a.counters = counter.NewStore()

	if a.factory == nil {
		a.factory = collector.NewDefaultFactory(a.runners, a.counters,
			collector.WithServices(cfg.Services),
			collector.WithInterfaces(cfg.Interfaces),
			collector.WithCommands(cfg.Commands),
		)
	}

	a.producers = report.NewRegistry()
	if err := collector.Register(a.producers, a.factory); err != nil {
		return nil, err
	}

	orchOpts := []report.Option{report.WithHostInfo(a.host)}
	if a.sealer != nil {
		orchOpts = append(orchOpts, report.WithSealer(a.sealer))
	}
	if a.tracerProvider != nil {
		orchOpts = append(orchOpts, report.WithTracerProvider(a.tracerProvider))
	}
	a.orchestrator = report.NewOrchestrator(report.Config{
		AgentVersion: a.version,
		OnlyFrom:     cfg.OnlyFrom,
		LocalDir:     cfg.LocalDir,
		AgentDir:     cfg.AgentDir,
		SpoolDir:     cfg.SpoolDir,
		Skip:         cfg.SkipCheck,
	}, a.producers, a.runners, orchOpts...)

	slog.Debug("agent wired",
		"producers", len(a.producers.Names()),
		"encrypted", a.sealer != nil,
		"allowlist", a.allow.Len(),
		"skip", []string(cfg.SkipCheck),
	)
	return a, nil
}

// Orchestrator returns the report orchestrator.
func (a *Agent) Orchestrator() *report.Orchestrator {
	return a.orchestrator
}

// Sealer returns the envelope sealer, or nil when encryption is off.
func (a *Agent) Sealer() *envelope.Sealer {
	return a.sealer
}

// Producers returns the names of all registered producers.
func (a *Agent) Producers() []string {
	return a.producers.Names()
}

// Server returns the report server for the agent configuration.
func (a *Agent) Server(opts ...server.Option) *server.Server {
	base := []server.Option{
		server.WithName("mkagentd"),
		server.WithVersion(a.version),
		server.WithPort(a.cfg.Port),
		server.WithAllowlist(a.allow),
		server.WithShutdownTimeout(a.cfg.ShutdownTimeout),
		server.WithMetricsAddress(a.cfg.MetricsAddress),
	}
	return server.New(a.orchestrator, append(base, opts...)...)
}

// Serve takes the PID file and runs the report server until ctx is done or
// a stop signal arrives.
func (a *Agent) Serve(ctx context.Context) error {
	// status sends SIGHUP to the PID file owner, so it has to be caught
	// before the file exists.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, unix.SIGHUP)
	defer signal.Stop(hup)

	pid, err := AcquirePIDFile(a.cfg.PIDFile)
	if err != nil {
		return err
	}
	defer func() {
		if rErr := pid.Release(); rErr != nil {
			slog.Warn("failed to remove pid file", "path", a.cfg.PIDFile, "error", rErr)
		}
	}()

	return a.Server(server.WithHangup(hup)).Run(ctx)
}
