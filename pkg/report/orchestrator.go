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
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bashclub/mkagent/pkg/runner"
)

const tracerName = "github.com/bashclub/mkagent/pkg/report"

// Config describes what goes into the preamble and where on-disk checks live.
type Config struct {
	AgentVersion string
	OnlyFrom     []string
	LocalDir     string
	AgentDir     string
	SpoolDir     string
	Skip         []string
}

// HostInfoProvider supplies preamble metadata, gathered once per report.
type HostInfoProvider interface {
	HostInfo(ctx context.Context) (HostInfo, error)
}

// Sealer wraps the report bytes, for example in the encryption envelope.
type Sealer interface {
	Seal(plaintext []byte) []byte
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHostInfo sets the preamble metadata source.
func WithHostInfo(p HostInfoProvider) Option {
	return func(o *Orchestrator) {
		o.host = p
	}
}

// WithSealer enables sealing of Run output.
func WithSealer(s Sealer) Option {
	return func(o *Orchestrator) {
		o.sealer = s
	}
}

// WithClock replaces the wall clock used for spool ages.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) {
		o.tracer = tp.Tracer(tracerName)
	}
}

// Orchestrator runs producers and stitches their output into a report.
type Orchestrator struct {
	cfg     Config
	skip    map[string]struct{}
	reg     *Registry
	runners *runner.Registry
	host    HostInfoProvider
	sealer  Sealer
	now     func() time.Time
	tracer  trace.Tracer
}

// NewOrchestrator returns an Orchestrator over reg. runners executes on-disk
// local scripts.
func NewOrchestrator(cfg Config, reg *Registry, runners *runner.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		skip:    make(map[string]struct{}, len(cfg.Skip)),
		reg:     reg,
		runners: runners,
		now:     time.Now,
		tracer:  otel.Tracer(tracerName),
	}
	for _, s := range cfg.Skip {
		if s = strings.TrimSpace(s); s != "" {
			o.skip[s] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sealed reports whether Run output is sealed.
func (o *Orchestrator) Sealed() bool {
	return o.sealer != nil
}

func (o *Orchestrator) skipped(name string) bool {
	_, ok := o.skip[name]
	return ok
}

// Run assembles a report and returns the bytes to send to the collector.
func (o *Orchestrator) Run(ctx context.Context) []byte {
	r := o.Assemble(ctx)
	payload := []byte(r.Text())
	if o.sealer != nil {
		return o.sealer.Seal(payload)
	}
	return payload
}

// Assemble builds a report. It never fails; producer faults are recorded on
// the returned Report.
func (o *Orchestrator) Assemble(ctx context.Context) *Report {
	start := o.now()
	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: start,
	}

	ctx, span := o.tracer.Start(ctx, "report.assemble",
		trace.WithAttributes(attribute.String("report.id", r.ID)))
	defer span.End()

	r.Host = o.hostInfo(ctx)
	r.Lines = o.preamble(r.Host)

	for _, p := range o.reg.Producers(KindSection) {
		o.runProducer(ctx, r, KindSection, p)
	}

	r.Lines = append(r.Lines, MarkerLocal)
	for _, p := range o.reg.Producers(KindLocal) {
		o.runProducer(ctx, r, KindLocal, p)
	}

	r.Lines = append(r.Lines, o.localScripts(ctx, r)...)
	r.Lines = append(r.Lines, o.spool()...)

	r.Lines = append(r.Lines, "")
	if len(r.Failures) > 0 {
		r.Lines = append(r.Lines, MarkerCheckMK, FailedPrefix+strings.Join(r.FailedNames(), ","))
		span.SetAttributes(attribute.StringSlice("report.failed", r.FailedNames()))
	}

	r.Duration = o.now().Sub(start)
	reportDuration.Observe(r.Duration.Seconds())
	slog.Debug("report assembled",
		"id", r.ID,
		"lines", len(r.Lines),
		"failed", len(r.Failures),
		"duration", r.Duration.String())
	return r
}

func (o *Orchestrator) hostInfo(ctx context.Context) HostInfo {
	unknown := HostInfo{OS: "unknown", Hostname: "unknown"}
	if o.host == nil {
		return unknown
	}
	h, err := o.host.HostInfo(ctx)
	if err != nil {
		slog.Warn("failed to gather host info", "error", err)
	}
	if h.OS == "" {
		h.OS = unknown.OS
	}
	if h.Hostname == "" {
		h.Hostname = unknown.Hostname
	}
	return h
}

func (o *Orchestrator) preamble(h HostInfo) []string {
	lines := []string{
		MarkerCheckMK,
		"AgentOS: " + h.OS,
		"Version: " + o.cfg.AgentVersion,
		"Hostname: " + h.Hostname,
	}
	if len(o.cfg.OnlyFrom) > 0 {
		lines = append(lines, "OnlyFrom: "+strings.Join(o.cfg.OnlyFrom, ","))
	}
	return append(lines,
		"LocalDirectory: "+o.cfg.LocalDir,
		"AgentDirectory: "+o.cfg.AgentDir,
		"SpoolDirectory: "+o.cfg.SpoolDir,
	)
}

func (o *Orchestrator) runProducer(ctx context.Context, r *Report, kind Kind, p Producer) {
	name := p.Name()
	if o.skipped(name) {
		r.Skipped = append(r.Skipped, name)
		return
	}

	ctx, span := o.tracer.Start(ctx, "producer "+name,
		trace.WithAttributes(
			attribute.String("producer.name", name),
			attribute.String("producer.kind", string(kind)),
		))
	defer span.End()

	lines, f := invoke(ctx, p)
	if f != nil {
		producerFailures.WithLabelValues(name).Inc()
		span.SetStatus(codes.Error, f.Error)
		slog.Warn("producer failed", "producer", name, "kind", kind, "error", f.Error)
		slog.Debug("producer stack", "producer", name, "stack", f.Stack)
		r.Failures = append(r.Failures, *f)
		return
	}
	span.SetAttributes(attribute.Int("producer.lines", len(lines)))
	r.Lines = append(r.Lines, lines...)
}

func invoke(ctx context.Context, p Producer) (lines []string, f *Failure) {
	defer func() {
		if v := recover(); v != nil {
			lines = nil
			f = &Failure{
				Name:  p.Name(),
				Error: fmt.Sprintf("panic: %v", v),
				Stack: string(debug.Stack()),
			}
		}
	}()

	lines, err := p.Produce(ctx)
	if err != nil {
		return nil, &Failure{Name: p.Name(), Error: err.Error(), Stack: string(debug.Stack())}
	}
	return lines, nil
}
