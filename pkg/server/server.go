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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Assembler produces one complete response payload per call.
type Assembler interface {
	Run(ctx context.Context) []byte
}

// Server answers collector connections with a report and optionally serves
// metrics and probes over HTTP.
type Server struct {
	config    *Config
	assembler Assembler

	// reportMu serializes report assembly and delivery across connections.
	reportMu sync.Mutex
	conns    sync.WaitGroup

	httpServer  *http.Server
	rateLimiter *rate.Limiter

	// hangup receives SIGHUP; registered by the caller when set.
	hangup chan os.Signal

	mu         sync.RWMutex
	ready      bool
	listenAddr string
}

// New creates a server delivering the output of a.
func New(a Assembler, opts ...Option) *Server {
	s := &Server{
		config:    NewConfig(),
		assembler: a,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rateLimiter = rate.NewLimiter(s.config.RateLimit, s.config.RateLimitBurst)
	if s.config.MetricsAddress != "" {
		s.httpServer = &http.Server{
			Addr:              s.config.MetricsAddress,
			Handler:           s.setupRoutes(),
			ReadTimeout:       s.config.ReadTimeout,
			ReadHeaderTimeout: s.config.ReadHeaderTimeout,
			WriteTimeout:      s.config.HTTPWriteTimeout,
			IdleTimeout:       s.config.IdleTimeout,
		}
	}
	return s
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Addr returns the configured report listener address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Address, strconv.Itoa(s.config.Port))
}

// ListenAddr returns the address Run is listening on, or "" before the
// listener is open.
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

func (s *Server) setListenAddr(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenAddr = addr
}

// Run listens on the configured port and serves until ctx is done or
// SIGTERM/SIGINT arrives. SIGHUP is logged and otherwise ignored.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGHUP must be caught before the listener opens; its default action
	// terminates the process.
	hup := s.hangup
	if hup == nil {
		hup = make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
	}
	go s.watchHangup(ctx, hup)

	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return cnserrors.WrapWithContext(cnserrors.ErrCodeUnavailable, "failed to listen", err,
			map[string]any{"address": s.Addr()})
	}
	s.setListenAddr(ln.Addr().String())
	defer s.setListenAddr("")

	slog.Info("server config",
		slog.String("address", ln.Addr().String()),
		slog.Int("allowlist", s.config.Allow.Len()),
		slog.String("metricsAddress", s.config.MetricsAddress),
		slog.Duration("writeTimeout", s.config.WriteTimeout),
		slog.Duration("shutdownTimeout", s.config.ShutdownTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Serve(gctx, ln)
	})

	if s.httpServer != nil {
		g.Go(func() error {
			return s.serveHTTP(gctx)
		})
	}

	notify(daemon.SdNotifyReady)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func (s *Server) watchHangup(ctx context.Context, hup <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			slog.Info("received SIGHUP, still running", "address", s.Addr())
		}
	}
}

// serveHTTP runs the side listener until ctx is done.
func (s *Server) serveHTTP(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		slog.Info("side listener started", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return cnserrors.WrapWithContext(cnserrors.ErrCodeUnavailable, "side listener failed", err,
			map[string]any{"address": s.httpServer.Addr})
	}
}

func notify(state string) {
	if ok, err := daemon.SdNotify(false, state); err != nil {
		slog.Debug("sd_notify failed", "state", state, "error", err)
	} else if ok {
		slog.Debug("sd_notify sent", "state", state)
	}
}
