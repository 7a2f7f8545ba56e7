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
	"log/slog"
	"net"
	"time"

	cnserrors "github.com/bashclub/mkagent/pkg/errors"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"
)

const acceptBackoff = 5 * time.Millisecond

// Serve accepts collector connections on ln until ctx is done. Each
// connection is handled on its own goroutine; assembly and delivery are
// serialized by one lock. On return the listener is closed and the handler
// holding the lock has finished or ShutdownTimeout has elapsed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.setReady(true)
	slog.Info("report listener started", "address", ln.Addr().String())

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			slog.Warn("accept failed", "error", err)
			time.Sleep(acceptBackoff)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handle(ctx, conn)
		}()
	}

	s.setReady(false)
	notify(daemon.SdNotifyStopping)
	slog.Info("report listener stopped, waiting for in-flight report")
	return s.drain()
}

// drain waits for connection handlers up to ShutdownTimeout.
func (s *Server) drain() error {
	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(s.config.ShutdownTimeout):
		return cnserrors.NewWithContext(cnserrors.ErrCodeTimeout, "in-flight report did not finish",
			map[string]any{"timeout": s.config.ShutdownTimeout.String()})
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := uuid.New().String()
	peer := conn.RemoteAddr()
	log := slog.With("connID", connID, "peer", peer.String())

	if !s.config.Allow.Allows(peer) {
		reportConnections.WithLabelValues("refused").Inc()
		log.Warn("connection refused by allowlist")
		return
	}

	waitStart := time.Now()
	s.reportMu.Lock()
	defer s.reportMu.Unlock()
	reportLockWait.Observe(time.Since(waitStart).Seconds())

	// queued behind the lock when the stop signal arrived
	if ctx.Err() != nil {
		reportConnections.WithLabelValues("dropped").Inc()
		log.Debug("dropping queued connection on shutdown")
		return
	}

	// the report in progress finishes even when a stop signal arrives
	payload := s.assembler.Run(context.WithoutCancel(ctx))

	if s.config.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
			log.Debug("failed to set write deadline", "error", err)
		}
	}
	n, err := conn.Write(payload)
	reportBytes.Add(float64(n))
	if err != nil {
		reportWriteErrors.Inc()
		log.Debug("report write failed", "error", err, "written", n, "size", len(payload))
		return
	}

	reportConnections.WithLabelValues("served").Inc()
	log.Debug("report served", "bytes", n, "duration", time.Since(waitStart).String())
}
