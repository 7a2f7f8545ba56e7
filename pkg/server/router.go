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
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/bashclub/mkagent/pkg/serializer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures the side listener routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.withMiddleware(s.handleDefault))

	// probes are not rate limited
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	mux.HandleFunc("/metrics", s.withMiddleware(promhttp.Handler().ServeHTTP))

	for path, h := range s.config.Handlers {
		mux.HandleFunc(path, s.withMiddleware(h))
	}

	return mux
}

func (s *Server) routes() []string {
	routes := []string{"GET /health", "GET /ready", "GET /metrics"}
	for path := range s.config.Handlers {
		routes = append(routes, "GET "+path)
	}
	sort.Strings(routes)
	return routes
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", false,
			map[string]any{"path": r.URL.Path})
		return
	}

	slog.Debug("handling default route",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	resp := struct {
		Name       string   `json:"name"`
		Version    string   `json:"version"`
		Ready      bool     `json:"ready"`
		ReportPort int      `json:"reportPort"`
		Timestamp  string   `json:"timestamp"`
		Routes     []string `json:"routes"`
	}{
		Name:       s.config.Name,
		Version:    s.config.Version,
		Ready:      s.isReady(),
		ReportPort: s.config.Port,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Routes:     s.routes(),
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
