/*
 * This file is part of firebot-script-google-cloud-tts (https://github.com/heyaapl/firebot-script-google-cloud-tts).
 * Copyright (C) 2025 heyaapl
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/api"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/config"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/logging"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/security"
	"github.com/heyaapl/firebot-script-google-cloud-tts/internal/storage"
)

// ResourceResolver maps a short-lived resource token to a local file path
type ResourceResolver interface {
	Resolve(token string) (string, bool)
}

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping() error
}

// ConnectionChecker reports broker connectivity
type ConnectionChecker interface {
	IsConnected() bool
}

// Dependencies are the components the host surface exposes over HTTP.
// Messaging, Database and Metrics are optional.
type Dependencies struct {
	Runner      api.EffectRunner
	Credentials api.CredentialStore
	UsageStore  *storage.UsageEventsStore
	LastUsage   api.LastEventSource
	Resources   ResourceResolver
	Database    Pinger
	Messaging   ConnectionChecker
	Metrics     http.Handler
}

// Server is the HTTP host surface of the Google Cloud TTS effect
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	server *http.Server
	deps   Dependencies

	// ctx is the base context of every request; Stop cancels it so
	// effects waiting for playback give up before shutdown
	ctx    context.Context
	cancel context.CancelFunc

	started time.Time
}

// New creates a server and registers its routes
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Runner == nil || deps.Credentials == nil || deps.Resources == nil {
		return nil, errors.New("runner, credentials and resource resolver are required")
	}

	mux := http.NewServeMux()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		mux:     mux,
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		started: time.Now(),
	}

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return s.ctx },
	}

	s.routes()
	return s, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called
func (s *Server) Start() error {
	if logging.Sugar != nil {
		logging.Sugar.Infow("🚀 Google Cloud TTS host starting",
			"addr", s.server.Addr,
			"metrics", s.deps.Metrics != nil && s.cfg.Server.MetricsEnabled)
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	if logging.Sugar != nil {
		logging.Sugar.Infow("🛑 Shutting down Google Cloud TTS host")
	}
	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if logging.Sugar != nil {
		logging.Sugar.Infow("✅ Google Cloud TTS host shut down successfully")
	}
	return nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /resource/{token}", s.handleResource)

	s.mux.HandleFunc("GET /api/voices", api.HandleVoices)
	s.mux.HandleFunc("/api/effects/google-tts", api.NewEffectsHandler(s.deps.Runner).HandleRunEffect)
	s.mux.HandleFunc("/api/parameters", api.NewParametersHandler(s.deps.Credentials).HandleParameters)

	if s.deps.UsageStore != nil {
		usage := api.NewUsageHandler(s.deps.UsageStore, s.deps.LastUsage)
		s.mux.HandleFunc("GET /api/usage", usage.HandleUsage)
		s.mux.HandleFunc("GET /api/usage/summary", usage.HandleUsageSummary)
		s.mux.HandleFunc("GET /api/usage/variable", usage.HandleUsageVariable)
		s.mux.HandleFunc("GET /api/usage/{id}", usage.HandleUsageByID)
	}

	if s.cfg.Server.MetricsEnabled && s.deps.Metrics != nil {
		s.mux.Handle("GET /metrics", s.deps.Metrics)
	}

	if logging.Sugar != nil {
		logging.Sugar.Infow("🌐 HTTP routes configured",
			"effect_endpoint", "/api/effects/google-tts",
			"usage_endpoint", "/api/usage",
			"resource_endpoint", "/resource/{token}")
	}
}

// handleHealth reports process and dependency status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	services := map[string]string{}

	if s.deps.Database != nil {
		if err := s.deps.Database.Ping(); err != nil {
			services["database"] = "unavailable"
			status = "degraded"
		} else {
			services["database"] = "ok"
		}
	}
	if s.deps.Messaging != nil {
		if s.deps.Messaging.IsConnected() {
			services["nats"] = "ok"
		} else {
			services["nats"] = "disconnected"
			status = "degraded"
		}
	}

	health := map[string]any{
		"status":             status,
		"timestamp":          time.Now(),
		"uptime_seconds":     int64(time.Since(s.started).Seconds()),
		"api_key_configured": s.deps.Credentials.APIKey() != "",
		"services":           services,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		logging.LogError(err, "Failed to write health response")
	}
}

// handleResource serves a synthesized file to the overlay by token
func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if err := security.ValidateResourceToken(token); err != nil {
		http.Error(w, "Invalid resource token", http.StatusBadRequest)
		return
	}

	path, ok := s.deps.Resources.Resolve(token)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}
