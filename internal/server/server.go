/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server exposes a small status and metrics HTTP surface so an
// operator can check a node mid-campaign without interrupting its rounds.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/probelab/stressfleet/internal/logbuffer"
	"github.com/probelab/stressfleet/internal/sink"
	"github.com/probelab/stressfleet/internal/telemetry"
)

// Status is the static part of the node's self-description.
type Status struct {
	Mode        string    `json:"mode"` // "listen" or "schedule"
	EmitterCode string    `json:"emitter_code"`
	HardwareMAC string    `json:"hardware_mac"`
	StartedAt   time.Time `json:"started_at"`
}

// Server serves /healthz, /metrics, and the status API.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds the server. store may be nil when the results mirror is
// disabled; the results endpoint then reports 404.
func New(bind string, status Status, metrics *telemetry.Metrics, buffer *logbuffer.Buffer, store *sink.StoreSink, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status)
	})
	r.Get("/api/logs", func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 100
		}
		entries := buffer.Query(logbuffer.QueryParams{
			Level:      req.URL.Query().Get("level"),
			Component:  req.URL.Query().Get("component"),
			BatchID:    req.URL.Query().Get("batch_id"),
			Limit:      limit,
			Descending: true,
		})
		writeJSON(w, entries)
	})
	r.Get("/api/results", func(w http.ResponseWriter, req *http.Request) {
		if store == nil {
			http.NotFound(w, req)
			return
		}
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		rows, err := store.Recent(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rows)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              bind,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "status_server").Logger(),
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("status server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("status server error")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
