/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
// Package api serves the asset registry over HTTP.
package api

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	srHttp "github.com/carverauto/assetradar/pkg/http"
	"github.com/carverauto/assetradar/pkg/logger"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	metricsNamespace    = "assetradar"
)

// ComparisonSource streams the comparison view for one source.
type ComparisonSource interface {
	ListComparison(ctx context.Context, source string) iter.Seq2[*models.ComparisonRow, error]
}

// Server is the asset-core HTTP API.
type Server struct {
	router     *mux.Router
	registry   registry.Manager
	comparison ComparisonSource
	logger     logger.Logger
	cors       models.CORSConfig
	apiKey     string
	promReg    *prometheus.Registry

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

// WithCORS restricts browser origins.
func WithCORS(cfg models.CORSConfig) func(*Server) {
	return func(s *Server) {
		s.cors = cfg
	}
}

// WithAPIKey requires X-API-Key on every /api route.
func WithAPIKey(key string) func(*Server) {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithPrometheusRegistry exposes reg on /metrics instead of a fresh registry.
func WithPrometheusRegistry(reg *prometheus.Registry) func(*Server) {
	return func(s *Server) {
		if reg != nil {
			s.promReg = reg
		}
	}
}

func NewServer(mgr registry.Manager, comparison ComparisonSource, log logger.Logger, options ...func(*Server)) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		registry:   mgr,
		comparison: comparison,
		logger:     log.WithComponent("api"),
	}

	for _, o := range options {
		o(s)
	}

	if s.promReg == nil {
		s.promReg = prometheus.NewRegistry()
		s.promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	metrics := srHttp.NewMetrics(s.promReg, metricsNamespace)

	s.router.Use(func(next http.Handler) http.Handler {
		return srHttp.CommonMiddleware(next, s.cors, s.logger)
	})
	s.router.Use(metrics.Middleware)

	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(srHttp.APIKeyMiddlewareWithOptions(srHttp.APIKeyOptions{
		APIKey:          s.apiKey,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))

	v1.HandleFunc("/sources", s.listSources).Methods(http.MethodGet)
	v1.HandleFunc("/sources/{source}/observations", s.ingestObservation).Methods(http.MethodPost)
	v1.HandleFunc("/sources/{source}/freshness", s.getFreshness).Methods(http.MethodGet)
	v1.HandleFunc("/sources/{source}/comparison", s.getComparison).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}", s.getAsset).Methods(http.MethodGet)
	v1.HandleFunc("/assets/{id}", s.amendAsset).Methods(http.MethodPatch)
	v1.HandleFunc("/assets/{id}", s.deleteAsset).Methods(http.MethodDelete)
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.srv = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", addr).Msg("HTTP API listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops a running server. A later Start returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.closed = true
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}
