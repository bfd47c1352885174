// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpapi is the gateway's Request Router: the HTTP surface that
// parses bodies, drives the Translator and Upstream Client, and applies the
// Error Mapper to any failure on the way out (spec.md §4.1).
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ollamagw/gateway/internal/correlation"
	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/logging"
	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/registry"
	"github.com/ollamagw/gateway/internal/upstream"
)

// Router is the gateway's http.Handler.
type Router struct {
	client   upstream.Client
	registry *registry.Registry
	logger   *logging.Logger
	location *time.Location
	mux      *http.ServeMux
}

// New builds a Router wired to client and reg, logging through logger.
func New(client upstream.Client, reg *registry.Registry, logger *logging.Logger) *Router {
	r := &Router{
		client:   client,
		registry: reg,
		logger:   logger,
		location: time.Local,
		mux:      http.NewServeMux(),
	}
	r.routes()
	return r
}

func (r *Router) routes() {
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /api/tags", r.handleTags)
	r.mux.HandleFunc("POST /api/generate", r.handleGenerate)
	r.mux.HandleFunc("POST /api/chat", r.handleChat)
	r.mux.HandleFunc("POST /api/embeddings", r.handleEmbed)
	r.mux.HandleFunc("POST /api/embed", r.handleEmbed)

	registerStaticEndpoints(r.mux)
}

// ServeHTTP implements http.Handler. Every request is stamped with a fresh
// correlation id before dispatch, per the Correlation Context component.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	id := correlation.New()
	ctx := correlation.WithID(req.Context(), id)
	req = req.WithContext(ctx)

	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(sw, req)

	r.logger.Info("request",
		"correlation_id", id,
		"method", req.Method,
		"path", req.URL.Path,
		"status", sw.status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ollamaapi.HealthResponse{Status: "ok"})
}

// writeJSON writes v as the JSON response body with status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError applies the Error Mapper and writes the resulting status/body.
func writeError(w http.ResponseWriter, err error) {
	status, body := errs.Map(err)
	writeJSON(w, status, body)
}

// statusWriter captures the status code written for access logging, without
// altering response behaviour for the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush forwards to the underlying ResponseWriter's Flusher so streaming
// handlers can still push each ndjson frame immediately.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
