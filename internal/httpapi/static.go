// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"net/http"

	"github.com/ollamagw/gateway/internal/ollamaapi"
)

// gatewayVersion is reported by /api/version; it identifies this gateway,
// not the upstream backend's own version.
const gatewayVersion = "0.1.0"

// registerStaticEndpoints wires the optional Ollama model-management
// endpoints that this gateway does not implement against real state; they
// exist only so unmodified Ollama clients and tooling do not fail outright
// when they probe for them (spec.md §1/§6).
func registerStaticEndpoints(mux *http.ServeMux) {
	success := func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ollamaapi.StaticSuccessResponse{Status: "success"})
	}

	mux.HandleFunc("POST /api/pull", success)
	mux.HandleFunc("POST /api/push", success)
	mux.HandleFunc("POST /api/delete", success)
	mux.HandleFunc("POST /api/show", success)
	mux.HandleFunc("POST /api/copy", success)
	mux.HandleFunc("POST /api/create", success)
	mux.HandleFunc("GET /api/ps", success)

	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ollamaapi.VersionResponse{Version: gatewayVersion})
	})
}
