// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"net/http"

	"github.com/ollamagw/gateway/internal/translate"
)

func (r *Router) handleTags(w http.ResponseWriter, req *http.Request) {
	models, err := r.client.ListModels(req.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := translate.Tags(models, r.registry, r.location)
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, resp)
}
