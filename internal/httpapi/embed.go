// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/translate"
)

func (r *Router) handleEmbed(w http.ResponseWriter, req *http.Request) {
	var body ollamaapi.EmbedRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, errs.New(errs.KindRequestShape, "invalid request body"))
		return
	}

	params, err := translate.ToEmbedParams(&body, r.registry)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := r.client.Embed(req.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, translate.EmbedResponse(result))
}
