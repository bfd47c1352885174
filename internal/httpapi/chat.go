// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"bufio"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/stream"
	"github.com/ollamagw/gateway/internal/translate"
	"github.com/ollamagw/gateway/internal/upstream"
)

func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	var body ollamaapi.ChatRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, errs.New(errs.KindRequestShape, "invalid request body"))
		return
	}

	params, err := translate.ToChatParamsFromChat(&body, r.registry)
	if err != nil {
		writeError(w, err)
		return
	}

	if body.WantsStream() {
		r.streamChat(w, req, body.Model, params)
		return
	}

	start := time.Now()
	result, err := r.client.Chat(req.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	elapsed := time.Since(start)
	frame := translate.ChatResponseUnary(body.Model, result, translate.Timings{
		TotalDuration: elapsed,
		EvalDuration:  elapsed,
	})
	writeJSON(w, http.StatusOK, frame)
}

func (r *Router) streamChat(w http.ResponseWriter, req *http.Request, model string, params upstream.ChatParams) {
	chunks, err := r.client.ChatStream(req.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	bw := bufio.NewWriter(w)

	_ = stream.ChatFrames(model, chunks, func(frame ollamaapi.ChatFrame) error {
		if err := json.NewEncoder(bw).Encode(frame); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}
