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

func (r *Router) handleGenerate(w http.ResponseWriter, req *http.Request) {
	var body ollamaapi.GenerateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, errs.New(errs.KindRequestShape, "invalid request body"))
		return
	}

	params, err := translate.ToChatParams(&body, r.registry)
	if err != nil {
		writeError(w, err)
		return
	}

	if body.WantsStream() {
		r.streamGenerate(w, req, body.Model, params)
		return
	}

	start := time.Now()
	result, err := r.client.Chat(req.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	elapsed := time.Since(start)
	frame := translate.GenerateResponseUnary(body.Model, result, translate.Timings{
		TotalDuration: elapsed,
		EvalDuration:  elapsed,
	})
	writeJSON(w, http.StatusOK, frame)
}

// streamGenerate drives the ndjson framing of §4.3/§6: one JSON object per
// line, no SSE prefix, flushed as soon as each frame is written so the
// client sees incremental deltas rather than a buffered batch.
func (r *Router) streamGenerate(w http.ResponseWriter, req *http.Request, model string, params upstream.ChatParams) {
	chunks, err := r.client.ChatStream(req.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	bw := bufio.NewWriter(w)

	_ = stream.GenerateFrames(model, chunks, func(frame ollamaapi.GenerateFrame) error {
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
