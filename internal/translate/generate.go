// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"time"

	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/registry"
	"github.com/ollamagw/gateway/internal/upstream"
)

// ToChatParams converts a GenerateRequest into upstream ChatParams. The
// Ollama generate endpoint has no direct upstream analogue; it is modeled as
// a single-turn chat (spec.md §4.2.2): prompt becomes a user message, an
// optional system string becomes a leading system message. template/raw/
// context are accepted but not representable upstream and are silently
// dropped rather than failing the request.
func ToChatParams(req *ollamaapi.GenerateRequest, reg *registry.Registry) (upstream.ChatParams, error) {
	if req.Model == "" {
		return upstream.ChatParams{}, errs.New(errs.KindRequestShape, "model is required")
	}
	if req.Prompt == "" {
		return upstream.ChatParams{}, errs.New(errs.KindRequestShape, "prompt is required")
	}

	var messages []upstream.Message
	if req.System != "" {
		messages = append(messages, upstream.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, upstream.Message{Role: "user", Content: req.Prompt})

	params := upstream.ChatParams{
		Model:    reg.ResolveAlias(req.Model),
		Messages: messages,
	}
	applyOptions(&params, req.Options)
	applyFormat(&params, req.Format)

	return params, nil
}

// GenerateResponseUnary builds the unary GenerateResponse body (spec.md §4.2.5).
func GenerateResponseUnary(model string, result *upstream.ChatResult, timings Timings) ollamaapi.GenerateFrame {
	return ollamaapi.GenerateFrame{
		Model:              model,
		CreatedAt:          formatTimestamp(time.Now()),
		Response:           result.Content,
		Done:               true,
		DoneReason:         mapFinishReason(result.FinishReason),
		TotalDuration:      timings.TotalDuration.Nanoseconds(),
		LoadDuration:       timings.LoadDuration.Nanoseconds(),
		PromptEvalCount:    result.Usage.PromptTokens,
		PromptEvalDuration: timings.PromptEvalDuration.Nanoseconds(),
		EvalCount:          result.Usage.CompletionTokens,
		EvalDuration:       timings.EvalDuration.Nanoseconds(),
	}
}

// mapFinishReason implements the finish_reason -> done_reason table of
// spec.md §4.2.5.
func mapFinishReason(reason string) string {
	switch reason {
	case "length":
		return "length"
	case "stop", "tool_calls", "":
		return "stop"
	default:
		return "stop"
	}
}

// Timings carries the wall-clock measurements the Stream Adapter (or the
// unary path) accumulates for a single request.
type Timings struct {
	TotalDuration      time.Duration
	LoadDuration       time.Duration
	PromptEvalDuration time.Duration
	EvalDuration       time.Duration
}

// applyOptions maps the Ollama options bag onto upstream.ChatParams per the
// table in spec.md §4.2.2; unmapped keys (top_k, num_ctx) are dropped.
func applyOptions(params *upstream.ChatParams, opts ollamaapi.Options) {
	if opts == nil {
		return
	}
	if v, ok := asFloat(opts["temperature"]); ok {
		params.Temperature = &v
	}
	if v, ok := asFloat(opts["top_p"]); ok {
		params.TopP = &v
	}
	if v, ok := asInt(opts["seed"]); ok {
		params.Seed = &v
	}
	if v, ok := asInt(opts["num_predict"]); ok {
		params.MaxTokens = &v
	}
	if v, ok := opts["stop"]; ok {
		params.Stop = asStringSlice(v)
	}
	if v, ok := asFloat(opts["frequency_penalty"]); ok {
		params.FrequencyPenalty = &v
	}
	if v, ok := asFloat(opts["presence_penalty"]); ok {
		params.PresencePenalty = &v
	}
}

// applyFormat honors format=="json" (upstream JSON-object mode); a
// structured JSON schema is forwarded only when it is a well-formed object,
// otherwise it is dropped without failing the request (spec.md §4.2.2).
func applyFormat(params *upstream.ChatParams, format any) {
	switch f := format.(type) {
	case string:
		if f == "json" {
			params.JSONMode = true
		}
	case map[string]any:
		params.JSONSchema = f
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{s}
	default:
		return nil
	}
}
