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

// ToChatParamsFromChat converts a ChatRequest into upstream ChatParams
// (spec.md §4.2.3). Role mapping is identity; images are forwarded when the
// message carries any (the Upstream Client attaches them as multi-modal
// content parts), otherwise the field is simply absent.
func ToChatParamsFromChat(req *ollamaapi.ChatRequest, reg *registry.Registry) (upstream.ChatParams, error) {
	if req.Model == "" {
		return upstream.ChatParams{}, errs.New(errs.KindRequestShape, "model is required")
	}
	if len(req.Messages) == 0 {
		return upstream.ChatParams{}, errs.New(errs.KindRequestShape, "messages must not be empty")
	}

	messages := make([]upstream.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		um := upstream.Message{Role: m.Role, Content: m.Content, Images: m.Images}
		for _, tc := range m.ToolCalls {
			um.ToolCalls = append(um.ToolCalls, upstream.ToolCall{Name: tc.Function.Name, Args: tc.Function.Arguments})
		}
		messages = append(messages, um)
	}

	params := upstream.ChatParams{
		Model:    reg.ResolveAlias(req.Model),
		Messages: messages,
	}
	applyOptions(&params, req.Options)
	applyFormat(&params, req.Format)

	if len(req.Tools) > 0 {
		params.Tools = make([]upstream.ToolSpec, 0, len(req.Tools))
		for _, t := range req.Tools {
			params.Tools = append(params.Tools, upstream.ToolSpec{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			})
		}
	}

	return params, nil
}

// ChatResponseUnary builds the unary ChatResponse body (spec.md §4.2.5).
func ChatResponseUnary(model string, result *upstream.ChatResult, timings Timings) ollamaapi.ChatFrame {
	msg := ollamaapi.ChatResponseMessage{Role: "assistant", Content: result.Content}
	for _, tc := range result.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ollamaapi.ToolCall{
			Function: ollamaapi.ToolCallFunction{Name: tc.Name, Arguments: tc.Args},
		})
	}

	return ollamaapi.ChatFrame{
		Model:              model,
		CreatedAt:          formatTimestamp(time.Now()),
		Message:            msg,
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
