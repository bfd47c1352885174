// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/registry"
	"github.com/ollamagw/gateway/internal/upstream"
)

func TestToChatParamsPromptBecomesUserMessage(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.GenerateRequest{Model: "gpt-3.5-turbo", Prompt: "Hi"}

	params, err := ToChatParams(req, reg)
	require.NoError(t, err)
	require.Len(t, params.Messages, 1)
	assert.Equal(t, "user", params.Messages[0].Role)
	assert.Equal(t, "Hi", params.Messages[0].Content)
}

func TestToChatParamsSystemBecomesLeadingMessage(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.GenerateRequest{Model: "gpt-3.5-turbo", Prompt: "Hi", System: "Be terse."}

	params, err := ToChatParams(req, reg)
	require.NoError(t, err)
	require.Len(t, params.Messages, 2)
	assert.Equal(t, "system", params.Messages[0].Role)
	assert.Equal(t, "user", params.Messages[1].Role)
}

func TestToChatParamsIgnoresUnrepresentableFields(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.GenerateRequest{
		Model:    "gpt-3.5-turbo",
		Prompt:   "Hi",
		Raw:      true,
		Template: "{{ .Prompt }}",
		Context:  []int32{1, 2, 3},
	}

	_, err := ToChatParams(req, reg)
	assert.NoError(t, err)
}

func TestToChatParamsRequiresModelAndPrompt(t *testing.T) {
	reg := registry.New()

	_, err := ToChatParams(&ollamaapi.GenerateRequest{Prompt: "Hi"}, reg)
	assert.Error(t, err)

	_, err = ToChatParams(&ollamaapi.GenerateRequest{Model: "gpt-3.5-turbo"}, reg)
	assert.Error(t, err)
}

func TestApplyOptionsMapsKnownKeysAndDropsUnmapped(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.GenerateRequest{
		Model:  "gpt-3.5-turbo",
		Prompt: "Hi",
		Options: ollamaapi.Options{
			"temperature": 0.5,
			"top_k":       40,
			"num_predict": 128,
			"num_ctx":     4096,
		},
	}

	params, err := ToChatParams(req, reg)
	require.NoError(t, err)
	require.NotNil(t, params.Temperature)
	assert.Equal(t, 0.5, *params.Temperature)
	require.NotNil(t, params.MaxTokens)
	assert.Equal(t, int64(128), *params.MaxTokens)
}

func TestGenerateResponseUnaryTerminalShape(t *testing.T) {
	result := &upstream.ChatResult{
		Content:      "Hello!",
		FinishReason: "stop",
		Usage:        upstream.Usage{PromptTokens: 1, CompletionTokens: 2},
	}
	frame := GenerateResponseUnary("gpt-3.5-turbo", result, Timings{})

	assert.True(t, frame.Done)
	assert.Equal(t, "stop", frame.DoneReason)
	assert.Equal(t, "Hello!", frame.Response)
	assert.Equal(t, 1, frame.PromptEvalCount)
	assert.Equal(t, 2, frame.EvalCount)
}

func TestMapFinishReason(t *testing.T) {
	assert.Equal(t, "stop", mapFinishReason("stop"))
	assert.Equal(t, "length", mapFinishReason("length"))
	assert.Equal(t, "stop", mapFinishReason("tool_calls"))
	assert.Equal(t, "stop", mapFinishReason("content_filter"))
}
