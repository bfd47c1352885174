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

func TestToChatParamsFromChatRejectsEmptyMessages(t *testing.T) {
	reg := registry.New()
	_, err := ToChatParamsFromChat(&ollamaapi.ChatRequest{Model: "gpt-4"}, reg)
	assert.Error(t, err)
}

func TestToChatParamsFromChatRoleMapping(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.ChatRequest{
		Model: "gpt-4",
		Messages: []ollamaapi.ChatMessage{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hello"},
		},
	}

	params, err := ToChatParamsFromChat(req, reg)
	require.NoError(t, err)
	require.Len(t, params.Messages, 2)
	assert.Equal(t, "system", params.Messages[0].Role)
	assert.Equal(t, "user", params.Messages[1].Role)
}

func TestToChatParamsFromChatForwardsImages(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.ChatRequest{
		Model: "gpt-4",
		Messages: []ollamaapi.ChatMessage{
			{Role: "user", Content: "what is this?", Images: []string{"aGVsbG8="}},
		},
	}

	params, err := ToChatParamsFromChat(req, reg)
	require.NoError(t, err)
	require.Len(t, params.Messages, 1)
	assert.Equal(t, []string{"aGVsbG8="}, params.Messages[0].Images)
}

func TestToChatParamsFromChatForwardsTools(t *testing.T) {
	reg := registry.New()
	req := &ollamaapi.ChatRequest{
		Model:    "gpt-4",
		Messages: []ollamaapi.ChatMessage{{Role: "user", Content: "hi"}},
		Tools: []ollamaapi.ToolSchema{
			{Type: "function", Function: ollamaapi.ToolFunction{Name: "get_weather"}},
		},
	}

	params, err := ToChatParamsFromChat(req, reg)
	require.NoError(t, err)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "get_weather", params.Tools[0].Name)
}

func TestChatResponseUnaryShape(t *testing.T) {
	result := &upstream.ChatResult{Content: "Hi!", FinishReason: "stop"}
	frame := ChatResponseUnary("gpt-4", result, Timings{})

	assert.True(t, frame.Done)
	assert.Equal(t, "assistant", frame.Message.Role)
	assert.Equal(t, "Hi!", frame.Message.Content)
	assert.Equal(t, "stop", frame.DoneReason)
}

func TestChatResponseUnaryCarriesToolCalls(t *testing.T) {
	result := &upstream.ChatResult{
		ToolCalls: []upstream.ToolCall{{Name: "get_weather", Args: map[string]any{"city": "nyc"}}},
	}
	frame := ChatResponseUnary("gpt-4", result, Timings{})

	require.Len(t, frame.Message.ToolCalls, 1)
	assert.Equal(t, "get_weather", frame.Message.ToolCalls[0].Function.Name)
}
