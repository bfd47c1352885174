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

func TestToEmbedParamsUsesPrompt(t *testing.T) {
	reg := registry.New()
	params, err := ToEmbedParams(&ollamaapi.EmbedRequest{Model: "text-embedding-3-small", Prompt: "foo"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "foo", params.Input)
}

func TestToEmbedParamsAcceptsInputSynonym(t *testing.T) {
	reg := registry.New()
	params, err := ToEmbedParams(&ollamaapi.EmbedRequest{Model: "text-embedding-3-small", Input: "bar"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "bar", params.Input)
}

func TestToEmbedParamsRequiresPrompt(t *testing.T) {
	reg := registry.New()
	_, err := ToEmbedParams(&ollamaapi.EmbedRequest{Model: "text-embedding-3-small"}, reg)
	assert.Error(t, err)
}

func TestEmbedResponsePreservesLength(t *testing.T) {
	vec := make([]float32, 3072)
	resp := EmbedResponse(&upstream.EmbedResult{Embedding: vec})
	assert.Len(t, resp.Embedding, 3072)
}
