// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownModelCategory(t *testing.T) {
	r := New()

	cat, ok := r.Category("gpt-4")
	require.True(t, ok)
	assert.Equal(t, CategoryChat, cat)

	cat, ok = r.Category("text-embedding-3-small")
	require.True(t, ok)
	assert.Equal(t, CategoryEmbedding, cat)
}

func TestUnknownModelCategory(t *testing.T) {
	r := New()
	_, ok := r.Category("some-unlisted-model")
	assert.False(t, ok)
}

func TestSizeKnownModel(t *testing.T) {
	r := New()
	assert.Equal(t, uint64(1_500_000_000), r.Size("gpt-3.5-turbo"))
}

func TestSizeHeuristicDefaults(t *testing.T) {
	r := New()
	assert.Equal(t, uint64(500_000_000), r.Size("text-embedding-unknown"))
	assert.Equal(t, uint64(20_000_000_000), r.Size("gpt-4-unknown-variant"))
	assert.Equal(t, uint64(1_500_000_000), r.Size("gpt-3.5-unknown-variant"))
	assert.Equal(t, uint64(1_000_000_000), r.Size("llama3-70b"))
}

func TestIncluded(t *testing.T) {
	r := New()
	assert.True(t, r.Included("gpt-4"))
	assert.False(t, r.Included("davinci-002"))
}

func TestResolveAlias(t *testing.T) {
	r := New()
	assert.Equal(t, "gpt-3.5-turbo", r.ResolveAlias("llama2"))
	assert.Equal(t, "gpt-3.5-turbo", r.ResolveAlias("LLAMA2"))
	assert.Equal(t, "gpt-4", r.ResolveAlias("gpt-4"))
}

func TestContextLength(t *testing.T) {
	r := New()
	cl, ok := r.ContextLength("gpt-4-turbo")
	require.True(t, ok)
	assert.Equal(t, 128000, cl)

	_, ok = r.ContextLength("unlisted-model")
	assert.False(t, ok)
}
