// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package upstream wraps an OpenAI-compatible HTTP backend behind a small
// capability interface: list models, create a chat completion (unary or
// streaming), create an embedding. It owns connection pooling, per-request
// timeouts, and retry-with-backoff; nothing above this package knows the
// upstream is HTTP at all.
package upstream

import "time"

// ModelInfo is one entry of the upstream's model list.
type ModelInfo struct {
	ID      string
	Created int64 // epoch seconds
}

// Message is one chat turn, in the shape the Translator hands to Chat.
type Message struct {
	Role      string
	Content   string
	Images    []string
	ToolCalls []ToolCall
}

// ToolCall is a function/tool invocation on an assistant message.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolSpec describes a callable tool offered to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ChatParams is the unified request shape for a chat completion, unary or
// streaming.
type ChatParams struct {
	Model            string
	Messages         []Message
	Tools            []ToolSpec
	Temperature      *float64
	TopP             *float64
	Seed             *int64
	MaxTokens        *int64
	Stop             []string
	FrequencyPenalty *float64
	PresencePenalty  *float64
	JSONMode         bool
	JSONSchema       map[string]any
}

// ChatResult is the unary response from Chat.
type ChatResult struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        Usage
}

// Usage is token accounting, mirrored from the upstream's usage object.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ChatChunk is one element of a streaming chat completion.
type ChatChunk struct {
	DeltaContent string
	ToolCalls    []ToolCall
	FinishReason string // non-empty only on the final chunk
	Usage        Usage  // only populated if the final chunk carries totals
	HasUsage     bool

	// Err is set on the final value sent before the channel closes when the
	// upstream failed mid-stream (spec.md §4.6); no further chunks follow.
	Err error
}

// EmbedParams is the request shape for Embed.
type EmbedParams struct {
	Model string
	Input string
}

// EmbedResult is the response from Embed.
type EmbedResult struct {
	Embedding []float32
}

// DefaultRequestTimeout and DefaultStreamTimeout are the timeouts
// NewOpenAIClient uses when its Config leaves one unset (zero).
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultStreamTimeout  = 300 * time.Second
)
