// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/upstream"
)

func TestGenerateFramesEmitsDeltasThenTerminal(t *testing.T) {
	chunks := make(chan upstream.ChatChunk)
	go func() {
		chunks <- upstream.ChatChunk{DeltaContent: "He"}
		chunks <- upstream.ChatChunk{DeltaContent: "llo"}
		chunks <- upstream.ChatChunk{DeltaContent: "!", FinishReason: "stop"}
		close(chunks)
	}()

	var frames []ollamaapi.GenerateFrame
	err := GenerateFrames("gpt-3.5-turbo", chunks, func(f ollamaapi.GenerateFrame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, frames, 4)
	assert.Equal(t, "He", frames[0].Response)
	assert.False(t, frames[0].Done)
	assert.Equal(t, "llo", frames[1].Response)
	assert.Equal(t, "!", frames[2].Response)

	terminal := frames[3]
	assert.True(t, terminal.Done)
	assert.Equal(t, "", terminal.Response)
	assert.Equal(t, "stop", terminal.DoneReason)
}

func TestGenerateFramesConcatEqualsUnaryText(t *testing.T) {
	chunks := make(chan upstream.ChatChunk)
	go func() {
		chunks <- upstream.ChatChunk{DeltaContent: "He"}
		chunks <- upstream.ChatChunk{DeltaContent: "llo!"}
		close(chunks)
	}()

	var text string
	err := GenerateFrames("m", chunks, func(f ollamaapi.GenerateFrame) error {
		text += f.Response
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)
}

func TestGenerateFramesMidStreamErrorEmitsTerminalErrorFrame(t *testing.T) {
	chunks := make(chan upstream.ChatChunk)
	go func() {
		chunks <- upstream.ChatChunk{DeltaContent: "He"}
		chunks <- upstream.ChatChunk{Err: errors.New("boom")}
		close(chunks)
	}()

	var frames []ollamaapi.GenerateFrame
	err := GenerateFrames("m", chunks, func(f ollamaapi.GenerateFrame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, frames, 2)
	terminal := frames[1]
	assert.True(t, terminal.Done)
	assert.Equal(t, "error", terminal.DoneReason)
	assert.NotEmpty(t, terminal.Error)
}

func TestChatFramesEmitsDeltasThenTerminal(t *testing.T) {
	chunks := make(chan upstream.ChatChunk)
	go func() {
		chunks <- upstream.ChatChunk{DeltaContent: "Hi"}
		chunks <- upstream.ChatChunk{FinishReason: "stop"}
		close(chunks)
	}()

	var frames []ollamaapi.ChatFrame
	err := ChatFrames("gpt-4", chunks, func(f ollamaapi.ChatFrame) error {
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, frames, 2)
	assert.Equal(t, "Hi", frames[0].Message.Content)
	assert.False(t, frames[0].Done)
	assert.True(t, frames[1].Done)
	assert.Equal(t, "", frames[1].Message.Content)
}

func TestNoFrameAfterTerminal(t *testing.T) {
	chunks := make(chan upstream.ChatChunk)
	close(chunks)

	count := 0
	err := GenerateFrames("m", chunks, func(f ollamaapi.GenerateFrame) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count) // only the terminal frame, per B1-style empty stream
}
