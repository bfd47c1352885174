// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package stream converts an upstream chunk sequence into the Ollama
// newline-delimited-JSON frame sequence, accumulating the timing and
// token-count fields the terminal frame carries (spec.md §4.3).
package stream

import (
	"time"

	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/translate"
	"github.com/ollamagw/gateway/internal/upstream"
)

// now is the clock the adapter reads for frame timestamps and durations; it
// is a variable so that it can be replaced.
var now = time.Now

// GenerateFrames drains chunks and calls emit once per frame, in order,
// ending with exactly one terminal frame (I3/I4). It returns when the
// channel closes or emit returns an error (the caller closed the
// connection); in the latter case the upstream call must already have been
// cancelled by the ctx the caller passed to ChatStream, satisfying the
// one-poll-cycle cancellation bound of spec.md §5.
func GenerateFrames(model string, chunks <-chan upstream.ChatChunk, emit func(ollamaapi.GenerateFrame) error) error {
	acc := newAccumulator()

	for chunk := range chunks {
		if chunk.Err != nil {
			frame := acc.terminalGenerateFrame(model)
			frame.DoneReason = "error"
			_, body := errs.Map(chunk.Err)
			frame.Error = body.Error
			return emit(frame)
		}

		acc.observe(chunk)

		if chunk.DeltaContent != "" {
			if err := emit(ollamaapi.GenerateFrame{
				Model:     model,
				CreatedAt: nowString(),
				Response:  chunk.DeltaContent,
				Done:      false,
			}); err != nil {
				return err
			}
		}
	}

	return emit(acc.terminalGenerateFrame(model))
}

// ChatFrames is GenerateFrames's ChatFrame counterpart (I5).
func ChatFrames(model string, chunks <-chan upstream.ChatChunk, emit func(ollamaapi.ChatFrame) error) error {
	acc := newAccumulator()

	for chunk := range chunks {
		if chunk.Err != nil {
			frame := acc.terminalChatFrame(model)
			frame.DoneReason = "error"
			_, body := errs.Map(chunk.Err)
			frame.Error = body.Error
			return emit(frame)
		}

		acc.observe(chunk)

		if chunk.DeltaContent != "" {
			if err := emit(ollamaapi.ChatFrame{
				Model:     model,
				CreatedAt: nowString(),
				Message:   ollamaapi.ChatResponseMessage{Role: "assistant", Content: chunk.DeltaContent},
				Done:      false,
			}); err != nil {
				return err
			}
		}
	}

	return emit(acc.terminalChatFrame(model))
}

// accumulator tracks the timing and usage state described in spec.md §4.3's
// algorithm across a single stream's lifetime.
type accumulator struct {
	t0           time.Time
	tPromptDone  time.Time
	sawContent   bool
	finishReason string
	usage        upstream.Usage
	hasUsage     bool
}

func newAccumulator() *accumulator {
	return &accumulator{t0: now()}
}

func (a *accumulator) observe(chunk upstream.ChatChunk) {
	if chunk.DeltaContent != "" && !a.sawContent {
		a.sawContent = true
		a.tPromptDone = now()
	}
	if chunk.FinishReason != "" {
		a.finishReason = chunk.FinishReason
	}
	if chunk.HasUsage {
		a.hasUsage = true
		a.usage = chunk.Usage
	}
}

func (a *accumulator) timings() translate.Timings {
	end := now()
	promptDone := a.tPromptDone
	if promptDone.IsZero() {
		promptDone = end
	}
	return translate.Timings{
		TotalDuration:      end.Sub(a.t0),
		PromptEvalDuration: promptDone.Sub(a.t0),
		EvalDuration:       end.Sub(promptDone),
	}
}

func (a *accumulator) terminalGenerateFrame(model string) ollamaapi.GenerateFrame {
	t := a.timings()
	frame := translate.GenerateResponseUnary(model, &upstream.ChatResult{
		FinishReason: a.finishReason,
		Usage:        a.usage,
	}, t)
	frame.CreatedAt = nowString()
	frame.Response = ""
	if !a.hasUsage {
		frame.PromptEvalCount = 0
		frame.EvalCount = 0
	}
	return frame
}

func (a *accumulator) terminalChatFrame(model string) ollamaapi.ChatFrame {
	t := a.timings()
	frame := translate.ChatResponseUnary(model, &upstream.ChatResult{
		FinishReason: a.finishReason,
		Usage:        a.usage,
	}, t)
	frame.CreatedAt = nowString()
	frame.Message.Content = ""
	if !a.hasUsage {
		frame.PromptEvalCount = 0
		frame.EvalCount = 0
	}
	return frame
}

func nowString() string {
	return now().UTC().Format("2006-01-02T15:04:05.000000000Z")
}
