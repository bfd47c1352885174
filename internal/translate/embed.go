// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/ollamagw/gateway/internal/errs"
	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/registry"
	"github.com/ollamagw/gateway/internal/upstream"
)

// ToEmbedParams converts an EmbedRequest into upstream EmbedParams
// (spec.md §4.2.4). prompt is the canonical Ollama-side field; input is
// accepted as a synonym per the spec's open-question resolution.
func ToEmbedParams(req *ollamaapi.EmbedRequest, reg *registry.Registry) (upstream.EmbedParams, error) {
	if req.Model == "" {
		return upstream.EmbedParams{}, errs.New(errs.KindRequestShape, "model is required")
	}
	prompt := req.EffectivePrompt()
	if prompt == "" {
		return upstream.EmbedParams{}, errs.New(errs.KindRequestShape, "prompt is required")
	}
	return upstream.EmbedParams{Model: reg.ResolveAlias(req.Model), Input: prompt}, nil
}

// EmbedResponse wraps the upstream vector verbatim; length MUST NOT be
// altered (I6).
func EmbedResponse(result *upstream.EmbedResult) ollamaapi.EmbedResponse {
	return ollamaapi.EmbedResponse{Embedding: result.Embedding}
}
