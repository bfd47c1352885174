// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package correlation threads a short opaque request identifier through the
// gateway for logging. It has no business effect on request handling.
package correlation

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type contextKey struct{}

// New generates a fresh 8-character correlation id.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// WithID attaches id to ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id attached to ctx, or "" if none.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
