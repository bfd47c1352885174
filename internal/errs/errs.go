// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package errs defines the gateway's typed failure taxonomy and the single
// point (Map) that turns a failure into an HTTP status and an Ollama-shaped
// error body. Lower layers return values of type *Error; nothing below the
// Router's exit path chooses the HTTP status code of a gateway response.
package errs

import "fmt"

// Kind is one of the failure classes in spec.md §7.
type Kind string

const (
	KindRequestShape       Kind = "request_shape"
	KindAuthentication     Kind = "authentication"
	KindNotFound           Kind = "not_found"
	KindRateLimit          Kind = "rate_limit"
	KindUpstreamTransient  Kind = "upstream_transient"
	KindUpstreamFatal      Kind = "upstream_fatal"
	KindTimeout            Kind = "timeout"
	KindCancellation       Kind = "cancellation"
	KindInternalInvariant  Kind = "internal_invariant"
)

// Error is the typed failure value passed between layers. Message is safe to
// surface to a caller; it MUST NOT contain prompts, messages, or upstream
// response bodies (I7).
type Error struct {
	Kind    Kind
	Message string
	Model   string // set only for KindNotFound, per §7
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As, without leaking it
// into Error().
func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind, recording cause for
// diagnostics without including it in the message shown to callers.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// NotFound constructs a KindNotFound error carrying the offending model id.
func NotFound(model string) *Error {
	return &Error{Kind: KindNotFound, Message: "model not found", Model: model}
}
