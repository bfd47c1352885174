// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapKnownKinds(t *testing.T) {
	cases := []struct {
		err      *Error
		status   int
		contains string
	}{
		{New(KindRequestShape, "bad field"), http.StatusBadRequest, "bad field"},
		{NotFound("llama9"), http.StatusNotFound, "llama9"},
		{New(KindAuthentication, "x"), http.StatusUnauthorized, "unauthorized"},
		{New(KindRateLimit, "x"), http.StatusTooManyRequests, "rate limit"},
		{New(KindUpstreamFatal, "x"), http.StatusBadGateway, "upstream error"},
		{New(KindTimeout, "x"), http.StatusGatewayTimeout, "timeout"},
		{New(KindCancellation, "x"), 499, "closed"},
		{New(KindInternalInvariant, "x"), http.StatusInternalServerError, "internal"},
	}

	for _, c := range cases {
		status, body := Map(c.err)
		assert.Equal(t, c.status, status)
		assert.Contains(t, body.Error, c.contains)
	}
}

func TestMapNonTypedErrorFallsBackToInternal(t *testing.T) {
	status, body := Map(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body.Error)
}

func TestMapNeverLeaksCause(t *testing.T) {
	wrapped := Wrap(KindUpstreamFatal, "upstream error", errors.New("sk-secret-leak-should-not-appear"))
	_, body := Map(wrapped)
	assert.NotContains(t, body.Error, "sk-secret-leak-should-not-appear")
}
