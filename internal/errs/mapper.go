// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ollamagw/gateway/internal/ollamaapi"
)

// Map translates any error into an HTTP status code and the Ollama-shaped
// body the Router must write, per spec.md §4.6's table. Errors that are not
// *Error (a bug in a lower layer, or a stdlib error that leaked through) map
// to the internal-invariant kind rather than panicking.
func Map(err error) (int, ollamaapi.ErrorBody) {
	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(KindInternalInvariant, "internal error", err)
	}

	switch e.Kind {
	case KindRequestShape:
		return http.StatusBadRequest, ollamaapi.ErrorBody{Error: e.Message}
	case KindNotFound:
		return http.StatusNotFound, ollamaapi.ErrorBody{Error: fmt.Sprintf("model '%s' not found", e.Model)}
	case KindAuthentication:
		return http.StatusUnauthorized, ollamaapi.ErrorBody{Error: "unauthorized"}
	case KindRateLimit:
		return http.StatusTooManyRequests, ollamaapi.ErrorBody{Error: "rate limit exceeded"}
	case KindUpstreamFatal, KindUpstreamTransient:
		return http.StatusBadGateway, ollamaapi.ErrorBody{Error: "upstream error"}
	case KindTimeout:
		return http.StatusGatewayTimeout, ollamaapi.ErrorBody{Error: "upstream timeout"}
	case KindCancellation:
		return 499, ollamaapi.ErrorBody{Error: "client closed request"}
	default:
		return http.StatusInternalServerError, ollamaapi.ErrorBody{Error: "internal error"}
	}
}
