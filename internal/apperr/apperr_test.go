package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfThroughWrapChain(t *testing.T) {
	base := NotFound("order %d not found", 7)
	wrapped := fmt.Errorf("load order: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
	assert.Equal(t, "order 7 not found", MessageOf(wrapped))
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
	assert.Empty(t, MessageOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(KindUpstreamFailure, cause, "payment gateway unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payment gateway unavailable: dial tcp: refused", err.Error())
	assert.Equal(t, "payment gateway unavailable", MessageOf(err))
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNotFound:         "not_found",
		KindConflict:         "conflict",
		KindInvalidArgument:  "invalid_argument",
		KindPermissionDenied: "permission_denied",
		KindInvalidState:     "invalid_state",
		KindUnauthorized:     "unauthorized",
		KindUpstreamFailure:  "upstream_failure",
		KindInternal:         "internal",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Conflict("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidArgument("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidState("x")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(PermissionDenied("x")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthorized("x")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Wrap(KindUpstreamFailure, errors.New("eof"), "gateway")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
