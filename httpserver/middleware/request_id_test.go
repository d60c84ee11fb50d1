/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockRequestIDNextHandler struct {
	called  int
	request *http.Request
}

func (h *mockRequestIDNextHandler) ServeHTTP(_ http.ResponseWriter, r *http.Request) {
	h.called++
	h.request = r
}

func TestRequestIDHandler_ServeHTTP(t *testing.T) {
	const genExtReqID = "generated-external-request-id"
	const genIntReqID = "generated-internal-request-id"

	reqIDOpts := RequestIDOpts{
		GenerateID:         func() string { return genExtReqID },
		GenerateInternalID: func() string { return genIntReqID },
	}

	t.Run("external id from header, internal id is always generated", func(t *testing.T) {
		const headerReqID = "header-request-id"
		next := &mockRequestIDNextHandler{}
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set(HeaderRequestID, headerReqID)
		req.Header.Set(HeaderInternalRequestID, headerReqID)
		resp := httptest.NewRecorder()
		RequestIDWithOpts(reqIDOpts)(next).ServeHTTP(resp, req)

		assert.Equal(t, 1, next.called)
		assert.Equal(t, headerReqID, GetRequestIDFromContext(next.request.Context()))
		assert.Equal(t, headerReqID, resp.Header().Get(HeaderRequestID))
		assert.Equal(t, genIntReqID, GetInternalRequestIDFromContext(next.request.Context()))
		assert.Equal(t, genIntReqID, resp.Header().Get(HeaderInternalRequestID))
	})

	t.Run("generated external id", func(t *testing.T) {
		next := &mockRequestIDNextHandler{}
		resp := httptest.NewRecorder()
		RequestIDWithOpts(reqIDOpts)(next).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		assert.Equal(t, genExtReqID, GetRequestIDFromContext(next.request.Context()))
		assert.Equal(t, genExtReqID, resp.Header().Get(HeaderRequestID))
	})

	t.Run("xid by default", func(t *testing.T) {
		next := &mockRequestIDNextHandler{}
		resp := httptest.NewRecorder()
		RequestID()(next).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		extID := GetRequestIDFromContext(next.request.Context())
		intID := GetInternalRequestIDFromContext(next.request.Context())
		assert.Len(t, extID, 20)
		assert.Len(t, intID, 20)
		assert.NotEqual(t, extID, intID)
		assert.Equal(t, extID, resp.Header().Get(HeaderRequestID))
	})
}
