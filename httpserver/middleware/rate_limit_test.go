/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/devtoolbox/mockapi/internal/ratelimit"
	"github.com/devtoolbox/mockapi/log/logtest"
	"github.com/devtoolbox/mockapi/testutil"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("limiter is unavailable")
}

func TestRateLimitHandler_ServeHTTP(t *testing.T) {
	const errDomain = "MockAPI"
	now := time.UnixMilli(1_700_000_000_000)

	makeLimiter := func(t *testing.T, limit int) ratelimit.Limiter {
		sl, err := ratelimit.NewSlidingLog(ratelimit.SlidingLogOpts{Clock: func() time.Time { return now }})
		require.NoError(t, err)
		return sl.WithRate(ratelimit.Rate{Count: limit, Duration: time.Minute})
	}

	makeNext := func() (http.HandlerFunc, *atomic.Int32) {
		servedCount := atomic.NewInt32(0)
		return func(rw http.ResponseWriter, _ *http.Request) {
			servedCount.Inc()
			rw.WriteHeader(http.StatusOK)
		}, servedCount
	}

	sendReq := func(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.RemoteAddr = remoteAddr
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp
	}

	t.Run("headers and rejection", func(t *testing.T) {
		next, servedCount := makeNext()
		handler := RateLimit(makeLimiter(t, 3), errDomain)(next)

		for i := 0; i < 3; i++ {
			resp := sendReq(handler, "10.0.0.1:5000")
			require.Equal(t, http.StatusOK, resp.Code)
			require.Equal(t, "3", resp.Header().Get(HeaderRateLimitLimit))
			require.Equal(t, strconv.Itoa(2-i), resp.Header().Get(HeaderRateLimitRemaining))
			require.Equal(t, strconv.FormatInt(now.Add(time.Minute).UnixMilli(), 10), resp.Header().Get(HeaderRateLimitReset))
			require.Empty(t, resp.Header().Get(HeaderRetryAfter))
		}

		resp := sendReq(handler, "10.0.0.1:5001")
		require.Equal(t, "0", resp.Header().Get(HeaderRateLimitRemaining))
		require.Equal(t, "60", resp.Header().Get(HeaderRetryAfter))
		testutil.RequireErrorInRecorder(t, resp, http.StatusTooManyRequests, errDomain, RateLimitErrCode)
		require.Equal(t, int32(3), servedCount.Load())

		// Another client has its own budget.
		resp = sendReq(handler, "10.0.0.2:5000")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "2", resp.Header().Get(HeaderRateLimitRemaining))
	})

	t.Run("error body", func(t *testing.T) {
		next, _ := makeNext()
		handler := RateLimit(makeLimiter(t, 1), errDomain)(next)
		sendReq(handler, "10.0.0.1:5000")
		resp := sendReq(handler, "10.0.0.1:5000")
		require.JSONEq(t, `{"error":{"domain":"MockAPI","code":"tooManyRequests","message":"Too many requests."}}`, resp.Body.String())
	})

	t.Run("custom status code", func(t *testing.T) {
		next, _ := makeNext()
		handler := RateLimitWithOpts(makeLimiter(t, 1), errDomain, RateLimitOpts{ResponseStatusCode: http.StatusServiceUnavailable})(next)
		sendReq(handler, "10.0.0.1:5000")
		resp := sendReq(handler, "10.0.0.1:5000")
		testutil.RequireErrorInRecorder(t, resp, http.StatusServiceUnavailable, errDomain, RateLimitErrCode)
	})

	t.Run("dry run", func(t *testing.T) {
		next, servedCount := makeNext()
		logger := logtest.NewRecorder()
		handler := RateLimitWithOpts(makeLimiter(t, 1), errDomain, RateLimitOpts{DryRun: true})(next)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req = req.WithContext(NewContextWithLogger(req.Context(), logger))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			require.Equal(t, http.StatusOK, resp.Code)
		}
		require.Equal(t, int32(3), servedCount.Load())
		require.Len(t, logger.Entries(), 2)
		entry := logger.Entries()[0]
		keyField, found := entry.FindField(RateLimitLogFieldKey)
		require.True(t, found)
		require.Equal(t, "192.0.2.1", string(keyField.Bytes))
	})

	t.Run("bypass", func(t *testing.T) {
		next, servedCount := makeNext()
		getKey := func(r *http.Request) (string, bool, error) {
			return "", r.Header.Get("X-Bypass") != "", nil
		}
		handler := RateLimitWithOpts(makeLimiter(t, 1), errDomain, RateLimitOpts{GetKey: getKey})(next)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("X-Bypass", "1")
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			require.Equal(t, http.StatusOK, resp.Code)
			require.Empty(t, resp.Header().Get(HeaderRateLimitLimit))
		}
		require.Equal(t, int32(3), servedCount.Load())
	})

	t.Run("limiter error", func(t *testing.T) {
		next, servedCount := makeNext()
		handler := RateLimit(failingLimiter{}, errDomain)(next)
		resp := sendReq(handler, "10.0.0.1:5000")
		testutil.RequireErrorInRecorder(t, resp, http.StatusInternalServerError, errDomain, "internalError")
		require.Equal(t, int32(0), servedCount.Load())
	})

	t.Run("key error", func(t *testing.T) {
		next, _ := makeNext()
		getKey := func(*http.Request) (string, bool, error) { return "", false, errors.New("no key") }
		handler := RateLimitWithOpts(makeLimiter(t, 1), errDomain, RateLimitOpts{GetKey: getKey})(next)
		resp := sendReq(handler, "10.0.0.1:5000")
		testutil.RequireErrorInRecorder(t, resp, http.StatusInternalServerError, errDomain, "internalError")
	})

	t.Run("key is added to logging params", func(t *testing.T) {
		next, _ := makeNext()
		handler := RateLimit(makeLimiter(t, 5), errDomain)(next)
		lp := &LoggingParams{}
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.RemoteAddr = ""
		req = req.WithContext(NewContextWithLoggingParams(req.Context(), lp))
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Len(t, lp.fields, 2)
		require.Equal(t, RateLimitLogFieldKey, lp.fields[0].Key)
		require.Equal(t, "203.0.113.7", string(lp.fields[0].Bytes))
	})
}
