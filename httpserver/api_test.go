/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devtoolbox/mockapi/fixtures"
	"github.com/devtoolbox/mockapi/httpserver/middleware"
	"github.com/devtoolbox/mockapi/internal/ratelimit"
	"github.com/devtoolbox/mockapi/log/logtest"
	"github.com/devtoolbox/mockapi/restapi"
	"github.com/devtoolbox/mockapi/testutil"
)

const testErrDomain = "MockAPI"

func newTestHandler(t *testing.T, opts Opts) http.Handler {
	t.Helper()
	if opts.Store == nil {
		store, err := fixtures.Load(fixtures.NewDefaultConfig())
		require.NoError(t, err)
		opts.Store = store
	}
	if opts.MaxLimit == nil {
		opts.MaxLimit = fixtures.NewDefaultConfig().MaxLimit
	}
	srv, err := New(NewDefaultConfig(), logtest.NewRecorder(), opts)
	require.NoError(t, err)
	return srv.HTTPRouter
}

func doGet(h http.Handler, target string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
	return resp
}

func idsOf(t *testing.T, items interface{}) []int {
	t.Helper()
	list, ok := items.([]interface{})
	require.True(t, ok, "items should be a JSON array")
	ids := make([]int, 0, len(list))
	for _, item := range list {
		rec, isObj := item.(map[string]interface{})
		require.True(t, isObj)
		ids = append(ids, int(rec["id"].(float64)))
	}
	return ids
}

func TestResourceHandlers_List(t *testing.T) {
	h := newTestHandler(t, Opts{})

	t.Run("default pagination", func(t *testing.T) {
		resp := doGet(h, "/api/posts")
		require.Equal(t, http.StatusOK, resp.Code)
		body := testutil.DecodeJSONFromRecorder(t, resp)
		require.Len(t, idsOf(t, body["posts"]), 50)
		require.EqualValues(t, 50, body["total"])
		require.EqualValues(t, 1, body["page"])
		require.EqualValues(t, 50, body["limit"])
		require.EqualValues(t, 1, body["totalPages"])
	})

	t.Run("page and limit", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/posts?page=2&limit=5"))
		require.Equal(t, []int{6, 7, 8, 9, 10}, idsOf(t, body["posts"]))
		require.EqualValues(t, 10, body["totalPages"])
	})

	t.Run("underscore aliases", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/todos?_page=3&_limit=25"))
		require.Len(t, idsOf(t, body["todos"]), 10)
		require.EqualValues(t, 3, body["page"])
		require.EqualValues(t, 25, body["limit"])
	})

	t.Run("out of range page", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/users?page=100"))
		require.Empty(t, idsOf(t, body["users"]))
		require.EqualValues(t, 30, body["total"])
	})

	t.Run("endpoint cap", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/quotes?limit=50"))
		require.Len(t, idsOf(t, body["quotes"]), 10)
		require.EqualValues(t, 10, body["limit"])
		require.EqualValues(t, 4, body["totalPages"])
	})

	t.Run("global cap", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/comments?limit=1000"))
		require.EqualValues(t, 50, body["limit"])
		body = testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/todos?limit=1000"))
		require.EqualValues(t, 100, body["limit"])
		require.Len(t, idsOf(t, body["todos"]), 60)
	})

	t.Run("field filters", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/users?firstName=ALICE"))
		require.Equal(t, []int{1, 27}, idsOf(t, body["users"]))

		body = testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/users?age=32"))
		require.Equal(t, []int{3, 9, 17, 29, 30}, idsOf(t, body["users"]))
		require.EqualValues(t, 5, body["total"])

		body = testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/users?firstName=alice&age=51"))
		require.Equal(t, []int{27}, idsOf(t, body["users"]))
	})

	t.Run("nested fields are excluded by filters", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/users?address=Madrid"))
		require.Empty(t, idsOf(t, body["users"]))
	})

	t.Run("sort", func(t *testing.T) {
		body := testutil.DecodeJSONFromRecorder(t, doGet(h, "/api/users?age=32&sort=id&order=DESC"))
		require.Equal(t, []int{30, 29, 17, 9, 3}, idsOf(t, body["users"]))
	})

	t.Run("unknown resource", func(t *testing.T) {
		testutil.RequireErrorInRecorder(t, doGet(h, "/api/unicorns"), http.StatusNotFound, testErrDomain, restapi.ErrCodeNotFound)
	})
}

func TestResourceHandlers_Get(t *testing.T) {
	h := newTestHandler(t, Opts{})

	resp := doGet(h, "/api/users/27")
	require.Equal(t, http.StatusOK, resp.Code)
	body := testutil.DecodeJSONFromRecorder(t, resp)
	require.Equal(t, "Alice", body["firstName"])
	require.EqualValues(t, 51, body["age"])

	testutil.RequireErrorInRecorder(t, doGet(h, "/api/users/31"), http.StatusNotFound, testErrDomain, restapi.ErrCodeNotFound)
	testutil.RequireErrorInRecorder(t, doGet(h, "/api/unicorns/1"), http.StatusNotFound, testErrDomain, restapi.ErrCodeNotFound)
}

func TestResourceHandlers_ListResources(t *testing.T) {
	h := newTestHandler(t, Opts{})

	var got ResourcesResponseData
	testutil.RequireJSONInRecorder(t, doGet(h, "/api"), &ResourcesResponseData{Resources: []ResourceSummary{
		{Name: "comments", Total: 80},
		{Name: "companies", Total: 20},
		{Name: "orders", Total: 30},
		{Name: "posts", Total: 50},
		{Name: "products", Total: 30},
		{Name: "quotes", Total: 40},
		{Name: "todos", Total: 60},
		{Name: "users", Total: 30},
	}}, &got)
}

func TestRouter_Errors(t *testing.T) {
	h := newTestHandler(t, Opts{})

	testutil.RequireErrorInRecorder(t, doGet(h, "/unknown"), http.StatusNotFound, testErrDomain, restapi.ErrCodeNotFound)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/users", nil))
	testutil.RequireErrorInRecorder(t, resp, http.StatusMethodNotAllowed, testErrDomain, restapi.ErrCodeMethodNotAllowed)
}

func TestResourceHandlers_RateLimit(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	newLimiter := func(t *testing.T) ratelimit.Limiter {
		sl, err := ratelimit.NewSlidingLog(ratelimit.SlidingLogOpts{Clock: func() time.Time { return now }})
		require.NoError(t, err)
		return sl.WithRate(ratelimit.Rate{Count: 2, Duration: time.Minute})
	}

	t.Run("reject after limit", func(t *testing.T) {
		h := newTestHandler(t, Opts{RateLimiter: newLimiter(t)})

		for _, wantRemaining := range []string{"1", "0"} {
			resp := doGet(h, "/api/posts?limit=1")
			require.Equal(t, http.StatusOK, resp.Code)
			require.Equal(t, "2", resp.Header().Get(middleware.HeaderRateLimitLimit))
			require.Equal(t, wantRemaining, resp.Header().Get(middleware.HeaderRateLimitRemaining))
			require.Equal(t, "1700000060000", resp.Header().Get(middleware.HeaderRateLimitReset))
		}

		resp := doGet(h, "/api/posts")
		require.Equal(t, "0", resp.Header().Get(middleware.HeaderRateLimitRemaining))
		require.Equal(t, "60", resp.Header().Get(middleware.HeaderRetryAfter))
		testutil.RequireErrorInRecorder(t, resp, http.StatusTooManyRequests, testErrDomain, middleware.RateLimitErrCode)

		// System endpoints are not limited.
		require.Equal(t, http.StatusOK, doGet(h, "/healthz").Code)
		require.Equal(t, http.StatusOK, doGet(h, "/metrics").Code)
	})

	t.Run("clients are isolated", func(t *testing.T) {
		h := newTestHandler(t, Opts{RateLimiter: newLimiter(t)})
		for i := 0; i < 3; i++ {
			doGet(h, "/api/posts")
		}
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "198.51.100.7:4321"
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "1", resp.Header().Get(middleware.HeaderRateLimitRemaining))
	})

	t.Run("dry run", func(t *testing.T) {
		h := newTestHandler(t, Opts{RateLimiter: newLimiter(t), RateLimitOpts: middleware.RateLimitOpts{DryRun: true}})
		for i := 0; i < 3; i++ {
			require.Equal(t, http.StatusOK, doGet(h, "/api/posts").Code)
		}
	})

	t.Run("custom status code", func(t *testing.T) {
		h := newTestHandler(t, Opts{
			RateLimiter:   newLimiter(t),
			RateLimitOpts: middleware.RateLimitOpts{ResponseStatusCode: http.StatusServiceUnavailable},
		})
		doGet(h, "/api")
		doGet(h, "/api/users/1")
		testutil.RequireErrorInRecorder(t, doGet(h, "/api/users"), http.StatusServiceUnavailable, testErrDomain, middleware.RateLimitErrCode)
	})
}
