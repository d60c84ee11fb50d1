/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/devtoolbox/mockapi/internal/ratelimit"
	"github.com/devtoolbox/mockapi/log"
	"github.com/devtoolbox/mockapi/restapi"
)

// RateLimitErrCode is an error code that is used in a response body
// if the request is rejected by the middleware that limits the rate of HTTP requests.
const RateLimitErrCode = "tooManyRequests"

// RateLimitErrMessage is an error message that is used in a response body of the rejected request.
const RateLimitErrMessage = "Too many requests."

// RateLimitLogFieldKey it is the name of the logged field that contains a key for the requests rate limiter.
const RateLimitLogFieldKey = "rate_limit_key"

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimitParams contains data that relates to the rate limiting procedure
// and could be used for rejecting or handling an occurred error.
type RateLimitParams struct {
	ErrDomain          string
	ResponseStatusCode int
	Key                string
	Decision           ratelimit.Decision
}

// RateLimitGetKeyFunc is a function that is called for getting key for rate limiting.
type RateLimitGetKeyFunc func(r *http.Request) (key string, bypass bool, err error)

// RateLimitOnRejectFunc is a function that is called for rejecting HTTP request when the rate limit is exceeded.
type RateLimitOnRejectFunc func(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger)

// RateLimitOnErrorFunc is a function that is called when the key cannot be obtained or the limiter fails.
type RateLimitOnErrorFunc func(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, err error, next http.Handler, logger log.FieldLogger)

// RateLimitOpts represents an options for the RateLimit middleware.
type RateLimitOpts struct {
	// GetKey returns the identity of the client. GetKeyByClientIdentity is used by default.
	GetKey             RateLimitGetKeyFunc
	ResponseStatusCode int
	DryRun             bool

	OnReject         RateLimitOnRejectFunc
	OnRejectInDryRun RateLimitOnRejectFunc
	OnError          RateLimitOnErrorFunc
}

type rateLimitHandler struct {
	next           http.Handler
	limiter        ratelimit.Limiter
	getKey         RateLimitGetKeyFunc
	errDomain      string
	respStatusCode int
	onReject       RateLimitOnRejectFunc
	onError        RateLimitOnErrorFunc
}

// RateLimit is a middleware that limits the rate of HTTP requests per client.
func RateLimit(limiter ratelimit.Limiter, errDomain string) func(next http.Handler) http.Handler {
	return RateLimitWithOpts(limiter, errDomain, RateLimitOpts{})
}

// RateLimitWithOpts is a configurable version of a middleware to limit the rate of HTTP requests.
func RateLimitWithOpts(limiter ratelimit.Limiter, errDomain string, opts RateLimitOpts) func(next http.Handler) http.Handler {
	getKey := opts.GetKey
	if getKey == nil {
		getKey = GetKeyByClientIdentity
	}
	respStatusCode := opts.ResponseStatusCode
	if respStatusCode == 0 {
		respStatusCode = http.StatusTooManyRequests
	}
	return func(next http.Handler) http.Handler {
		return &rateLimitHandler{
			next:           next,
			limiter:        limiter,
			getKey:         getKey,
			errDomain:      errDomain,
			respStatusCode: respStatusCode,
			onReject:       makeRateLimitOnRejectFunc(opts),
			onError:        makeRateLimitOnErrorFunc(opts),
		}
	}
}

func (h *rateLimitHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	params := RateLimitParams{ErrDomain: h.errDomain, ResponseStatusCode: h.respStatusCode}
	logger := GetLoggerFromContext(r.Context())

	key, bypass, err := h.getKey(r)
	if err != nil {
		h.onError(rw, r, params, err, h.next, logger)
		return
	}
	if bypass {
		h.next.ServeHTTP(rw, r)
		return
	}
	params.Key = key

	if params.Decision, err = h.limiter.Allow(r.Context(), key); err != nil {
		h.onError(rw, r, params, err, h.next, logger)
		return
	}

	if lp := GetLoggingParamsFromContext(r.Context()); lp != nil {
		lp.ExtendFields(log.String(RateLimitLogFieldKey, key), log.Int("rate_limit_remaining", params.Decision.Remaining))
	}
	SetRateLimitHeaders(rw, params.Decision)

	if params.Decision.Success {
		h.next.ServeHTTP(rw, r)
		return
	}
	h.onReject(rw, r, params, h.next, logger)
}

// SetRateLimitHeaders writes X-RateLimit-* headers of the decision into the response.
func SetRateLimitHeaders(rw http.ResponseWriter, d ratelimit.Decision) {
	rw.Header().Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
	rw.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
	rw.Header().Set(HeaderRateLimitReset, strconv.FormatInt(d.Reset, 10))
}

// GetKeyByClientIdentity uses the client address (or the first X-Forwarded-For entry) as a key.
func GetKeyByClientIdentity(r *http.Request) (key string, bypass bool, err error) {
	return ratelimit.IdentityFromRequest(r), false, nil
}

// DefaultRateLimitOnReject sends error response with Retry-After header when the rate limit is exceeded.
func DefaultRateLimitOnReject(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, _ http.Handler, logger log.FieldLogger,
) {
	if logger != nil {
		logger = logger.With(
			log.String(RateLimitLogFieldKey, params.Key),
			log.String(userAgentLogFieldKey, r.UserAgent()),
		)
	}
	rw.Header().Set(HeaderRetryAfter, strconv.Itoa(int(math.Ceil(params.Decision.RetryAfter.Seconds()))))
	apiErr := restapi.NewError(params.ErrDomain, RateLimitErrCode, RateLimitErrMessage)
	restapi.RespondError(rw, params.ResponseStatusCode, apiErr, logger)
}

// DefaultRateLimitOnError sends response with 500 HTTP status code when the limiter fails.
func DefaultRateLimitOnError(
	rw http.ResponseWriter, _ *http.Request, params RateLimitParams, err error, _ http.Handler, logger log.FieldLogger,
) {
	if logger != nil {
		logger.Error("rate limiting failed", log.Error(err), log.String(RateLimitLogFieldKey, params.Key))
	}
	restapi.RespondInternalError(rw, params.ErrDomain, logger)
}

// DefaultRateLimitOnRejectInDryRun logs the rejection and continues serving the request.
func DefaultRateLimitOnRejectInDryRun(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger,
) {
	if logger != nil {
		logger.Warn("too many requests, serving will be continued because of dry run mode",
			log.String(RateLimitLogFieldKey, params.Key),
			log.String(userAgentLogFieldKey, r.UserAgent()),
		)
	}
	next.ServeHTTP(rw, r)
}

func makeRateLimitOnRejectFunc(opts RateLimitOpts) RateLimitOnRejectFunc {
	if opts.DryRun {
		if opts.OnRejectInDryRun != nil {
			return opts.OnRejectInDryRun
		}
		return DefaultRateLimitOnRejectInDryRun
	}
	if opts.OnReject != nil {
		return opts.OnReject
	}
	return DefaultRateLimitOnReject
}

func makeRateLimitOnErrorFunc(opts RateLimitOpts) RateLimitOnErrorFunc {
	if opts.OnError != nil {
		return opts.OnError
	}
	return DefaultRateLimitOnError
}
