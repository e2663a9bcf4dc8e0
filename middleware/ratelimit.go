package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/broady/tsroute"
)

// RateLimit returns an HTTP middleware allowing at most requests calls per
// window for each client IP. Rejected calls get a resource_exhausted error
// envelope with status 429. A non-positive limit disables limiting.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			tsroute.WriteError(w, tsroute.Errorf(tsroute.CodeResourceExhausted,
				"rate limit of %d requests per %s exceeded", requests, window))
		}),
	)
}
