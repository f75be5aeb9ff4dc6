package ratelimit

import (
	"net/http"
	"strconv"
)

// Middleware enforces the limiter per request, keyed by keyFunc.
// Denied requests get a 429 with Retry-After; every response carries the
// standard X-RateLimit headers. Requests with an empty key pass through
// unlimited rather than sharing one global bucket.
func Middleware(limiter *Limiter, keyFunc KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Check(r.Context(), key)
			if err != nil {
				// A broken store must not take the endpoint down with it.
				next.ServeHTTP(w, r)
				return
			}

			SetHeaders(w, res)

			if !res.Allowed {
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetHeaders writes the rate limit headers for a check result.
func SetHeaders(w http.ResponseWriter, res Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

	if !res.Allowed {
		if secs := int(res.RetryAfter.Seconds()); secs > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	}
}
