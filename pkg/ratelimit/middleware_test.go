package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulakit/aulakit/pkg/ratelimit"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	cfg := ratelimit.Config{Window: time.Minute, MaxRequests: 2, BlockDuration: time.Hour}
	limiter := ratelimit.NewLimiter(store, cfg)

	handler := ratelimit.Middleware(limiter, ratelimit.ByIP())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", "/api/cursos", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("allows and sets headers", func(t *testing.T) {
		w := do("203.0.113.7:1000")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("rejects over quota with retry after", func(t *testing.T) {
		do("203.0.113.8:1000")
		do("203.0.113.8:1000")
		w := do("203.0.113.8:1000")

		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "Too Many Requests")
	})

	t.Run("empty key passes through", func(t *testing.T) {
		handler := ratelimit.Middleware(limiter, ratelimit.ByHeader("X-Api-Key"))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

		for range 5 {
			r := httptest.NewRequest("GET", "/", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			require.Equal(t, http.StatusOK, w.Code)
		}
	})
}

func TestComposite(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/recursos/premium", nil)
	r.RemoteAddr = "203.0.113.7:1000"

	t.Run("joins non-empty parts", func(t *testing.T) {
		key := ratelimit.Composite(ratelimit.ByIP(), ratelimit.ByHeader("X-Missing"), ratelimit.ByPath())(r)
		assert.Equal(t, "203.0.113.7:/recursos/premium", key)
	})

	t.Run("hashes long keys", func(t *testing.T) {
		long := ratelimit.ByHeader("X-Long")
		r.Header.Set("X-Long", strings.Repeat("a", 100))

		key := ratelimit.Composite(ratelimit.ByIP(), long)(r)
		assert.LessOrEqual(t, len(key), 64)
		assert.NotContains(t, key, ":")
	})

	t.Run("all empty yields empty", func(t *testing.T) {
		key := ratelimit.Composite(ratelimit.ByHeader("X-Nope"))(r)
		assert.Empty(t, key)
	})
}
