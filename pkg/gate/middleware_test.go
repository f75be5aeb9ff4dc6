package gate_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulakit/aulakit/pkg/gate"
	"github.com/aulakit/aulakit/pkg/subscription"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("content"))
	})
}

func headerSubject(r *http.Request) string {
	return r.Header.Get("X-Test-Subject")
}

func TestMiddleware_AllowsAndDenies(t *testing.T) {
	t.Parallel()

	src := subscription.NewMemorySource()
	src.Put("user-free", subscription.Record{Found: true})
	g, _ := newGate(t, src)

	handler := g.Middleware(headerSubject)(okHandler())

	t.Run("open route for anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cursos/introduccion", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("free user allowed on dashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/web-dashboard/courses", nil)
		req.Header.Set("X-Test-Subject", "user-free")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("free user redirected from premium", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/recursos/premium", nil)
		req.Header.Set("X-Test-Subject", "user-free")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/web-dashboard/billing?upgrade=true")
		assert.Equal(t, "PREMIUM", rec.Header().Get("X-Access-Required"))
		assert.Equal(t, "FREE", rec.Header().Get("X-User-Level"))
		assert.Equal(t, "upgrade_required", rec.Header().Get("X-Access-Reason"))
	})

	t.Run("anonymous redirected to sign in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/web-dashboard", nil))

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/sign-in?redirect_url=")
		assert.Equal(t, "login_required", rec.Header().Get("X-Access-Reason"))
	})
}

func TestMiddleware_SkipPrefixes(t *testing.T) {
	t.Parallel()

	g, tracked := newGate(t, subscription.NewMemorySource())
	handler := g.Middleware(headerSubject)(okHandler())

	for _, path := range []string{
		"/api/webhooks/paddle",
		"/api/internal/health",
		"/api/billing/public/plans",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Zero(t, tracked.calls, "skipped paths bypass authorization entirely")
}

func TestMiddleware_CustomSkipList(t *testing.T) {
	t.Parallel()

	g, _ := newGate(t, subscription.NewMemorySource())
	handler := g.Middleware(headerSubject, gate.WithSkipPrefixes("/healthz"))(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The default skips no longer apply.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/paddle", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
}

func TestContextSubject(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, gate.ContextSubject(req))

	req = req.WithContext(subscription.WithSubject(req.Context(), "user-9"))
	assert.Equal(t, "user-9", gate.ContextSubject(req))
}
