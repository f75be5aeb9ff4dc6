package gate

import (
	"net/http"
	"strings"

	"github.com/aulakit/aulakit/pkg/subscription"
)

// SubjectFunc extracts the authenticated subject ID from a request. Return
// the empty string for anonymous requests.
type SubjectFunc func(r *http.Request) string

// ContextSubject reads the subject stored by subscription.WithSubject,
// matching setups where an upstream auth middleware populates the context.
func ContextSubject(r *http.Request) string {
	subjectID, _ := subscription.SubjectFromContext(r.Context())
	return subjectID
}

// defaultSkipPrefixes are paths the access gate never evaluates: provider
// webhooks authenticate by signature, internal endpoints by network
// placement, and the public billing API must stay reachable for checkout.
var defaultSkipPrefixes = []string{
	"/api/webhooks/",
	"/api/internal/",
	"/api/billing/public/",
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareSettings)

type middlewareSettings struct {
	skipPrefixes []string
}

// WithSkipPrefixes replaces the default skip list.
func WithSkipPrefixes(prefixes ...string) MiddlewareOption {
	return func(s *middlewareSettings) { s.skipPrefixes = prefixes }
}

// Middleware applies gate decisions to an HTTP handler chain. Denied
// requests are redirected and carry diagnostic headers naming the required
// level, the subject's level, and the denial reason.
func (g *Gate) Middleware(subjectFn SubjectFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if subjectFn == nil {
		subjectFn = ContextSubject
	}

	s := middlewareSettings{skipPrefixes: defaultSkipPrefixes}
	for _, opt := range opts {
		opt(&s)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range s.skipPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			decision := g.Authorize(r.Context(), r.URL.Path, subjectFn(r))
			if decision.Allow {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-Access-Required", decision.Required.String())
			w.Header().Set("X-User-Level", decision.UserLevel.String())
			w.Header().Set("X-Access-Reason", string(decision.Reason))
			http.Redirect(w, r, decision.RedirectURL, http.StatusTemporaryRedirect)
		})
	}
}
