package gate

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aulakit/aulakit/pkg/logger"
	"github.com/aulakit/aulakit/pkg/ratelimit"
	"github.com/aulakit/aulakit/pkg/subscription"
)

// RouterOptions configures the billing router.
type RouterOptions struct {
	Service   *subscription.Service
	SubjectFn SubjectFunc          // defaults to ContextSubject
	Limiter   *ratelimit.Limiter   // applied to checkout and portal; nil disables
	KeyFn     ratelimit.KeyFunc    // defaults to client IP
	Logger    *slog.Logger
}

// Router exposes the billing endpoints:
//
//	POST /checkout  {plan_id, success_url, cancel_url} -> {url}
//	GET  /portal                                       -> {url}
//	POST /webhook   provider payload                   -> 200/400
//
// Checkout and portal require an authenticated subject and sit behind the
// strict rate limit profile when a limiter is provided. The webhook endpoint
// authenticates by signature, not by subject, and is never rate limited
// against the provider.
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("gate: nil subscription service")
	}
	if opts.SubjectFn == nil {
		opts.SubjectFn = ContextSubject
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	log := opts.Logger.With(logger.Component("gate.billing"))

	r := chi.NewRouter()

	r.Group(func(protected chi.Router) {
		if opts.Limiter != nil {
			keyFn := opts.KeyFn
			if keyFn == nil {
				keyFn = ratelimit.ByIP()
			}
			protected.Use(ratelimit.Middleware(opts.Limiter, keyFn))
		}

		protected.Post("/checkout", handleCheckout(opts.Service, opts.SubjectFn, log))
		protected.Get("/portal", handlePortal(opts.Service, opts.SubjectFn, log))
	})

	r.Post("/webhook", handleWebhook(opts.Service, log))

	return r
}

type checkoutRequest struct {
	PlanID     string `json:"plan_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func handleCheckout(svc *subscription.Service, subjectFn SubjectFunc, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := subjectFn(r)
		if subjectID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == "" {
			writeError(w, http.StatusBadRequest, "plan_id is required")
			return
		}

		link, err := svc.CreateCheckoutLink(r.Context(), subjectID, req.PlanID, subscription.CheckoutOptions{
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
		})
		if err != nil {
			if errors.Is(err, subscription.ErrPlanNotFound) {
				writeError(w, http.StatusNotFound, "unknown plan")
				return
			}
			log.ErrorContext(r.Context(), "checkout failed", logger.Error(err), logger.UserID(subjectID))
			writeError(w, http.StatusBadGateway, "checkout unavailable")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
	}
}

func handlePortal(svc *subscription.Service, subjectFn SubjectFunc, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := subjectFn(r)
		if subjectID == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		link, err := svc.GetCustomerPortalLink(r.Context(), subjectID)
		if err != nil {
			if errors.Is(err, subscription.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no manageable subscription")
				return
			}
			log.ErrorContext(r.Context(), "portal link failed", logger.Error(err), logger.UserID(subjectID))
			writeError(w, http.StatusBadGateway, "portal unavailable")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"url": link.URL})
	}
}

func handleWebhook(svc *subscription.Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable payload")
			return
		}

		signature := r.Header.Get("Paddle-Signature")
		if err := svc.HandleWebhook(r.Context(), payload, signature); err != nil {
			log.WarnContext(r.Context(), "webhook rejected", logger.Error(err))
			writeError(w, http.StatusBadRequest, "webhook rejected")
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
