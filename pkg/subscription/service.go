package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aulakit/aulakit/pkg/logger"
	"github.com/aulakit/aulakit/pkg/retry"
)

// CacheInvalidator drops cached access answers when billing state changes.
// *Resolver satisfies it.
type CacheInvalidator interface {
	Invalidate(subjectID string) bool
}

// Service is the billing write path: checkout and portal links out, webhook
// events in. Every webhook that changes a user's entitlement invalidates the
// resolver cache for that user, so the change is visible on the next
// request instead of after the cache TTL.
type Service struct {
	plans       map[string]Plan
	provider    BillingProvider
	store       Store
	invalidator CacheInvalidator
	retryCfg    retry.Config
	breaker     *retry.Breaker
	log         *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the service logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithInvalidator wires the resolver cache so webhook events take effect
// immediately.
func WithInvalidator(inv CacheInvalidator) ServiceOption {
	return func(s *Service) { s.invalidator = inv }
}

// WithProviderRetry overrides the payment retry policy for provider calls.
func WithProviderRetry(cfg retry.Config) ServiceOption {
	return func(s *Service) { s.retryCfg = cfg }
}

// WithBreaker guards provider calls with a circuit breaker so a degraded
// billing vendor stops consuming retry budgets.
func WithBreaker(b *retry.Breaker) ServiceOption {
	return func(s *Service) { s.breaker = b }
}

// NewService creates the billing service. The plan catalog is loaded once
// at construction; provider and store are required.
func NewService(ctx context.Context, src PlansSource, provider BillingProvider, store Store, opts ...ServiceOption) (*Service, error) {
	if src == nil {
		panic("subscription: nil plans source")
	}
	if provider == nil {
		panic("subscription: nil billing provider")
	}
	if store == nil {
		panic("subscription: nil store")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Service{
		plans:    plans,
		provider: provider,
		store:    store,
		retryCfg: retry.Critical(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("subscription.service"))
	return s, nil
}

// Plans returns the public catalog for pricing pages.
func (s *Service) Plans() []Plan {
	out := make([]Plan, 0, len(s.plans))
	for _, p := range s.plans {
		if p.Public {
			out = append(out, p)
		}
	}
	return out
}

// GetSubscription returns the stored subscription for userID.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*Subscription, error) {
	return s.store.Get(ctx, userID)
}

// CreateCheckoutLink opens a checkout session for userID on planID.
func (s *Service) CreateCheckoutLink(ctx context.Context, userID, planID string, opts CheckoutOptions) (*CheckoutLink, error) {
	plan, ok := s.plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}

	outcome := runProvider(ctx, s, func(ctx context.Context) (*CheckoutLink, error) {
		return s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
			PriceID:    plan.ID,
			CustomerID: userID,
			Email:      opts.Email,
			SuccessURL: opts.SuccessURL,
			CancelURL:  opts.CancelURL,
		})
	})
	if !outcome.Success() {
		s.log.ErrorContext(ctx, "checkout link creation failed",
			logger.Error(outcome.Err), logger.UserID(userID), logger.Attempt(outcome.Attempts))
		return nil, outcome.Err
	}
	return outcome.Value, nil
}

// GetCustomerPortalLink opens a customer portal session for userID.
func (s *Service) GetCustomerPortalLink(ctx context.Context, userID string) (*PortalLink, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.ProviderSubID == "" {
		return nil, fmt.Errorf("%w: no provider subscription to manage", ErrNotFound)
	}

	outcome := runProvider(ctx, s, func(ctx context.Context) (*PortalLink, error) {
		return s.provider.GetCustomerPortalLink(ctx, sub)
	})
	if !outcome.Success() {
		return nil, outcome.Err
	}
	return outcome.Value, nil
}

// HandleWebhook verifies, persists, and applies one provider webhook. The
// cache invalidation at the end is what makes an upgrade or cancellation
// visible before the resolver cache TTL would have expired it.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}
	if event.CustomerID == "" {
		return fmt.Errorf("%w: missing customer ID", ErrInvalidWebhook)
	}

	now := time.Now().UTC()

	switch event.Type {
	case EventSubscriptionCreated:
		sub := &Subscription{
			UserID:           event.CustomerID,
			PlanID:           event.PlanID,
			Status:           event.Status,
			ProviderSubID:    event.SubscriptionID,
			CurrentPeriodEnd: event.PeriodEnd,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.store.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}

	case EventSubscriptionUpdated:
		sub, err := s.store.Get(ctx, event.CustomerID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			// Out-of-order delivery: treat the update as a create.
			sub = &Subscription{UserID: event.CustomerID, CreatedAt: now}
		}
		if event.PlanID != "" {
			sub.PlanID = event.PlanID
		}
		sub.Status = event.Status
		sub.ProviderSubID = event.SubscriptionID
		if !event.PeriodEnd.IsZero() {
			sub.CurrentPeriodEnd = event.PeriodEnd
		}
		sub.UpdatedAt = now
		if err := s.store.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}

	case EventSubscriptionCancelled:
		sub, err := s.store.Get(ctx, event.CustomerID)
		if err != nil {
			return fmt.Errorf("cancellation for unknown subscription: %w", err)
		}
		sub.Status = StatusCancelled
		sub.CancelledAt = &now
		sub.UpdatedAt = now
		if err := s.store.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}

	case EventPaymentFailed:
		sub, err := s.store.Get(ctx, event.CustomerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		sub.Status = StatusPastDue
		sub.UpdatedAt = now
		if err := s.store.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to mark subscription past due: %w", err)
		}

	default:
		// Unhandled event types are acknowledged so the provider stops
		// redelivering them.
		s.log.DebugContext(ctx, "ignoring webhook event", slog.String("event", string(event.ProviderEvent)))
		return nil
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(event.CustomerID)
	}
	s.log.InfoContext(ctx, "webhook applied",
		slog.String("event", string(event.Type)), logger.UserID(event.CustomerID))
	return nil
}

// runProvider runs a provider call through the payment retry policy and the
// breaker when one is configured.
func runProvider[T any](ctx context.Context, s *Service, op func(context.Context) (T, error)) retry.Outcome[T] {
	if s.breaker != nil {
		return retry.BreakerDo(ctx, s.breaker, s.retryCfg, op)
	}
	return retry.Do(ctx, s.retryCfg, op)
}
