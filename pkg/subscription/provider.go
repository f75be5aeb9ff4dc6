package subscription

import (
	"context"
	"time"
)

// BillingProvider abstracts the hosted-payment vendor. Implementations use
// the vendor SDK, validate webhook signatures, and normalize vendor events
// into WebhookEvent values. Errors that repeating the call cannot fix
// (validation, authorization, signature failures) must carry the
// retry.Permanent marker so the payment retry policy surfaces them on the
// first attempt.
type BillingProvider interface {
	// CreateCheckoutLink opens a hosted checkout session.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a temporary customer portal URL where
	// the user can update payment methods or cancel.
	GetCustomerPortalLink(ctx context.Context, sub *Subscription) (*PortalLink, error)

	// ParseWebhook verifies the signature and normalizes the payload.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest carries what the provider needs to open a checkout.
type CheckoutRequest struct {
	PriceID    string // provider price identifier
	CustomerID string // our user ID, round-tripped through webhook custom data
	Email      string
	SuccessURL string
	CancelURL  string
}

// CheckoutLink is a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink is a pre-authenticated customer portal session.
type PortalLink struct {
	URL       string
	CancelURL string
	ExpiresAt time.Time
}

// EventType is the normalized billing event type.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionUpdated   EventType = "subscription_updated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventPaymentFailed         EventType = "payment_failed"
	EventPaymentSucceeded      EventType = "payment_succeeded"
)

// WebhookEvent is a provider webhook normalized to our vocabulary.
type WebhookEvent struct {
	Type           EventType
	ProviderEvent  string
	SubscriptionID string
	CustomerID     string // our user ID recovered from custom data
	Status         Status
	PlanID         string
	PeriodEnd      time.Time
	Raw            map[string]any
}
