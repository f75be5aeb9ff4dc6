package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/aulakit/aulakit/pkg/retry"
)

// PaddleConfig configures the Paddle billing provider, loadable via
// pkg/config.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements BillingProvider on the official Paddle SDK.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates the provider, selecting the sandbox or
// production API host from the config.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

// CreateCheckoutLink opens a Paddle transaction with a hosted checkout. The
// user ID travels in custom data and comes back on every webhook, which is
// how billing events are tied to subjects.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceID == "" {
		return nil, retry.Permanent(errors.New("price ID is required"))
	}
	if req.CustomerID == "" {
		return nil, retry.Permanent(errors.New("customer ID is required"))
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})

	txReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"customer_id": req.CustomerID,
		},
	}
	if req.Email != "" {
		txReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		txReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	if tx.Checkout == nil || tx.Checkout.URL == nil || *tx.Checkout.URL == "" {
		return nil, retry.Permanent(ErrNoCheckoutURL)
	}

	return &CheckoutLink{
		URL:       *tx.Checkout.URL,
		SessionID: tx.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil
}

// GetCustomerPortalLink opens a Paddle customer portal session scoped to the
// user's subscription.
func (p *PaddleProvider) GetCustomerPortalLink(ctx context.Context, sub *Subscription) (*PortalLink, error) {
	if sub == nil || sub.ProviderSubID == "" {
		return nil, retry.Permanent(errors.New("subscription with provider ID is required"))
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID:      sub.UserID,
		SubscriptionIDs: []string{sub.ProviderSubID},
	})
	if err != nil {
		return nil, errors.Join(ErrProviderError, err)
	}

	link := &PortalLink{ExpiresAt: time.Now().Add(24 * time.Hour)}
	if session.URLs.General.Overview != "" {
		link.URL = session.URLs.General.Overview
	}
	for _, subURL := range session.URLs.Subscriptions {
		if subURL.ID == sub.ProviderSubID && subURL.CancelSubscription != "" {
			link.CancelURL = subURL.CancelSubscription
			break
		}
	}
	if link.URL == "" {
		return nil, retry.Permanent(ErrNoPortalURL)
	}
	return link, nil
}

// ParseWebhook verifies the Paddle-Signature header and normalizes the
// event. Verification failures are Permanent: replaying a forged payload
// cannot make it valid.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Join(ErrInvalidWebhook, err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, retry.Permanent(errors.Join(ErrWebhookVerification, err))
	}
	if !valid {
		return nil, retry.Permanent(ErrWebhookVerification)
	}

	return parsePaddlePayload(payload)
}

// parsePaddlePayload normalizes a verified Paddle event body.
func parsePaddlePayload(payload []byte) (*WebhookEvent, error) {
	var raw struct {
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, retry.Permanent(errors.Join(ErrInvalidWebhook, err))
	}

	event := &WebhookEvent{
		Type:          mapPaddleEventType(raw.EventType),
		ProviderEvent: raw.EventType,
		Raw:           raw.Data,
	}

	if id, ok := raw.Data["id"].(string); ok {
		event.SubscriptionID = id
	}
	if subID, ok := raw.Data["subscription_id"].(string); ok {
		event.SubscriptionID = subID
	}
	if status, ok := raw.Data["status"].(string); ok {
		event.Status = mapPaddleStatus(status)
	}
	if customData, ok := raw.Data["custom_data"].(map[string]any); ok {
		if customerID, ok := customData["customer_id"].(string); ok {
			event.CustomerID = customerID
		}
	}
	if periodEnd, ok := raw.Data["current_billing_period"].(map[string]any); ok {
		if ends, ok := periodEnd["ends_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339, ends); err == nil {
				event.PeriodEnd = t
			}
		}
	}
	if items, ok := raw.Data["items"].([]any); ok && len(items) > 0 {
		if item, ok := items[0].(map[string]any); ok {
			if price, ok := item["price"].(map[string]any); ok {
				if priceID, ok := price["id"].(string); ok {
					event.PlanID = priceID
				}
			}
			if priceID, ok := item["price_id"].(string); ok {
				event.PlanID = priceID
			}
		}
	}

	return event, nil
}

func mapPaddleEventType(providerEvent string) EventType {
	switch providerEvent {
	case "subscription.created", "transaction.completed":
		return EventSubscriptionCreated
	case "subscription.updated", "subscription.resumed":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCancelled
	case "transaction.payment_failed":
		return EventPaymentFailed
	case "transaction.payment_succeeded":
		return EventPaymentSucceeded
	default:
		return EventType(providerEvent)
	}
}

func mapPaddleStatus(providerStatus string) Status {
	switch strings.ToLower(providerStatus) {
	case "trialing":
		return StatusTrialing
	case "active":
		return StatusActive
	case "past_due":
		return StatusPastDue
	case "canceled", "cancelled":
		return StatusCancelled
	case "expired":
		return StatusExpired
	default:
		return Status(providerStatus)
	}
}
