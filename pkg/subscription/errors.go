package subscription

import "errors"

var (
	ErrLookupFailed   = errors.New("subscription lookup failed")
	ErrNotFound       = errors.New("subscription not found")
	ErrProviderError  = errors.New("billing provider error")
	ErrInvalidWebhook = errors.New("invalid webhook payload")

	ErrPlanNotFound      = errors.New("subscription plan not found")
	ErrInvalidPlanConfig = errors.New("invalid subscription plan configuration")
	ErrLoadPlansFailed   = errors.New("failed to load subscription plans")

	ErrMissingAPIKey        = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret = errors.New("billing provider webhook secret is required")
	ErrInvalidEnvironment   = errors.New("invalid billing provider environment")
	ErrWebhookVerification  = errors.New("webhook signature verification failed")
	ErrNoCheckoutURL        = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL          = errors.New("no portal URL returned from provider")
)
