package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aulakit/aulakit/pkg/retry"
	"github.com/aulakit/aulakit/pkg/subscription"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutLink(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutLink, error) {
	args := m.Called(ctx, req)
	if link := args.Get(0); link != nil {
		return link.(*subscription.CheckoutLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) GetCustomerPortalLink(ctx context.Context, sub *subscription.Subscription) (*subscription.PortalLink, error) {
	args := m.Called(ctx, sub)
	if link := args.Get(0); link != nil {
		return link.(*subscription.PortalLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*subscription.WebhookEvent, error) {
	args := m.Called(ctx, payload, signature)
	if event := args.Get(0); event != nil {
		return event.(*subscription.WebhookEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

var testPlans = subscription.StaticPlansSource{
	"pri_premium_monthly": {
		ID:       "pri_premium_monthly",
		Name:     "Premium",
		Price:    subscription.Money{Amount: 1900, Currency: "USD"},
		Interval: subscription.BillingIntervalMonthly,
		Public:   true,
	},
	"pri_internal": {
		ID:       "pri_internal",
		Name:     "Internal",
		Interval: subscription.BillingIntervalNone,
	},
}

func newTestService(t *testing.T, provider subscription.BillingProvider, store subscription.Store, opts ...subscription.ServiceOption) *subscription.Service {
	t.Helper()

	opts = append(opts, subscription.WithProviderRetry(retry.Config{
		MaxAttempts: 2,
		BaseDelay:   time.Microsecond,
		MaxDelay:    time.Millisecond,
		Multiplier:  2,
		Jitter:      -1,
	}))
	svc, err := subscription.NewService(context.Background(), testPlans, provider, store, opts...)
	require.NoError(t, err)
	return svc
}

func TestService_Plans_OnlyPublic(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &mockProvider{}, subscription.NewMemoryStore())

	plans := svc.Plans()
	require.Len(t, plans, 1)
	assert.Equal(t, "pri_premium_monthly", plans[0].ID)
}

func TestService_CreateCheckoutLink(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	provider.On("CreateCheckoutLink", mock.Anything, mock.MatchedBy(func(req subscription.CheckoutRequest) bool {
		return req.PriceID == "pri_premium_monthly" && req.CustomerID == "user-1"
	})).Return(&subscription.CheckoutLink{URL: "https://pay.example.com/c/abc"}, nil)

	svc := newTestService(t, provider, subscription.NewMemoryStore())

	link, err := svc.CreateCheckoutLink(context.Background(), "user-1", "pri_premium_monthly", subscription.CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/c/abc", link.URL)
	provider.AssertExpectations(t)
}

func TestService_CreateCheckoutLink_UnknownPlan(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &mockProvider{}, subscription.NewMemoryStore())

	_, err := svc.CreateCheckoutLink(context.Background(), "user-1", "pri_nope", subscription.CheckoutOptions{})
	assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
}

func TestService_HandleWebhook_CreatedInvalidatesCache(t *testing.T) {
	t.Parallel()

	event := &subscription.WebhookEvent{
		Type:           subscription.EventSubscriptionCreated,
		SubscriptionID: "sub_123",
		CustomerID:     "user-1",
		Status:         subscription.StatusActive,
		PlanID:         "pri_premium_monthly",
	}
	provider := &mockProvider{}
	provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)

	store := subscription.NewMemoryStore()

	src := subscription.NewMemorySource()
	resolver := subscription.NewResolver(src)
	// Prime the cache with the stale pre-upgrade answer.
	_, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)

	svc := newTestService(t, provider, store, subscription.WithInvalidator(resolver))

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	sub, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.Equal(t, "sub_123", sub.ProviderSubID)
	assert.Equal(t, "pri_premium_monthly", sub.PlanID)

	// The cached answer was dropped: a fresh resolve hits the source again.
	src.Put("user-1", subscription.Record{Found: true, Status: subscription.StatusActive})
	got, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, got.HasActiveSubscription)
}

func TestService_HandleWebhook_Cancelled(t *testing.T) {
	t.Parallel()

	store := subscription.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &subscription.Subscription{
		UserID:        "user-1",
		PlanID:        "pri_premium_monthly",
		Status:        subscription.StatusActive,
		ProviderSubID: "sub_123",
	}))

	provider := &mockProvider{}
	provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
		Type:       subscription.EventSubscriptionCancelled,
		CustomerID: "user-1",
	}, nil)

	svc := newTestService(t, provider, store)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	sub, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCancelled, sub.Status)
	require.NotNil(t, sub.CancelledAt)
}

func TestService_HandleWebhook_PaymentFailed(t *testing.T) {
	t.Parallel()

	store := subscription.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &subscription.Subscription{
		UserID: "user-1",
		Status: subscription.StatusActive,
	}))

	provider := &mockProvider{}
	provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
		Type:       subscription.EventPaymentFailed,
		CustomerID: "user-1",
	}, nil)

	svc := newTestService(t, provider, store)
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte(`{}`), "sig"))

	sub, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPastDue, sub.Status)
}

func TestService_HandleWebhook_MissingCustomer(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	provider.On("ParseWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&subscription.WebhookEvent{
		Type: subscription.EventSubscriptionCreated,
	}, nil)

	svc := newTestService(t, provider, subscription.NewMemoryStore())

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	assert.ErrorIs(t, err, subscription.ErrInvalidWebhook)
}

func TestService_GetCustomerPortalLink_RequiresProviderSub(t *testing.T) {
	t.Parallel()

	store := subscription.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &subscription.Subscription{
		UserID: "user-1",
		Status: subscription.StatusActive,
	}))

	svc := newTestService(t, &mockProvider{}, store)

	_, err := svc.GetCustomerPortalLink(context.Background(), "user-1")
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}
