package subscription

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists billing state. One subscription per user: UserID is the
// logical key, Save upserts on it.
type Store interface {
	// Get returns the subscription for userID or ErrNotFound.
	Get(ctx context.Context, userID string) (*Subscription, error)

	// Save creates or replaces the subscription for sub.UserID.
	Save(ctx context.Context, sub *Subscription) error
}

// PostgresStore keeps subscriptions in the subscriptions table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("subscription: nil pgx pool")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*Subscription, error) {
	const q = `
SELECT id, user_id, plan_id, status, provider_sub_id,
       current_period_end, cancel_at_period_end,
       created_at, updated_at, cancelled_at
FROM subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`

	var sub Subscription
	err := s.pool.QueryRow(ctx, q, userID).Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status, &sub.ProviderSubID,
		&sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd,
		&sub.CreatedAt, &sub.UpdatedAt, &sub.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *PostgresStore) Save(ctx context.Context, sub *Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	const q = `
INSERT INTO subscriptions
	(id, user_id, plan_id, status, provider_sub_id,
	 current_period_end, cancel_at_period_end, created_at, updated_at, cancelled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
	plan_id = EXCLUDED.plan_id,
	status = EXCLUDED.status,
	provider_sub_id = EXCLUDED.provider_sub_id,
	current_period_end = EXCLUDED.current_period_end,
	cancel_at_period_end = EXCLUDED.cancel_at_period_end,
	updated_at = EXCLUDED.updated_at,
	cancelled_at = EXCLUDED.cancelled_at`

	_, err := s.pool.Exec(ctx, q,
		sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.ProviderSubID,
		sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd,
		sub.CreatedAt, sub.UpdatedAt, sub.CancelledAt,
	)
	return err
}

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]Subscription)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := sub
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.UserID] = *sub
	return nil
}
