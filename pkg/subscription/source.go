package subscription

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LookupSource answers the raw subscription question for one subject. A
// missing subject is not an error: return Record{Found: false}. Errors are
// reserved for the lookup itself failing.
type LookupSource interface {
	Lookup(ctx context.Context, subjectID string) (Record, error)
}

// PostgresSource reads the profile and its most recent relevant subscription
// in a single query.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a source backed by the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	if pool == nil {
		panic("subscription: nil pgx pool")
	}
	return &PostgresSource{pool: pool}
}

const lookupQuery = `
SELECT s.status, s.current_period_end, s.cancel_at_period_end
FROM profiles p
LEFT JOIN LATERAL (
	SELECT status, current_period_end, cancel_at_period_end
	FROM subscriptions
	WHERE user_id = p.user_id
	ORDER BY created_at DESC
	LIMIT 1
) s ON true
WHERE p.user_id = $1`

func (s *PostgresSource) Lookup(ctx context.Context, subjectID string) (Record, error) {
	var (
		status            *string
		periodEnd         *time.Time
		cancelAtPeriodEnd *bool
	)

	row := s.pool.QueryRow(ctx, lookupQuery, subjectID)
	if err := row.Scan(&status, &periodEnd, &cancelAtPeriodEnd); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{Found: false}, nil
		}
		return Record{}, errors.Join(ErrLookupFailed, err)
	}

	rec := Record{Found: true}
	if status != nil {
		rec.Status = Status(*status)
	}
	if periodEnd != nil {
		rec.CurrentPeriodEnd = *periodEnd
	}
	if cancelAtPeriodEnd != nil {
		rec.CancelAtPeriodEnd = *cancelAtPeriodEnd
	}
	return rec, nil
}

// MemorySource is an in-memory LookupSource for tests and local development.
type MemorySource struct {
	mu      sync.RWMutex
	records map[string]Record
	err     error
}

// NewMemorySource creates an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{records: make(map[string]Record)}
}

// Put installs the record returned for subjectID.
func (s *MemorySource) Put(subjectID string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[subjectID] = rec
}

// Remove deletes the record for subjectID, so lookups report not found.
func (s *MemorySource) Remove(subjectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, subjectID)
}

// FailWith makes every Lookup return err until cleared with FailWith(nil).
func (s *MemorySource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemorySource) Lookup(_ context.Context, subjectID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return Record{}, s.err
	}
	rec, ok := s.records[subjectID]
	if !ok {
		return Record{Found: false}, nil
	}
	return rec, nil
}
