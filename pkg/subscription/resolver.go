package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/aulakit/aulakit/pkg/access"
	"github.com/aulakit/aulakit/pkg/cache"
	"github.com/aulakit/aulakit/pkg/logger"
	"github.com/aulakit/aulakit/pkg/ratelimit"
	"github.com/aulakit/aulakit/pkg/retry"
)

// Recorder is the observability surface the resolver reports to. A nil
// *metrics.Registry satisfies it as a no-op.
type Recorder interface {
	CacheHit()
	CacheMiss()
	Lookup(outcome string, attempts int, elapsed time.Duration)
	RateLimit(allowed bool)
}

const (
	lookupOutcomeFound    = "found"
	lookupOutcomeNotFound = "not_found"
	lookupOutcomeError    = "error"
)

// Resolver turns a subject ID into an Access answer, caching successful
// resolutions and shielding the lookup source behind a rate limiter and the
// database retry policy.
type Resolver struct {
	source   LookupSource
	cache    *cache.TTL[string, Access]
	limiter  *ratelimit.Limiter
	retryCfg retry.Config
	log      *slog.Logger
	rec      Recorder
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverSettings)

type resolverSettings struct {
	cacheTTL   time.Duration
	maxEntries int
	limiter    *ratelimit.Limiter
	retryCfg   retry.Config
	log        *slog.Logger
	rec        Recorder
}

// WithCacheTTL sets how long resolved access is served without a fresh
// lookup. Shorter values tighten revocation latency at the cost of load.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(s *resolverSettings) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheCapacity caps the number of cached subjects.
func WithCacheCapacity(n int) ResolverOption {
	return func(s *resolverSettings) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithLimiter installs a rate limiter in front of the lookup source. Denied
// subjects resolve to FREE without touching the source.
func WithLimiter(l *ratelimit.Limiter) ResolverOption {
	return func(s *resolverSettings) { s.limiter = l }
}

// WithRetryConfig overrides the lookup retry policy.
func WithRetryConfig(cfg retry.Config) ResolverOption {
	return func(s *resolverSettings) { s.retryCfg = cfg }
}

// WithLogger sets the resolver logger.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(s *resolverSettings) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) ResolverOption {
	return func(s *resolverSettings) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// NewResolver creates a Resolver over the given source. Defaults: 5 minute
// cache TTL, 1000 cached subjects, no rate limiter, database retry policy,
// default slog logger, no metrics.
func NewResolver(source LookupSource, opts ...ResolverOption) *Resolver {
	if source == nil {
		panic("subscription: nil lookup source")
	}

	s := resolverSettings{
		cacheTTL:   5 * time.Minute,
		maxEntries: 1000,
		retryCfg:   retry.Important(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Resolver{
		source: source,
		cache: cache.NewTTL[string, Access](cache.Config{
			DefaultTTL: s.cacheTTL,
			MaxEntries: s.maxEntries,
		}),
		limiter:  s.limiter,
		retryCfg: s.retryCfg,
		log:      s.log.With(logger.Component("subscription.resolver")),
		rec:      s.rec,
	}
}

// Resolve answers the access question for subjectID.
//
// The empty subject is an anonymous visitor and resolves to OPEN without
// touching cache, limiter, or source. Otherwise: cached answers win; a
// rate-limited subject degrades to FREE without a lookup; a successful
// lookup derives the tier, caches it, and returns it; an exhausted lookup
// degrades to FREE and is never cached, so the next request tries again.
//
// The returned error is non-nil only when the caller's context ended before
// an answer existed. Lookup failures are absorbed into the FREE answer.
func (r *Resolver) Resolve(ctx context.Context, subjectID string) (Access, error) {
	if subjectID == "" {
		return Access{Level: access.LevelOpen}, nil
	}

	if cached, ok := r.cache.Get(subjectID); ok {
		r.recCacheHit()
		return cached, nil
	}
	r.recCacheMiss()

	if r.limiter != nil {
		result, err := r.limiter.Check(ctx, subjectID)
		if err != nil {
			// Store trouble: fail open on the limiter, the lookup itself
			// still runs under the retry budget.
			r.log.WarnContext(ctx, "rate limit check failed", logger.Error(err), logger.UserID(subjectID))
		} else {
			r.recRateLimit(result.Allowed)
			if !result.Allowed {
				r.log.WarnContext(ctx, "subscription lookup rate limited",
					logger.UserID(subjectID), slog.Duration("retry_after", result.RetryAfter))
				return Access{Level: access.LevelFree}, nil
			}
		}
	}

	outcome := retry.Do(ctx, r.retryCfg, func(ctx context.Context) (Record, error) {
		return r.source.Lookup(ctx, subjectID)
	})
	if !outcome.Success() {
		if ctx.Err() != nil {
			r.recLookup(lookupOutcomeError, outcome.Attempts, outcome.Elapsed)
			return Access{}, outcome.Err
		}
		r.log.ErrorContext(ctx, "subscription lookup exhausted, degrading to free tier",
			logger.Error(outcome.Err), logger.UserID(subjectID), logger.Attempt(outcome.Attempts))
		r.recLookup(lookupOutcomeError, outcome.Attempts, outcome.Elapsed)
		return Access{Level: access.LevelFree}, nil
	}

	rec := outcome.Value
	resolved := deriveAccess(rec)
	r.cache.Set(subjectID, resolved, 0)

	if rec.Found {
		r.recLookup(lookupOutcomeFound, outcome.Attempts, outcome.Elapsed)
	} else {
		r.recLookup(lookupOutcomeNotFound, outcome.Attempts, outcome.Elapsed)
	}
	r.log.DebugContext(ctx, "subscription resolved",
		logger.UserID(subjectID), logger.Level(resolved.Level.String()), logger.Attempt(outcome.Attempts))

	return resolved, nil
}

// Invalidate drops the cached answer for one subject. Returns true when an
// entry was present.
func (r *Resolver) Invalidate(subjectID string) bool {
	return r.cache.Invalidate(subjectID)
}

// InvalidateMany drops cached answers for several subjects, returning how
// many were present.
func (r *Resolver) InvalidateMany(subjectIDs []string) int {
	return r.cache.InvalidateMany(subjectIDs)
}

// CacheStats exposes cache counters for the stats surface.
func (r *Resolver) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// StartJanitor runs the cache janitor until ctx is cancelled.
func (r *Resolver) StartJanitor(ctx context.Context, interval time.Duration) {
	r.cache.StartJanitor(ctx, interval)
}

func (r *Resolver) recCacheHit() {
	if r.rec != nil {
		r.rec.CacheHit()
	}
}

func (r *Resolver) recCacheMiss() {
	if r.rec != nil {
		r.rec.CacheMiss()
	}
}

func (r *Resolver) recLookup(outcome string, attempts int, elapsed time.Duration) {
	if r.rec != nil {
		r.rec.Lookup(outcome, attempts, elapsed)
	}
}

func (r *Resolver) recRateLimit(allowed bool) {
	if r.rec != nil {
		r.rec.RateLimit(allowed)
	}
}
