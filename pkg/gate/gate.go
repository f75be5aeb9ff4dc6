package gate

import (
	"context"
	"log/slog"

	"github.com/aulakit/aulakit/pkg/access"
	"github.com/aulakit/aulakit/pkg/logger"
	"github.com/aulakit/aulakit/pkg/subscription"
)

// Reason explains a denial. Allowed decisions carry an empty reason.
type Reason string

const (
	// ReasonLoginRequired means the route needs an authenticated subject.
	ReasonLoginRequired Reason = "login_required"
	// ReasonUpgradeRequired means the subject's tier is below the route's.
	ReasonUpgradeRequired Reason = "upgrade_required"
	// ReasonError means authorization itself failed and the gate closed.
	ReasonError Reason = "error"
)

// Decision is the gate's verdict for one request.
type Decision struct {
	Allow       bool
	RedirectURL string // destination when Allow is false
	Required    access.Level
	UserLevel   access.Level
	Reason      Reason
}

// AccessResolver answers the entitlement question. *subscription.Resolver
// satisfies it.
type AccessResolver interface {
	Resolve(ctx context.Context, subjectID string) (subscription.Access, error)
}

// AccessRecorder observes decisions. *metrics.Registry satisfies it.
type AccessRecorder interface {
	Decision(required, outcome string)
}

// Gate ties the classifier and resolver together.
type Gate struct {
	classifier *access.Classifier
	resolver   AccessResolver
	policy     access.RedirectPolicy
	log        *slog.Logger
	rec        AccessRecorder
}

// Option configures a Gate.
type Option func(*Gate)

// WithRedirectPolicy overrides the default redirect destinations.
func WithRedirectPolicy(p access.RedirectPolicy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithLogger sets the gate logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec AccessRecorder) Option {
	return func(g *Gate) {
		if rec != nil {
			g.rec = rec
		}
	}
}

// New creates a Gate over the classifier and resolver.
func New(classifier *access.Classifier, resolver AccessResolver, opts ...Option) *Gate {
	if classifier == nil {
		panic("gate: nil classifier")
	}
	if resolver == nil {
		panic("gate: nil resolver")
	}

	g := &Gate{
		classifier: classifier,
		resolver:   resolver,
		policy:     access.DefaultRedirectPolicy(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("gate"))
	return g
}

// Authorize decides whether subjectID may see path.
//
// Open routes allow immediately without resolving anything, so the resolver
// and its backing store see zero traffic from public pages. Anonymous
// subjects on protected routes go to sign-in carrying the original path;
// known subjects below the required tier go to the upgrade page. If
// resolution fails in a way the resolver could not absorb, or authorization
// panics, the gate denies with the error redirect: protected content is
// never served on a broken decision path.
func (g *Gate) Authorize(ctx context.Context, path, subjectID string) (decision Decision) {
	required := g.classifier.Required(path)
	decision = Decision{Required: required}

	defer func() {
		if r := recover(); r != nil {
			g.log.ErrorContext(ctx, "authorization panicked, failing closed",
				slog.Any("panic", r), logger.Path(path), logger.UserID(subjectID))
			decision = g.errorDecision(required)
		}
		g.record(required, decision)
	}()

	if required == access.LevelOpen {
		decision.Allow = true
		decision.UserLevel = access.LevelOpen
		return decision
	}

	resolved, err := g.resolver.Resolve(ctx, subjectID)
	if err != nil {
		g.log.ErrorContext(ctx, "access resolution failed, failing closed",
			logger.Error(err), logger.Path(path), logger.UserID(subjectID))
		return g.errorDecision(required)
	}
	decision.UserLevel = resolved.Level

	if resolved.Level.Satisfies(required) {
		decision.Allow = true
		return decision
	}

	if subjectID == "" {
		decision.Reason = ReasonLoginRequired
		decision.RedirectURL = g.policy.RedirectURL(access.LevelFree, path)
	} else {
		decision.Reason = ReasonUpgradeRequired
		decision.RedirectURL = g.policy.RedirectURL(required, path)
	}

	g.log.InfoContext(ctx, "access denied",
		logger.Path(path), logger.UserID(subjectID),
		logger.Required(required.String()), logger.Level(resolved.Level.String()),
		logger.Reason(string(decision.Reason)))
	return decision
}

func (g *Gate) errorDecision(required access.Level) Decision {
	return Decision{
		Required:    required,
		RedirectURL: g.policy.ErrorRedirectURL(),
		Reason:      ReasonError,
	}
}

func (g *Gate) record(required access.Level, d Decision) {
	if g.rec == nil {
		return
	}
	outcome := "allowed"
	if !d.Allow {
		outcome = string(d.Reason)
	}
	g.rec.Decision(required.String(), outcome)
}
