package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/aulakit/aulakit/pkg/access"
)

// Status is the lifecycle state of a subscription as reported by the
// billing provider.
type Status string

const (
	StatusTrialing  Status = "trialing"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Entitles reports whether the status grants paid-tier access. Trialing
// counts: trial users see premium content until the trial resolves.
func (s Status) Entitles() bool {
	return s == StatusActive || s == StatusTrialing
}

// Access is the resolved entitlement for one subject.
type Access struct {
	Level                 access.Level
	HasActiveSubscription bool
}

// Record is the raw lookup result before tier derivation. Found reports
// whether the subject has a profile at all; Status is empty when the profile
// exists but carries no subscription.
type Record struct {
	Found             bool
	Status            Status
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// deriveAccess maps a lookup record onto an access level. A paying or
// trialing subscriber gets PREMIUM, any other known profile gets FREE, and
// an unknown subject gets OPEN.
func deriveAccess(rec Record) Access {
	if !rec.Found {
		return Access{Level: access.LevelOpen}
	}
	if rec.Status.Entitles() {
		return Access{Level: access.LevelPremium, HasActiveSubscription: true}
	}
	return Access{Level: access.LevelFree}
}

// Subscription is the persisted billing state for one user.
type Subscription struct {
	ID                uuid.UUID
	UserID            string
	PlanID            string
	Status            Status
	ProviderSubID     string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CancelledAt       *time.Time
}

// IsActive reports whether the subscription currently entitles access.
func (s *Subscription) IsActive() bool {
	return s.Status.Entitles()
}

// CheckoutOptions carries optional checkout session parameters.
type CheckoutOptions struct {
	Email      string
	SuccessURL string
	CancelURL  string
}
