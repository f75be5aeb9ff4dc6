package subscription

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Money is a monetary amount in the smallest currency unit.
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// BillingInterval is how often a plan renews.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none"
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Plan is one purchasable tier. ID doubles as the provider's price ID so
// checkout requests and webhook events map back without a lookup table.
type Plan struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       Money           `yaml:"price"`
	Interval    BillingInterval `yaml:"interval"`
	TrialDays   int             `yaml:"trial_days"`
	Public      bool            `yaml:"public"`
}

// PlansSource loads the plan catalog keyed by plan ID.
type PlansSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// YAMLPlansSource reads the catalog from a YAML file:
//
//	plans:
//	  - id: pri_premium_monthly
//	    name: Premium
//	    price: {amount: 1900, currency: USD}
//	    interval: monthly
//	    public: true
type YAMLPlansSource struct {
	Path string
}

func (s YAMLPlansSource) Load(_ context.Context) (map[string]Plan, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Join(ErrLoadPlansFailed, err)
	}

	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrLoadPlansFailed, err)
	}

	plans := make(map[string]Plan, len(doc.Plans))
	for _, p := range doc.Plans {
		plans[p.ID] = p
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// StaticPlansSource serves a fixed catalog, for tests and embedded setups.
type StaticPlansSource map[string]Plan

func (s StaticPlansSource) Load(_ context.Context) (map[string]Plan, error) {
	if err := validatePlans(s); err != nil {
		return nil, err
	}
	return s, nil
}

func validatePlans(plans map[string]Plan) error {
	for id, plan := range plans {
		if plan.ID == "" {
			return errors.Join(ErrInvalidPlanConfig, fmt.Errorf("plan %q has empty ID", id))
		}
		if plan.ID != id {
			return errors.Join(ErrInvalidPlanConfig,
				fmt.Errorf("plan map key %q does not match plan ID %q", id, plan.ID))
		}
		if plan.TrialDays < 0 {
			return errors.Join(ErrInvalidPlanConfig,
				fmt.Errorf("plan %q has negative trial days", id))
		}
		switch plan.Interval {
		case BillingIntervalNone, BillingIntervalMonthly, BillingIntervalAnnual:
		default:
			return errors.Join(ErrInvalidPlanConfig,
				fmt.Errorf("plan %q has unknown interval %q", id, plan.Interval))
		}
	}
	return nil
}
