package services

import (
	"context"

	"finance-service/internal/models"
)

// AssessmentPricer decides what each property owes for a billing period.
// The real pricing rule lives outside this service; implementations may
// look at unit size, assessment schedules or anything else.
type AssessmentPricer interface {
	PriceFor(ctx context.Context, property models.Property, cycle models.AssessmentBillingCycle) (float64, error)
}

// FlatRatePricer charges every property the same amount per period.
type FlatRatePricer struct {
	Amount float64
}

func (p FlatRatePricer) PriceFor(_ context.Context, _ models.Property, _ models.AssessmentBillingCycle) (float64, error) {
	return p.Amount, nil
}
