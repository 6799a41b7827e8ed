package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a lookup by identifier resolves no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateRun is returned when a billing run already exists for the
// same association, cycle and period (unique constraint uq_billing_runs_period).
var ErrDuplicateRun = errors.New("billing run already generated for this period")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
