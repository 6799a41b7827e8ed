package repository

import (
	"context"
	"testing"
	"time"

	"finance-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func testBillingRun() *models.AssessmentBillingRun {
	return &models.AssessmentBillingRun{
		ID:             uuid.New(),
		AssociationID:  "assoc-1",
		BillingCycleID: uuid.New(),
		PeriodStart:    time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC),
		Status:         models.RunPending,
	}
}

func TestBillingRunRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillingRunRepository(db)

	mock.ExpectExec("INSERT INTO assessment_billing_runs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), testBillingRun())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillingRunRepository_Create_DuplicatePeriod(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillingRunRepository(db)

	// A second run for the same (association, cycle, period_start) trips
	// uq_billing_runs_period and must surface as ErrDuplicateRun.
	mock.ExpectExec("INSERT INTO assessment_billing_runs").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_billing_runs_period"})

	err := repo.Create(context.Background(), testBillingRun())

	assert.ErrorIs(t, err, ErrDuplicateRun)
	assert.NoError(t, mock.ExpectationsWereMet())
}
