package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BillingRunRepository struct {
	db *sqlx.DB
}

func NewBillingRunRepository(db *sqlx.DB) *BillingRunRepository {
	return &BillingRunRepository{db: db}
}

// Create inserts a run in pending status. The unique constraint on
// (association_id, billing_cycle_id, period_start) rejects a second run for
// the same period, surfaced as ErrDuplicateRun.
func (r *BillingRunRepository) Create(ctx context.Context, run *models.AssessmentBillingRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO assessment_billing_runs (
			id, association_id, billing_cycle_id, period_start, period_end,
			status, assessment_count, total_amount, error_detail,
			started_at, completed_at, created_at
		) VALUES (
			:id, :association_id, :billing_cycle_id, :period_start, :period_end,
			:status, :assessment_count, :total_amount, :error_detail,
			:started_at, :completed_at, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("run for cycle %s starting %s: %w",
				run.BillingCycleID, run.PeriodStart.Format("2006-01-02"), ErrDuplicateRun)
		}
		return fmt.Errorf("failed to create billing run: %w", err)
	}

	return nil
}

func (r *BillingRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AssessmentBillingRun, error) {
	var run models.AssessmentBillingRun
	query := `
		SELECT id, association_id, billing_cycle_id, period_start, period_end,
			status, assessment_count, total_amount, error_detail,
			started_at, completed_at, created_at
		FROM assessment_billing_runs
		WHERE id = $1`
	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("billing run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing run: %w", err)
	}

	return &run, nil
}

func (r *BillingRunRepository) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	query := `
		UPDATE assessment_billing_runs
		SET status = $2, started_at = $3
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunRunning, startedAt); err != nil {
		return fmt.Errorf("failed to mark billing run running: %w", err)
	}

	return nil
}

func (r *BillingRunRepository) MarkCompleted(ctx context.Context, id uuid.UUID, count int, total float64, completedAt time.Time) error {
	query := `
		UPDATE assessment_billing_runs
		SET status = $2, assessment_count = $3, total_amount = $4, completed_at = $5
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunCompleted, count, total, completedAt); err != nil {
		return fmt.Errorf("failed to mark billing run completed: %w", err)
	}

	return nil
}

// MarkFailed records the failure detail on the run itself. The run row is
// the audit trail of the attempt, so it is never deleted.
func (r *BillingRunRepository) MarkFailed(ctx context.Context, id uuid.UUID, detail string, failedAt time.Time) error {
	query := `
		UPDATE assessment_billing_runs
		SET status = $2, error_detail = $3, completed_at = $4
		WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RunFailed, detail, failedAt); err != nil {
		return fmt.Errorf("failed to mark billing run failed: %w", err)
	}

	return nil
}
