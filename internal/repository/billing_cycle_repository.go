package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BillingCycleRepository struct {
	db *sqlx.DB
}

func NewBillingCycleRepository(db *sqlx.DB) *BillingCycleRepository {
	return &BillingCycleRepository{db: db}
}

func (r *BillingCycleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AssessmentBillingCycle, error) {
	var cycle models.AssessmentBillingCycle
	query := `
		SELECT id, association_id, name, frequency, billing_day, due_days,
			grace_days, late_fee_percent, late_fee_mode, auto_generate, created_at
		FROM assessment_billing_cycles
		WHERE id = $1`
	err := r.db.GetContext(ctx, &cycle, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("billing cycle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing cycle: %w", err)
	}

	return &cycle, nil
}

func (r *BillingCycleRepository) GetByAssociationID(ctx context.Context, associationID string) ([]models.AssessmentBillingCycle, error) {
	var cycles []models.AssessmentBillingCycle
	query := `
		SELECT id, association_id, name, frequency, billing_day, due_days,
			grace_days, late_fee_percent, late_fee_mode, auto_generate, created_at
		FROM assessment_billing_cycles
		WHERE association_id = $1
		ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &cycles, query, associationID); err != nil {
		return nil, fmt.Errorf("failed to get billing cycles for association: %w", err)
	}

	return cycles, nil
}

// ListAutoGenerate returns every cycle flagged for automatic run generation.
func (r *BillingCycleRepository) ListAutoGenerate(ctx context.Context) ([]models.AssessmentBillingCycle, error) {
	var cycles []models.AssessmentBillingCycle
	query := `
		SELECT id, association_id, name, frequency, billing_day, due_days,
			grace_days, late_fee_percent, late_fee_mode, auto_generate, created_at
		FROM assessment_billing_cycles
		WHERE auto_generate = TRUE`
	if err := r.db.SelectContext(ctx, &cycles, query); err != nil {
		return nil, fmt.Errorf("failed to list auto-generate billing cycles: %w", err)
	}

	return cycles, nil
}

func (r *BillingCycleRepository) Create(ctx context.Context, cycle *models.AssessmentBillingCycle) error {
	if cycle.ID == uuid.Nil {
		cycle.ID = uuid.New()
	}

	query := `
		INSERT INTO assessment_billing_cycles (
			id, association_id, name, frequency, billing_day, due_days,
			grace_days, late_fee_percent, late_fee_mode, auto_generate
		) VALUES (
			:id, :association_id, :name, :frequency, :billing_day, :due_days,
			:grace_days, :late_fee_percent, :late_fee_mode, :auto_generate
		)`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("failed to create billing cycle: %w", err)
	}

	return nil
}
