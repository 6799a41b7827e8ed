package repository

import (
	"context"
	"fmt"
	"time"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReceivableRepository struct {
	db *sqlx.DB
}

func NewReceivableRepository(db *sqlx.DB) *ReceivableRepository {
	return &ReceivableRepository{db: db}
}

func (r *ReceivableRepository) CreateTx(tx *sqlx.Tx, ar *models.AccountsReceivable) error {
	if ar.ID == uuid.Nil {
		ar.ID = uuid.New()
	}
	if ar.CreatedAt.IsZero() {
		ar.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO accounts_receivable (
			id, association_id, property_id, billing_run_id, source_receivable_id,
			charge_type, description, original_amount, paid_amount, current_balance,
			due_date, status, created_at
		) VALUES (
			:id, :association_id, :property_id, :billing_run_id, :source_receivable_id,
			:charge_type, :description, :original_amount, :paid_amount, :current_balance,
			:due_date, :status, :created_at
		)`
	if _, err := tx.NamedExec(query, ar); err != nil {
		return fmt.Errorf("failed to create receivable in transaction: %w", err)
	}

	return nil
}

// GetOpenByPropertyForUpdate loads the property's unpaid receivables in
// ascending due-date order and locks the rows for the duration of the
// transaction, so concurrent payments cannot race on the same balances.
func (r *ReceivableRepository) GetOpenByPropertyForUpdate(tx *sqlx.Tx, propertyID uuid.UUID) ([]models.AccountsReceivable, error) {
	var receivables []models.AccountsReceivable
	query := `
		SELECT id, association_id, property_id, billing_run_id, source_receivable_id,
			charge_type, description, original_amount, paid_amount, current_balance,
			due_date, status, created_at
		FROM accounts_receivable
		WHERE property_id = $1 AND status IN ('open', 'partial') AND current_balance > 0
		ORDER BY due_date ASC, created_at ASC
		FOR UPDATE`
	if err := tx.Select(&receivables, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to lock open receivables for property: %w", err)
	}

	return receivables, nil
}

// ApplyAllocationTx moves an allocated amount from balance to paid on one
// receivable row.
func (r *ReceivableRepository) ApplyAllocationTx(tx *sqlx.Tx, id uuid.UUID, paidAmount, currentBalance float64, status models.ReceivableStatus) error {
	query := `
		UPDATE accounts_receivable
		SET paid_amount = $2, current_balance = $3, status = $4
		WHERE id = $1`
	if _, err := tx.Exec(query, id, paidAmount, currentBalance, status); err != nil {
		return fmt.Errorf("failed to apply allocation to receivable: %w", err)
	}

	return nil
}

// GetOpenPastDue returns unpaid receivables whose due date is before asOf,
// assessments only (late fees do not accrue on late fees).
func (r *ReceivableRepository) GetOpenPastDue(ctx context.Context, associationID string, asOf time.Time) ([]models.AccountsReceivable, error) {
	var receivables []models.AccountsReceivable
	query := `
		SELECT id, association_id, property_id, billing_run_id, source_receivable_id,
			charge_type, description, original_amount, paid_amount, current_balance,
			due_date, status, created_at
		FROM accounts_receivable
		WHERE association_id = $1
			AND status IN ('open', 'partial')
			AND charge_type = 'assessment'
			AND due_date < $2
		ORDER BY due_date ASC`
	if err := r.db.SelectContext(ctx, &receivables, query, associationID, asOf); err != nil {
		return nil, fmt.Errorf("failed to get past-due receivables: %w", err)
	}

	return receivables, nil
}

// GetOpenByAssociation returns every unpaid receivable with a positive
// balance for the association, used by the aging report.
func (r *ReceivableRepository) GetOpenByAssociation(ctx context.Context, associationID string) ([]models.AccountsReceivable, error) {
	var receivables []models.AccountsReceivable
	query := `
		SELECT id, association_id, property_id, billing_run_id, source_receivable_id,
			charge_type, description, original_amount, paid_amount, current_balance,
			due_date, status, created_at
		FROM accounts_receivable
		WHERE association_id = $1 AND status IN ('open', 'partial') AND current_balance > 0
		ORDER BY due_date ASC`
	if err := r.db.SelectContext(ctx, &receivables, query, associationID); err != nil {
		return nil, fmt.Errorf("failed to get open receivables: %w", err)
	}

	return receivables, nil
}

// CreateLateFeeTx inserts a late-fee charge row unless one already references
// the same assessment. The partial unique index uq_receivables_late_fee makes
// the insert a no-op on conflict, so two concurrent fee calculations cannot
// double-charge; the return value reports whether a row was written.
func (r *ReceivableRepository) CreateLateFeeTx(tx *sqlx.Tx, ar *models.AccountsReceivable) (bool, error) {
	if ar.ID == uuid.Nil {
		ar.ID = uuid.New()
	}
	if ar.CreatedAt.IsZero() {
		ar.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO accounts_receivable (
			id, association_id, property_id, billing_run_id, source_receivable_id,
			charge_type, description, original_amount, paid_amount, current_balance,
			due_date, status, created_at
		) VALUES (
			:id, :association_id, :property_id, :billing_run_id, :source_receivable_id,
			:charge_type, :description, :original_amount, :paid_amount, :current_balance,
			:due_date, :status, :created_at
		)
		ON CONFLICT (source_receivable_id) WHERE charge_type = 'late_fee' DO NOTHING`
	result, err := tx.NamedExec(query, ar)
	if err != nil {
		return false, fmt.Errorf("failed to create late fee in transaction: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read late fee insert result: %w", err)
	}

	return inserted > 0, nil
}
