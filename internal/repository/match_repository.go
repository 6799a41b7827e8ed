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

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) CreateTx(tx *sqlx.Tx, match *models.ThreeWayMatch) error {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO three_way_matches (
			id, purchase_order_id, receipt_id, invoice_id, status,
			variance_amount, confidence_score, auto_approved, manual_override,
			decided_by, decided_at, override_reason, created_at
		) VALUES (
			:id, :purchase_order_id, :receipt_id, :invoice_id, :status,
			:variance_amount, :confidence_score, :auto_approved, :manual_override,
			:decided_by, :decided_at, :override_reason, :created_at
		)`
	if _, err := tx.NamedExec(query, match); err != nil {
		return fmt.Errorf("failed to create match in transaction: %w", err)
	}

	return nil
}

func (r *MatchRepository) CreateExceptionTx(tx *sqlx.Tx, exc *models.MatchingException) error {
	if exc.ID == uuid.Nil {
		exc.ID = uuid.New()
	}
	if exc.CreatedAt.IsZero() {
		exc.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO three_way_match_exceptions (
			id, match_id, exception_type, severity, description,
			expected_value, actual_value, variance_pct, created_at
		) VALUES (
			:id, :match_id, :exception_type, :severity, :description,
			:expected_value, :actual_value, :variance_pct, :created_at
		)`
	if _, err := tx.NamedExec(query, exc); err != nil {
		return fmt.Errorf("failed to create match exception in transaction: %w", err)
	}

	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ThreeWayMatch, error) {
	var match models.ThreeWayMatch
	query := `
		SELECT id, purchase_order_id, receipt_id, invoice_id, status,
			variance_amount, confidence_score, auto_approved, manual_override,
			decided_by, decided_at, override_reason, created_at
		FROM three_way_matches
		WHERE id = $1`
	err := r.db.GetContext(ctx, &match, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return &match, nil
}

func (r *MatchRepository) GetExceptions(ctx context.Context, matchID uuid.UUID) ([]models.MatchingException, error) {
	var exceptions []models.MatchingException
	query := `
		SELECT id, match_id, exception_type, severity, description,
			expected_value, actual_value, variance_pct, created_at
		FROM three_way_match_exceptions
		WHERE match_id = $1
		ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &exceptions, query, matchID); err != nil {
		return nil, fmt.Errorf("failed to get match exceptions: %w", err)
	}

	return exceptions, nil
}

// UpdateDecision stamps a terminal approve/reject/override transition.
func (r *MatchRepository) UpdateDecision(ctx context.Context, match *models.ThreeWayMatch) error {
	query := `
		UPDATE three_way_matches SET
			status = :status,
			manual_override = :manual_override,
			decided_by = :decided_by,
			decided_at = :decided_at,
			override_reason = :override_reason
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, match)
	if err != nil {
		return fmt.Errorf("failed to update match decision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("match %s: %w", match.ID, ErrNotFound)
	}

	return nil
}
