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

type ReceiptRepository struct {
	db *sqlx.DB
}

func NewReceiptRepository(db *sqlx.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	query := `
		SELECT id, purchase_order_id, receipt_number, total_received, received_at, created_at
		FROM receipts
		WHERE id = $1`
	err := r.db.GetContext(ctx, &receipt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	return &receipt, nil
}

// GetWithLines loads a receipt together with its received quantities.
func (r *ReceiptRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	receipt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, receipt_id, po_line_id, quantity_received, created_at
		FROM receipt_lines
		WHERE receipt_id = $1`
	if err := r.db.SelectContext(ctx, &receipt.Lines, query, id); err != nil {
		return nil, fmt.Errorf("failed to get receipt lines: %w", err)
	}

	return receipt, nil
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}

	query := `
		INSERT INTO receipts (id, purchase_order_id, receipt_number, total_received, received_at)
		VALUES (:id, :purchase_order_id, :receipt_number, :total_received, :received_at)`
	if _, err := r.db.NamedExecContext(ctx, query, receipt); err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}

	for i := range receipt.Lines {
		line := &receipt.Lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.ReceiptID = receipt.ID

		lineQuery := `
			INSERT INTO receipt_lines (id, receipt_id, po_line_id, quantity_received)
			VALUES (:id, :receipt_id, :po_line_id, :quantity_received)`
		if _, err := r.db.NamedExecContext(ctx, lineQuery, line); err != nil {
			return fmt.Errorf("failed to create receipt line: %w", err)
		}
	}

	return nil
}
