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

type PurchaseOrderRepository struct {
	db *sqlx.DB
}

func NewPurchaseOrderRepository(db *sqlx.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	query := `
		SELECT id, association_id, vendor_id, po_number, total_amount, issued_at, created_at
		FROM purchase_orders
		WHERE id = $1`
	err := r.db.GetContext(ctx, &po, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("purchase order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	return &po, nil
}

// GetWithLines loads a purchase order together with its line items ordered
// by line number.
func (r *PurchaseOrderRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, purchase_order_id, line_number, description, quantity, unit_price, created_at
		FROM purchase_order_lines
		WHERE purchase_order_id = $1
		ORDER BY line_number ASC`
	if err := r.db.SelectContext(ctx, &po.Lines, query, id); err != nil {
		return nil, fmt.Errorf("failed to get purchase order lines: %w", err)
	}

	return po, nil
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *models.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}

	query := `
		INSERT INTO purchase_orders (id, association_id, vendor_id, po_number, total_amount, issued_at)
		VALUES (:id, :association_id, :vendor_id, :po_number, :total_amount, :issued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, po); err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	for i := range po.Lines {
		line := &po.Lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.PurchaseOrderID = po.ID

		lineQuery := `
			INSERT INTO purchase_order_lines (id, purchase_order_id, line_number, description, quantity, unit_price)
			VALUES (:id, :purchase_order_id, :line_number, :description, :quantity, :unit_price)`
		if _, err := r.db.NamedExecContext(ctx, lineQuery, line); err != nil {
			return fmt.Errorf("failed to create purchase order line %d: %w", line.LineNumber, err)
		}
	}

	return nil
}
