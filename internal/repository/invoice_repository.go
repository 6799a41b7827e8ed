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

type InvoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	query := `
		SELECT id, vendor_id, invoice_number, total_amount, invoice_date, created_at
		FROM invoices
		WHERE id = $1`
	err := r.db.GetContext(ctx, &invoice, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &invoice, nil
}

// GetWithLines loads an invoice together with its line items ordered by
// line number.
func (r *InvoiceRepository) GetWithLines(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, invoice_id, line_number, description, quantity, unit_price, created_at
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_number ASC`
	if err := r.db.SelectContext(ctx, &invoice.Lines, query, id); err != nil {
		return nil, fmt.Errorf("failed to get invoice lines: %w", err)
	}

	return invoice, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}

	query := `
		INSERT INTO invoices (id, vendor_id, invoice_number, total_amount, invoice_date)
		VALUES (:id, :vendor_id, :invoice_number, :total_amount, :invoice_date)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.InvoiceID = invoice.ID

		lineQuery := `
			INSERT INTO invoice_lines (id, invoice_id, line_number, description, quantity, unit_price)
			VALUES (:id, :invoice_id, :line_number, :description, :quantity, :unit_price)`
		if _, err := r.db.NamedExecContext(ctx, lineQuery, line); err != nil {
			return fmt.Errorf("failed to create invoice line %d: %w", line.LineNumber, err)
		}
	}

	return nil
}
