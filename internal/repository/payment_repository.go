package repository

import (
	"fmt"
	"time"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) CreateTx(tx *sqlx.Tx, payment *models.AssessmentPayment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.ReceivedAt.IsZero() {
		payment.ReceivedAt = time.Now()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO assessment_payments (id, property_id, amount, method, reference_number, received_at, created_at)
		VALUES (:id, :property_id, :amount, :method, :reference_number, :received_at, :created_at)`
	if _, err := tx.NamedExec(query, payment); err != nil {
		return fmt.Errorf("failed to create payment in transaction: %w", err)
	}

	return nil
}

func (r *PaymentRepository) CreateAllocationTx(tx *sqlx.Tx, allocation *models.PaymentAllocation) error {
	if allocation.ID == uuid.Nil {
		allocation.ID = uuid.New()
	}
	if allocation.CreatedAt.IsZero() {
		allocation.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO payment_allocations (id, payment_id, receivable_id, allocated_amount, created_at)
		VALUES (:id, :payment_id, :receivable_id, :allocated_amount, :created_at)`
	if _, err := tx.NamedExec(query, allocation); err != nil {
		return fmt.Errorf("failed to create payment allocation in transaction: %w", err)
	}

	return nil
}
