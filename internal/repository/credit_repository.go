package repository

import (
	"context"
	"fmt"
	"time"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CreditRepository struct {
	db *sqlx.DB
}

func NewCreditRepository(db *sqlx.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) CreateTx(tx *sqlx.Tx, credit *models.AccountCredit) error {
	if credit.ID == uuid.Nil {
		credit.ID = uuid.New()
	}
	if credit.CreatedAt.IsZero() {
		credit.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO account_credits (
			id, association_id, property_id, credit_type, amount,
			remaining_balance, source_payment_id, created_at
		) VALUES (
			:id, :association_id, :property_id, :credit_type, :amount,
			:remaining_balance, :source_payment_id, :created_at
		)`
	if _, err := tx.NamedExec(query, credit); err != nil {
		return fmt.Errorf("failed to create account credit in transaction: %w", err)
	}

	return nil
}

func (r *CreditRepository) GetByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]models.AccountCredit, error) {
	var credits []models.AccountCredit
	query := `
		SELECT id, association_id, property_id, credit_type, amount,
			remaining_balance, source_payment_id, created_at
		FROM account_credits
		WHERE property_id = $1
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &credits, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to get credits for property: %w", err)
	}

	return credits, nil
}
