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

type PropertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	query := `
		SELECT id, association_id, unit_number, owner_id, created_at
		FROM properties
		WHERE id = $1`
	err := r.db.GetContext(ctx, &property, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &property, nil
}

func (r *PropertyRepository) GetByAssociationID(ctx context.Context, associationID string) ([]models.Property, error) {
	var properties []models.Property
	query := `
		SELECT id, association_id, unit_number, owner_id, created_at
		FROM properties
		WHERE association_id = $1
		ORDER BY unit_number ASC`
	if err := r.db.SelectContext(ctx, &properties, query, associationID); err != nil {
		return nil, fmt.Errorf("failed to get properties for association: %w", err)
	}

	return properties, nil
}
