package repository

import (
	"testing"
	"time"

	"finance-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLateFeeRow() *models.AccountsReceivable {
	sourceID := uuid.New()
	return &models.AccountsReceivable{
		AssociationID:      "assoc-1",
		PropertyID:         uuid.New(),
		SourceReceivableID: &sourceID,
		ChargeType:         models.ChargeLateFee,
		OriginalAmount:     12.5,
		CurrentBalance:     12.5,
		DueDate:            time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		Status:             models.ReceivableOpen,
	}
}

func TestReceivableRepository_CreateLateFeeTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReceivableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts_receivable").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	inserted, err := repo.CreateLateFeeTx(tx, testLateFeeRow())

	assert.NoError(t, err)
	assert.True(t, inserted)
}

func TestReceivableRepository_CreateLateFeeTx_AlreadyCharged(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReceivableRepository(db)

	// The conflict clause on uq_receivables_late_fee turns a second charge
	// for the same assessment into a no-op instead of an error, so a
	// concurrent fee calculation cannot double-charge.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO accounts_receivable").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	inserted, err := repo.CreateLateFeeTx(tx, testLateFeeRow())

	assert.NoError(t, err)
	assert.False(t, inserted)
}
