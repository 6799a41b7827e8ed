package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AssociationID string    `json:"association_id" db:"association_id"`
	UnitNumber    string    `json:"unit_number" db:"unit_number"`
	OwnerID       string    `json:"owner_id" db:"owner_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// AssessmentBillingCycle is the per-association billing policy: how often
// assessments are generated, when they fall due, and how late fees accrue.
type AssessmentBillingCycle struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	AssociationID  string           `json:"association_id" db:"association_id"`
	Name           string           `json:"name" db:"name"`
	Frequency      BillingFrequency `json:"frequency" db:"frequency"`
	BillingDay     int              `json:"billing_day" db:"billing_day"`
	DueDays        int              `json:"due_days" db:"due_days"`
	GraceDays      int              `json:"grace_days" db:"grace_days"`
	LateFeePercent float64          `json:"late_fee_percent" db:"late_fee_percent"`
	LateFeeMode    LateFeeMode      `json:"late_fee_mode" db:"late_fee_mode"`
	AutoGenerate   bool             `json:"auto_generate" db:"auto_generate"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

type AssessmentBillingRun struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	AssociationID   string           `json:"association_id" db:"association_id"`
	BillingCycleID  uuid.UUID        `json:"billing_cycle_id" db:"billing_cycle_id"`
	PeriodStart     time.Time        `json:"period_start" db:"period_start"`
	PeriodEnd       time.Time        `json:"period_end" db:"period_end"`
	Status          BillingRunStatus `json:"status" db:"status"`
	AssessmentCount int              `json:"assessment_count" db:"assessment_count"`
	TotalAmount     float64          `json:"total_amount" db:"total_amount"`
	ErrorDetail     *string          `json:"error_detail,omitempty" db:"error_detail"`
	StartedAt       *time.Time       `json:"started_at,omitempty" db:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

// AccountsReceivable is one owed amount per property per billing period.
// Rows are never deleted; payment allocation only moves paid_amount and
// current_balance, so original_amount = paid_amount + current_balance holds.
type AccountsReceivable struct {
	ID                 uuid.UUID        `json:"id" db:"id"`
	AssociationID      string           `json:"association_id" db:"association_id"`
	PropertyID         uuid.UUID        `json:"property_id" db:"property_id"`
	BillingRunID       *uuid.UUID       `json:"billing_run_id,omitempty" db:"billing_run_id"`
	SourceReceivableID *uuid.UUID       `json:"source_receivable_id,omitempty" db:"source_receivable_id"`
	ChargeType         ChargeType       `json:"charge_type" db:"charge_type"`
	Description        *string          `json:"description,omitempty" db:"description"`
	OriginalAmount     float64          `json:"original_amount" db:"original_amount"`
	PaidAmount         float64          `json:"paid_amount" db:"paid_amount"`
	CurrentBalance     float64          `json:"current_balance" db:"current_balance"`
	DueDate            time.Time        `json:"due_date" db:"due_date"`
	Status             ReceivableStatus `json:"status" db:"status"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
}

type AssessmentPayment struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PropertyID      uuid.UUID `json:"property_id" db:"property_id"`
	Amount          float64   `json:"amount" db:"amount"`
	Method          string    `json:"method" db:"method"`
	ReferenceNumber *string   `json:"reference_number,omitempty" db:"reference_number"`
	ReceivedAt      time.Time `json:"received_at" db:"received_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type PaymentAllocation struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PaymentID       uuid.UUID `json:"payment_id" db:"payment_id"`
	ReceivableID    uuid.UUID `json:"receivable_id" db:"receivable_id"`
	AllocatedAmount float64   `json:"allocated_amount" db:"allocated_amount"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type AccountCredit struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	AssociationID    string     `json:"association_id" db:"association_id"`
	PropertyID       uuid.UUID  `json:"property_id" db:"property_id"`
	CreditType       CreditType `json:"credit_type" db:"credit_type"`
	Amount           float64    `json:"amount" db:"amount"`
	RemainingBalance float64    `json:"remaining_balance" db:"remaining_balance"`
	SourcePaymentID  *uuid.UUID `json:"source_payment_id,omitempty" db:"source_payment_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// PaymentResult summarises how a received payment was applied.
type PaymentResult struct {
	PaymentID      uuid.UUID           `json:"payment_id"`
	Allocations    []PaymentAllocation `json:"allocations"`
	TotalAllocated float64             `json:"total_allocated"`
	CreditCreated  *AccountCredit      `json:"credit_created,omitempty"`
}

// LateFeeCharge is one computed late fee for an overdue receivable.
type LateFeeCharge struct {
	ReceivableID uuid.UUID `json:"receivable_id"`
	PropertyID   uuid.UUID `json:"property_id"`
	DaysLate     int       `json:"days_late"`
	FeeAmount    float64   `json:"fee_amount"`
}

// AgingReport buckets open balances by how many days past due they are.
// Buckets are disjoint and sum to TotalOpen.
type AgingReport struct {
	AssociationID string    `json:"association_id"`
	Current       float64   `json:"current"`
	Days31to60    float64   `json:"days_31_60"`
	Days61to90    float64   `json:"days_61_90"`
	Days91to120   float64   `json:"days_91_120"`
	Over120       float64   `json:"over_120"`
	TotalOpen     float64   `json:"total_open"`
	GeneratedAt   time.Time `json:"generated_at"`
}
