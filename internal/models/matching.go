package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchingTolerances controls when a variance between documents is flagged.
// Percentages are expressed as whole numbers (5.0 means 5%).
type MatchingTolerances struct {
	PriceTolerancePct    float64 `json:"price_tolerance_pct"`
	QuantityTolerancePct float64 `json:"quantity_tolerance_pct"`
	AmountTolerance      float64 `json:"amount_tolerance"`
	AutoApproveThreshold float64 `json:"auto_approve_threshold"`
}

type ThreeWayMatch struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	PurchaseOrderID uuid.UUID   `json:"purchase_order_id" db:"purchase_order_id"`
	ReceiptID       uuid.UUID   `json:"receipt_id" db:"receipt_id"`
	InvoiceID       uuid.UUID   `json:"invoice_id" db:"invoice_id"`
	Status          MatchStatus `json:"status" db:"status"`
	VarianceAmount  float64     `json:"variance_amount" db:"variance_amount"`
	ConfidenceScore int         `json:"confidence_score" db:"confidence_score"`
	AutoApproved    bool        `json:"auto_approved" db:"auto_approved"`
	ManualOverride  bool        `json:"manual_override" db:"manual_override"`
	DecidedBy       *string     `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt       *time.Time  `json:"decided_at,omitempty" db:"decided_at"`
	OverrideReason  *string     `json:"override_reason,omitempty" db:"override_reason"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// MatchingException is one discrepancy found while comparing the three
// documents. The full list is persisted alongside the match as an audit
// trail of why it was flagged.
type MatchingException struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	MatchID       uuid.UUID         `json:"match_id" db:"match_id"`
	ExceptionType ExceptionType     `json:"exception_type" db:"exception_type"`
	Severity      ExceptionSeverity `json:"severity" db:"severity"`
	Description   string            `json:"description" db:"description"`
	ExpectedValue *float64          `json:"expected_value,omitempty" db:"expected_value"`
	ActualValue   *float64          `json:"actual_value,omitempty" db:"actual_value"`
	VariancePct   *float64          `json:"variance_pct,omitempty" db:"variance_pct"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

// MatchResult is the outcome returned to the caller of a match attempt.
type MatchResult struct {
	MatchID         uuid.UUID           `json:"match_id"`
	Status          MatchStatus         `json:"status"`
	ConfidenceScore int                 `json:"confidence_score"`
	VarianceAmount  float64             `json:"variance_amount"`
	AutoApproved    bool                `json:"auto_approved"`
	Exceptions      []MatchingException `json:"exceptions"`
}
