package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PerformMatchRequest struct {
	PurchaseOrderID uuid.UUID           `json:"purchase_order_id"`
	ReceiptID       uuid.UUID           `json:"receipt_id"`
	InvoiceID       uuid.UUID           `json:"invoice_id"`
	Tolerances      *MatchingTolerances `json:"tolerances,omitempty"`
}

func (r *PerformMatchRequest) Validate() error {
	if r.PurchaseOrderID == uuid.Nil {
		return fmt.Errorf("purchase_order_id is required")
	}
	if r.ReceiptID == uuid.Nil {
		return fmt.Errorf("receipt_id is required")
	}
	if r.InvoiceID == uuid.Nil {
		return fmt.Errorf("invoice_id is required")
	}
	if t := r.Tolerances; t != nil {
		if t.PriceTolerancePct < 0 || t.QuantityTolerancePct < 0 || t.AmountTolerance < 0 || t.AutoApproveThreshold < 0 {
			return fmt.Errorf("tolerances must not be negative")
		}
	}
	return nil
}

type RejectMatchRequest struct {
	Reason string `json:"reason"`
}

type OverrideMatchRequest struct {
	Justification string `json:"justification"`
}

func (r *OverrideMatchRequest) Validate() error {
	if strings.TrimSpace(r.Justification) == "" {
		return fmt.Errorf("justification is required for an override")
	}
	return nil
}

type GenerateBillingRunRequest struct {
	AssociationID  string    `json:"association_id"`
	BillingCycleID uuid.UUID `json:"billing_cycle_id"`
	BillingDate    time.Time `json:"billing_date"`
}

func (r *GenerateBillingRunRequest) Validate() error {
	if strings.TrimSpace(r.AssociationID) == "" {
		return fmt.Errorf("association_id is required")
	}
	if r.BillingCycleID == uuid.Nil {
		return fmt.Errorf("billing_cycle_id is required")
	}
	if r.BillingDate.IsZero() {
		return fmt.Errorf("billing_date is required")
	}
	return nil
}

type DocumentLineRequest struct {
	LineNumber  int     `json:"line_number"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

func validateDocumentLines(lines []DocumentLineRequest) error {
	if len(lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	for _, line := range lines {
		if line.LineNumber <= 0 {
			return fmt.Errorf("line_number must be positive")
		}
		if line.Quantity < 0 || line.UnitPrice < 0 {
			return fmt.Errorf("line %d: quantity and unit_price must not be negative", line.LineNumber)
		}
	}
	return nil
}

type CreatePurchaseOrderRequest struct {
	AssociationID string                `json:"association_id"`
	VendorID      string                `json:"vendor_id"`
	PONumber      string                `json:"po_number"`
	TotalAmount   float64               `json:"total_amount"`
	IssuedAt      *time.Time            `json:"issued_at,omitempty"`
	Lines         []DocumentLineRequest `json:"lines"`
}

func (r *CreatePurchaseOrderRequest) Validate() error {
	if strings.TrimSpace(r.AssociationID) == "" {
		return fmt.Errorf("association_id is required")
	}
	if strings.TrimSpace(r.VendorID) == "" {
		return fmt.Errorf("vendor_id is required")
	}
	if strings.TrimSpace(r.PONumber) == "" {
		return fmt.Errorf("po_number is required")
	}
	if r.TotalAmount < 0 {
		return fmt.Errorf("total_amount must not be negative")
	}
	return validateDocumentLines(r.Lines)
}

type ReceiptLineRequest struct {
	POLineID         uuid.UUID `json:"po_line_id"`
	QuantityReceived float64   `json:"quantity_received"`
}

type CreateReceiptRequest struct {
	PurchaseOrderID uuid.UUID            `json:"purchase_order_id"`
	ReceiptNumber   string               `json:"receipt_number"`
	TotalReceived   float64              `json:"total_received"`
	ReceivedAt      *time.Time           `json:"received_at,omitempty"`
	Lines           []ReceiptLineRequest `json:"lines"`
}

func (r *CreateReceiptRequest) Validate() error {
	if r.PurchaseOrderID == uuid.Nil {
		return fmt.Errorf("purchase_order_id is required")
	}
	if strings.TrimSpace(r.ReceiptNumber) == "" {
		return fmt.Errorf("receipt_number is required")
	}
	if r.TotalReceived < 0 {
		return fmt.Errorf("total_received must not be negative")
	}
	if len(r.Lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	for _, line := range r.Lines {
		if line.POLineID == uuid.Nil {
			return fmt.Errorf("po_line_id is required on every line")
		}
		if line.QuantityReceived < 0 {
			return fmt.Errorf("quantity_received must not be negative")
		}
	}
	return nil
}

type CreateInvoiceRequest struct {
	VendorID      string                `json:"vendor_id"`
	InvoiceNumber string                `json:"invoice_number"`
	TotalAmount   float64               `json:"total_amount"`
	InvoiceDate   *time.Time            `json:"invoice_date,omitempty"`
	Lines         []DocumentLineRequest `json:"lines"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if strings.TrimSpace(r.VendorID) == "" {
		return fmt.Errorf("vendor_id is required")
	}
	if strings.TrimSpace(r.InvoiceNumber) == "" {
		return fmt.Errorf("invoice_number is required")
	}
	if r.TotalAmount < 0 {
		return fmt.Errorf("total_amount must not be negative")
	}
	return validateDocumentLines(r.Lines)
}

type CreateBillingCycleRequest struct {
	AssociationID  string           `json:"association_id"`
	Name           string           `json:"name"`
	Frequency      BillingFrequency `json:"frequency"`
	BillingDay     int              `json:"billing_day"`
	DueDays        int              `json:"due_days"`
	GraceDays      int              `json:"grace_days"`
	LateFeePercent float64          `json:"late_fee_percent"`
	LateFeeMode    LateFeeMode      `json:"late_fee_mode"`
	AutoGenerate   bool             `json:"auto_generate"`
}

func (r *CreateBillingCycleRequest) Validate() error {
	if strings.TrimSpace(r.AssociationID) == "" {
		return fmt.Errorf("association_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch r.Frequency {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual:
	default:
		return fmt.Errorf("frequency must be one of monthly, quarterly, semiannual, annual")
	}
	if r.BillingDay < 1 || r.BillingDay > 28 {
		return fmt.Errorf("billing_day must be between 1 and 28")
	}
	if r.DueDays < 0 || r.GraceDays < 0 || r.LateFeePercent < 0 {
		return fmt.Errorf("due_days, grace_days and late_fee_percent must not be negative")
	}
	return nil
}

type ApplyPaymentRequest struct {
	PropertyID      uuid.UUID `json:"property_id"`
	Amount          float64   `json:"amount"`
	Method          string    `json:"method"`
	ReferenceNumber *string   `json:"reference_number,omitempty"`
}

func (r *ApplyPaymentRequest) Validate() error {
	if r.PropertyID == uuid.Nil {
		return fmt.Errorf("property_id is required")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if strings.TrimSpace(r.Method) == "" {
		return fmt.Errorf("method is required")
	}
	return nil
}
