package models

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseOrder struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	AssociationID string     `json:"association_id" db:"association_id"`
	VendorID      string     `json:"vendor_id" db:"vendor_id"`
	PONumber      string     `json:"po_number" db:"po_number"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	IssuedAt      *time.Time `json:"issued_at,omitempty" db:"issued_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	Lines []PurchaseOrderLine `json:"lines,omitempty" db:"-"`
}

type PurchaseOrderLine struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id" db:"purchase_order_id"`
	LineNumber      int       `json:"line_number" db:"line_number"`
	Description     string    `json:"description" db:"description"`
	Quantity        float64   `json:"quantity" db:"quantity"`
	UnitPrice       float64   `json:"unit_price" db:"unit_price"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type Receipt struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	PurchaseOrderID uuid.UUID  `json:"purchase_order_id" db:"purchase_order_id"`
	ReceiptNumber   string     `json:"receipt_number" db:"receipt_number"`
	TotalReceived   float64    `json:"total_received" db:"total_received"`
	ReceivedAt      *time.Time `json:"received_at,omitempty" db:"received_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`

	Lines []ReceiptLine `json:"lines,omitempty" db:"-"`
}

type ReceiptLine struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ReceiptID        uuid.UUID `json:"receipt_id" db:"receipt_id"`
	POLineID         uuid.UUID `json:"po_line_id" db:"po_line_id"`
	QuantityReceived float64   `json:"quantity_received" db:"quantity_received"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

type Invoice struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	VendorID      string     `json:"vendor_id" db:"vendor_id"`
	InvoiceNumber string     `json:"invoice_number" db:"invoice_number"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty" db:"invoice_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	Lines []InvoiceLine `json:"lines,omitempty" db:"-"`
}

type InvoiceLine struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	LineNumber  int       `json:"line_number" db:"line_number"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
