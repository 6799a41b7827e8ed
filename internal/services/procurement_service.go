package services

import (
	"context"

	"finance-service/internal/models"
	"finance-service/internal/repository"

	"github.com/google/uuid"
)

// ProcurementService records the documents the matching engine reconciles:
// purchase orders, delivery receipts and vendor invoices.
type ProcurementService struct {
	poRepo      *repository.PurchaseOrderRepository
	receiptRepo *repository.ReceiptRepository
	invoiceRepo *repository.InvoiceRepository
}

func NewProcurementService(
	poRepo *repository.PurchaseOrderRepository,
	receiptRepo *repository.ReceiptRepository,
	invoiceRepo *repository.InvoiceRepository,
) *ProcurementService {
	return &ProcurementService{
		poRepo:      poRepo,
		receiptRepo: receiptRepo,
		invoiceRepo: invoiceRepo,
	}
}

func (s *ProcurementService) CreatePurchaseOrder(ctx context.Context, req *models.CreatePurchaseOrderRequest) (*models.PurchaseOrder, error) {
	po := &models.PurchaseOrder{
		ID:            uuid.New(),
		AssociationID: req.AssociationID,
		VendorID:      req.VendorID,
		PONumber:      req.PONumber,
		TotalAmount:   req.TotalAmount,
		IssuedAt:      req.IssuedAt,
	}
	for _, line := range req.Lines {
		po.Lines = append(po.Lines, models.PurchaseOrderLine{
			LineNumber:  line.LineNumber,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}

	return po, nil
}

// CreateReceipt records a delivery against an existing purchase order.
func (s *ProcurementService) CreateReceipt(ctx context.Context, req *models.CreateReceiptRequest) (*models.Receipt, error) {
	if _, err := s.poRepo.GetByID(ctx, req.PurchaseOrderID); err != nil {
		return nil, err
	}

	receipt := &models.Receipt{
		ID:              uuid.New(),
		PurchaseOrderID: req.PurchaseOrderID,
		ReceiptNumber:   req.ReceiptNumber,
		TotalReceived:   req.TotalReceived,
		ReceivedAt:      req.ReceivedAt,
	}
	for _, line := range req.Lines {
		receipt.Lines = append(receipt.Lines, models.ReceiptLine{
			POLineID:         line.POLineID,
			QuantityReceived: line.QuantityReceived,
		})
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	return receipt, nil
}

func (s *ProcurementService) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	invoice := &models.Invoice{
		ID:            uuid.New(),
		VendorID:      req.VendorID,
		InvoiceNumber: req.InvoiceNumber,
		TotalAmount:   req.TotalAmount,
		InvoiceDate:   req.InvoiceDate,
	}
	for _, line := range req.Lines {
		invoice.Lines = append(invoice.Lines, models.InvoiceLine{
			LineNumber:  line.LineNumber,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

func (s *ProcurementService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	return s.poRepo.GetWithLines(ctx, id)
}

func (s *ProcurementService) GetReceipt(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	return s.receiptRepo.GetWithLines(ctx, id)
}

func (s *ProcurementService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return s.invoiceRepo.GetWithLines(ctx, id)
}
