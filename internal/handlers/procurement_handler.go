package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"finance-service/internal/models"
	"finance-service/internal/repository"
	"finance-service/internal/services"
	"finance-service/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ProcurementHandler struct {
	procurementService *services.ProcurementService
}

func NewProcurementHandler(procurementService *services.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{procurementService: procurementService}
}

func (h *ProcurementHandler) Register(app *fiber.App) {
	protectedGr := app.Group("finance/protected/api/v1")

	protectedGr.Post("/purchase-orders", h.CreatePurchaseOrder) // POST /purchase-orders
	protectedGr.Get("/purchase-orders/:id", h.GetPurchaseOrder) // GET /purchase-orders/:id
	protectedGr.Post("/receipts", h.CreateReceipt)              // POST /receipts
	protectedGr.Get("/receipts/:id", h.GetReceipt)              // GET /receipts/:id
	protectedGr.Post("/invoices", h.CreateInvoice)              // POST /invoices
	protectedGr.Get("/invoices/:id", h.GetInvoice)              // GET /invoices/:id
}

// CreatePurchaseOrder records a purchase order with its line items
func (h *ProcurementHandler) CreatePurchaseOrder(c fiber.Ctx) error {
	var req models.CreatePurchaseOrderRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	po, err := h.procurementService.CreatePurchaseOrder(c.Context(), &req)
	if err != nil {
		slog.Error("Failed to create purchase order", "po_number", req.PONumber, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CREATE_FAILED", "Failed to create purchase order"))
	}

	slog.Info("Purchase order created", "po_id", po.ID, "po_number", po.PONumber)

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(po))
}

// GetPurchaseOrder returns a purchase order with its line items
func (h *ProcurementHandler) GetPurchaseOrder(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid purchase order ID format"))
	}

	po, err := h.procurementService.GetPurchaseOrder(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Purchase order not found"))
		}
		slog.Error("Failed to get purchase order", "po_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve purchase order"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(po))
}

// CreateReceipt records a delivery receipt against an existing purchase order
func (h *ProcurementHandler) CreateReceipt(c fiber.Ctx) error {
	var req models.CreateReceiptRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	receipt, err := h.procurementService.CreateReceipt(c.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Referenced purchase order not found"))
		}
		slog.Error("Failed to create receipt", "receipt_number", req.ReceiptNumber, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CREATE_FAILED", "Failed to create receipt"))
	}

	slog.Info("Receipt created", "receipt_id", receipt.ID, "po_id", receipt.PurchaseOrderID)

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(receipt))
}

// GetReceipt returns a receipt with its received quantities
func (h *ProcurementHandler) GetReceipt(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid receipt ID format"))
	}

	receipt, err := h.procurementService.GetReceipt(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Receipt not found"))
		}
		slog.Error("Failed to get receipt", "receipt_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve receipt"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(receipt))
}

// CreateInvoice records a vendor invoice with its line items
func (h *ProcurementHandler) CreateInvoice(c fiber.Ctx) error {
	var req models.CreateInvoiceRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	invoice, err := h.procurementService.CreateInvoice(c.Context(), &req)
	if err != nil {
		slog.Error("Failed to create invoice", "invoice_number", req.InvoiceNumber, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CREATE_FAILED", "Failed to create invoice"))
	}

	slog.Info("Invoice created", "invoice_id", invoice.ID, "invoice_number", invoice.InvoiceNumber)

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(invoice))
}

// GetInvoice returns an invoice with its line items
func (h *ProcurementHandler) GetInvoice(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid invoice ID format"))
	}

	invoice, err := h.procurementService.GetInvoice(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Invoice not found"))
		}
		slog.Error("Failed to get invoice", "invoice_id", id, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve invoice"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(invoice))
}
