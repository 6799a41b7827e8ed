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

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Register(app *fiber.App) {
	protectedGr := app.Group("finance/protected/api/v1")

	paymentGroup := protectedGr.Group("/payments")
	paymentGroup.Post("/apply", h.ApplyPayment)               // POST /payments/apply
	paymentGroup.Get("/credits/:property_id", h.GetCredits)   // GET /payments/credits/:property_id
}

// GetCredits returns the property's overpayment credits
func (h *PaymentHandler) GetCredits(c fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("property_id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid property ID format"))
	}

	credits, err := h.paymentService.GetCredits(c.Context(), propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Property not found"))
		}
		slog.Error("Failed to get credits", "property_id", propertyID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve credits"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(credits))
}

// ApplyPayment records a payment and allocates it across the property's
// open assessments oldest first
func (h *PaymentHandler) ApplyPayment(c fiber.Ctx) error {
	var req models.ApplyPaymentRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	result, err := h.paymentService.ApplyPayment(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Property not found"))
		case errors.Is(err, services.ErrValidation):
			return c.Status(http.StatusBadRequest).JSON(
				utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
		default:
			slog.Error("Failed to apply payment", "property_id", req.PropertyID, "amount", req.Amount, "error", err)
			return c.Status(http.StatusInternalServerError).JSON(
				utils.CreateErrorResponse("PAYMENT_FAILED", "Failed to apply payment"))
		}
	}

	slog.Info("Payment applied", "payment_id", result.PaymentID, "property_id", req.PropertyID,
		"allocated", result.TotalAllocated)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}
