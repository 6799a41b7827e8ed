package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finance-service/internal/models"
	"finance-service/internal/repository"
	"finance-service/internal/services"
	"finance-service/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// billingService is the billing surface the handler needs; satisfied by
// *services.BillingService.
type billingService interface {
	GenerateBillingRun(ctx context.Context, associationID string, cycleID uuid.UUID, billingDate time.Time) (*models.AssessmentBillingRun, error)
	GetBillingRun(ctx context.Context, runID uuid.UUID) (*models.AssessmentBillingRun, error)
	CreateBillingCycle(ctx context.Context, req *models.CreateBillingCycleRequest) (*models.AssessmentBillingCycle, error)
	ListBillingCycles(ctx context.Context, associationID string) ([]models.AssessmentBillingCycle, error)
	CalculateLateFees(ctx context.Context, associationID string) ([]models.LateFeeCharge, error)
	GetAgingReport(ctx context.Context, associationID string) (*models.AgingReport, error)
}

type BillingHandler struct {
	billingService billingService
}

func NewBillingHandler(billingService billingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) Register(app *fiber.App) {
	protectedGr := app.Group("finance/protected/api/v1")

	billingGroup := protectedGr.Group("/billing")
	billingGroup.Post("/cycles", h.CreateBillingCycle)                   // POST /billing/cycles
	billingGroup.Get("/cycles/:association_id", h.ListBillingCycles)     // GET /billing/cycles/:association_id
	billingGroup.Post("/runs", h.GenerateBillingRun)                     // POST /billing/runs
	billingGroup.Get("/runs/:id", h.GetBillingRun)                       // GET /billing/runs/:id
	billingGroup.Post("/late-fees/:association_id", h.CalculateLateFees) // POST /billing/late-fees/:association_id
	billingGroup.Get("/aging/:association_id", h.GetAgingReport)         // GET /billing/aging/:association_id
}

// CreateBillingCycle registers a billing policy for an association
func (h *BillingHandler) CreateBillingCycle(c fiber.Ctx) error {
	var req models.CreateBillingCycleRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	cycle, err := h.billingService.CreateBillingCycle(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(http.StatusBadRequest).JSON(
				utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
		}
		slog.Error("Failed to create billing cycle", "association_id", req.AssociationID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("CREATE_FAILED", "Failed to create billing cycle"))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(cycle))
}

// ListBillingCycles returns the association's billing cycles
func (h *BillingHandler) ListBillingCycles(c fiber.Ctx) error {
	associationID := c.Params("association_id")
	if associationID == "" {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", "Association ID is required"))
	}

	cycles, err := h.billingService.ListBillingCycles(c.Context(), associationID)
	if err != nil {
		slog.Error("Failed to list billing cycles", "association_id", associationID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to list billing cycles"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(cycles))
}

// GenerateBillingRun starts assessment generation for one cycle and period.
// Failures during generation are captured on the run record itself, so the
// response carries the run in whatever state it finished.
func (h *BillingHandler) GenerateBillingRun(c fiber.Ctx) error {
	var req models.GenerateBillingRunRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	run, err := h.billingService.GenerateBillingRun(c.Context(), req.AssociationID, req.BillingCycleID, req.BillingDate)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Billing cycle not found"))
		case errors.Is(err, repository.ErrDuplicateRun):
			return c.Status(http.StatusConflict).JSON(
				utils.CreateErrorResponse("DUPLICATE_RUN", "A billing run already exists for this period"))
		case errors.Is(err, services.ErrValidation):
			return c.Status(http.StatusBadRequest).JSON(
				utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
		default:
			slog.Error("Failed to generate billing run", "association_id", req.AssociationID,
				"cycle_id", req.BillingCycleID, "error", err)
			return c.Status(http.StatusInternalServerError).JSON(
				utils.CreateErrorResponse("BILLING_FAILED", "Failed to generate billing run"))
		}
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(run))
}

// GetBillingRun returns the run record for status polling
func (h *BillingHandler) GetBillingRun(c fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid billing run ID format"))
	}

	run, err := h.billingService.GetBillingRun(c.Context(), runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Billing run not found"))
		}
		slog.Error("Failed to get billing run", "run_id", runID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve billing run"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(run))
}

// CalculateLateFees assesses late fees on all past-due receivables for an association
func (h *BillingHandler) CalculateLateFees(c fiber.Ctx) error {
	associationID := c.Params("association_id")
	if associationID == "" {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", "Association ID is required"))
	}

	charges, err := h.billingService.CalculateLateFees(c.Context(), associationID)
	if err != nil {
		slog.Error("Failed to calculate late fees", "association_id", associationID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("LATE_FEES_FAILED", "Failed to calculate late fees"))
	}

	slog.Info("Late fees calculated", "association_id", associationID, "charges", len(charges))

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(charges))
}

// GetAgingReport returns open balances bucketed by days past due
func (h *BillingHandler) GetAgingReport(c fiber.Ctx) error {
	associationID := c.Params("association_id")
	if associationID == "" {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", "Association ID is required"))
	}

	report, err := h.billingService.GetAgingReport(c.Context(), associationID)
	if err != nil {
		slog.Error("Failed to build aging report", "association_id", associationID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to build aging report"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(report))
}
