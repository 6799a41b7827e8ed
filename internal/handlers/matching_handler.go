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

type MatchingHandler struct {
	matchingService *services.MatchingService
}

func NewMatchingHandler(matchingService *services.MatchingService) *MatchingHandler {
	return &MatchingHandler{matchingService: matchingService}
}

func (h *MatchingHandler) Register(app *fiber.App) {
	protectedGr := app.Group("finance/protected/api/v1")

	matchGroup := protectedGr.Group("/matching")
	matchGroup.Post("/perform", h.PerformMatch)         // POST /matching/perform
	matchGroup.Get("/detail/:id", h.GetMatch)           // GET /matching/detail/:id
	matchGroup.Post("/:id/approve", h.ApproveMatch)     // POST /matching/:id/approve
	matchGroup.Post("/:id/reject", h.RejectMatch)       // POST /matching/:id/reject
	matchGroup.Post("/:id/override", h.OverrideMatch)   // POST /matching/:id/override
}

// PerformMatch reconciles a PO, receipt and invoice and returns the match outcome
func (h *MatchingHandler) PerformMatch(c fiber.Ctx) error {
	var req models.PerformMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	result, err := h.matchingService.PerformMatch(c.Context(), req.PurchaseOrderID, req.ReceiptID, req.InvoiceID, req.Tolerances)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "One of the referenced documents was not found"))
		}
		slog.Error("Failed to perform three-way match", "po_id", req.PurchaseOrderID,
			"receipt_id", req.ReceiptID, "invoice_id", req.InvoiceID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("MATCH_FAILED", "Failed to perform match"))
	}

	slog.Info("Three-way match performed", "match_id", result.MatchID, "status", result.Status,
		"confidence", result.ConfidenceScore)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

// GetMatch returns a match record with its persisted exception findings
func (h *MatchingHandler) GetMatch(c fiber.Ctx) error {
	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid match ID format"))
	}

	match, exceptions, err := h.matchingService.GetMatch(c.Context(), matchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(
				utils.CreateErrorResponse("NOT_FOUND", "Match not found"))
		}
		slog.Error("Failed to get match", "match_id", matchID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("RETRIEVAL_FAILED", "Failed to retrieve match"))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]interface{}{
		"match":      match,
		"exceptions": exceptions,
	}))
}

// ApproveMatch marks a match approved by the acting user
func (h *MatchingHandler) ApproveMatch(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid match ID format"))
	}

	match, err := h.matchingService.ApproveMatch(c.Context(), matchID, userID)
	if err != nil {
		return h.decisionError(c, "approve", matchID, userID, err)
	}

	slog.Info("Match approved", "match_id", matchID, "approved_by", userID)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(match))
}

// RejectMatch marks a match rejected by the acting user
func (h *MatchingHandler) RejectMatch(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid match ID format"))
	}

	var req models.RejectMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}

	match, err := h.matchingService.RejectMatch(c.Context(), matchID, userID, req.Reason)
	if err != nil {
		return h.decisionError(c, "reject", matchID, userID, err)
	}

	slog.Info("Match rejected", "match_id", matchID, "rejected_by", userID)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(match))
}

// OverrideMatch approves a flagged match with a mandatory justification
func (h *MatchingHandler) OverrideMatch(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	}

	matchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_UUID", "Invalid match ID format"))
	}

	var req models.OverrideMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("INVALID_BODY", "Invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	}

	match, err := h.matchingService.OverrideMatch(c.Context(), matchID, userID, req.Justification)
	if err != nil {
		return h.decisionError(c, "override", matchID, userID, err)
	}

	slog.Info("Match overridden", "match_id", matchID, "overridden_by", userID)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(match))
}

func (h *MatchingHandler) decisionError(c fiber.Ctx, action string, matchID uuid.UUID, userID string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", "Match not found"))
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "User ID is required"))
	case errors.Is(err, services.ErrValidation):
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_FAILED", err.Error()))
	default:
		slog.Error("Failed to decide match", "action", action, "match_id", matchID, "user_id", userID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("DECISION_FAILED", "Failed to update match"))
	}
}
