package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"finance-service/internal/config"
	"finance-service/internal/event"
	"finance-service/internal/models"
	"finance-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TolerancesFromConfig maps the configured matching defaults onto the
// tolerance struct used per match.
func TolerancesFromConfig(cfg config.MatchingConfig) models.MatchingTolerances {
	return models.MatchingTolerances{
		PriceTolerancePct:    cfg.PriceTolerancePct,
		QuantityTolerancePct: cfg.QuantityTolerancePct,
		AmountTolerance:      cfg.AmountTolerance,
		AutoApproveThreshold: cfg.AutoApproveThreshold,
	}
}

// Severity escalation points for document and line variances.
const (
	amountHighSeverityPct   = 10.0
	quantityHighSeverityPct = 10.0
	priceHighSeverityPct    = 15.0

	// Minimum description similarity for pairing a PO line with an
	// invoice line when line numbers disagree.
	lineMatchSimilarity = 0.8
)

// Confidence deductions per exception severity, floored at zero.
var confidenceDeductions = map[models.ExceptionSeverity]int{
	models.SeverityCritical: 40,
	models.SeverityHigh:     25,
	models.SeverityMedium:   15,
	models.SeverityLow:      5,
}

type MatchingService struct {
	db          *sqlx.DB
	poRepo      *repository.PurchaseOrderRepository
	receiptRepo *repository.ReceiptRepository
	invoiceRepo *repository.InvoiceRepository
	matchRepo   *repository.MatchRepository
	publisher   *event.FinancePublisher
	defaults    models.MatchingTolerances
}

func NewMatchingService(
	db *sqlx.DB,
	poRepo *repository.PurchaseOrderRepository,
	receiptRepo *repository.ReceiptRepository,
	invoiceRepo *repository.InvoiceRepository,
	matchRepo *repository.MatchRepository,
	publisher *event.FinancePublisher,
	defaults models.MatchingTolerances,
) *MatchingService {
	return &MatchingService{
		db:          db,
		poRepo:      poRepo,
		receiptRepo: receiptRepo,
		invoiceRepo: invoiceRepo,
		matchRepo:   matchRepo,
		publisher:   publisher,
		defaults:    defaults,
	}
}

// matchAnalysis is the outcome of comparing the three documents, before
// anything is persisted.
type matchAnalysis struct {
	Exceptions      []models.MatchingException
	Status          models.MatchStatus
	ConfidenceScore int
	VarianceAmount  float64
	AutoApproved    bool
}

// PerformMatch reconciles a purchase order, receipt and invoice, persists
// the match record with its exception findings, and reports the outcome.
// Repeated calls with the same triple create additional match records.
func (s *MatchingService) PerformMatch(ctx context.Context, poID, receiptID, invoiceID uuid.UUID, tolerances *models.MatchingTolerances) (*models.MatchResult, error) {
	po, err := s.poRepo.GetWithLines(ctx, poID)
	if err != nil {
		return nil, err
	}

	receipt, err := s.receiptRepo.GetWithLines(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetWithLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	tol := s.defaults
	if tolerances != nil {
		tol = *tolerances
	}

	analysis := s.analyzeDocuments(po, receipt, invoice, tol)

	match := &models.ThreeWayMatch{
		ID:              uuid.New(),
		PurchaseOrderID: po.ID,
		ReceiptID:       receipt.ID,
		InvoiceID:       invoice.ID,
		Status:          analysis.Status,
		VarianceAmount:  analysis.VarianceAmount,
		ConfidenceScore: analysis.ConfidenceScore,
		AutoApproved:    analysis.AutoApproved,
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin match transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.CreateTx(tx, match); err != nil {
		return nil, err
	}

	for i := range analysis.Exceptions {
		analysis.Exceptions[i].MatchID = match.ID
		if err := s.matchRepo.CreateExceptionTx(tx, &analysis.Exceptions[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match transaction: %w", err)
	}

	s.publishOutcome(ctx, po.AssociationID, match)

	return &models.MatchResult{
		MatchID:         match.ID,
		Status:          match.Status,
		ConfidenceScore: match.ConfidenceScore,
		VarianceAmount:  match.VarianceAmount,
		AutoApproved:    match.AutoApproved,
		Exceptions:      analysis.Exceptions,
	}, nil
}

// analyzeDocuments runs document-level and line-level checks and scores the
// result. It touches no storage, so it can be exercised directly in tests.
func (s *MatchingService) analyzeDocuments(po *models.PurchaseOrder, receipt *models.Receipt, invoice *models.Invoice, tol models.MatchingTolerances) matchAnalysis {
	var exceptions []models.MatchingException

	// Vendor identity must agree between PO and invoice.
	if po.VendorID != invoice.VendorID {
		exceptions = append(exceptions, models.MatchingException{
			ExceptionType: models.ExceptionVendor,
			Severity:      models.SeverityCritical,
			Description: fmt.Sprintf("invoice vendor %s does not match purchase order vendor %s",
				invoice.VendorID, po.VendorID),
		})
	}

	maxTotal := math.Max(po.TotalAmount, math.Max(receipt.TotalReceived, invoice.TotalAmount))
	minTotal := math.Min(po.TotalAmount, math.Min(receipt.TotalReceived, invoice.TotalAmount))

	exceptions = append(exceptions, headerAmountExceptions(po, receipt, invoice, maxTotal, tol)...)
	exceptions = append(exceptions, lineLevelExceptions(po, receipt, invoice, tol)...)

	confidence := 100
	hasCritical := false
	hasHigh := false
	for _, exc := range exceptions {
		confidence -= confidenceDeductions[exc.Severity]
		switch exc.Severity {
		case models.SeverityCritical:
			hasCritical = true
		case models.SeverityHigh:
			hasHigh = true
		}
	}
	if confidence < 0 {
		confidence = 0
	}

	autoApproved := len(exceptions) == 0 && !hasCritical && !hasHigh && maxTotal < tol.AutoApproveThreshold

	status := models.MatchManualReview
	if len(exceptions) == 0 {
		status = models.MatchMatched
	} else if hasCritical {
		status = models.MatchException
	}

	return matchAnalysis{
		Exceptions:      exceptions,
		Status:          status,
		ConfidenceScore: confidence,
		VarianceAmount:  maxTotal - minTotal,
		AutoApproved:    autoApproved,
	}
}

// headerAmountExceptions compares document totals pairwise. A variance is
// flagged only when it exceeds the absolute tolerance AND its percentage of
// the largest document total exceeds the percentage tolerance, so small
// dollar gaps on small documents and rounding noise on large ones both pass.
func headerAmountExceptions(po *models.PurchaseOrder, receipt *models.Receipt, invoice *models.Invoice, maxTotal float64, tol models.MatchingTolerances) []models.MatchingException {
	var exceptions []models.MatchingException

	pairs := []struct {
		label    string
		expected float64
		actual   float64
	}{
		{"purchase order", po.TotalAmount, invoice.TotalAmount},
		{"receipt", receipt.TotalReceived, invoice.TotalAmount},
	}

	for _, pair := range pairs {
		variance := math.Abs(pair.expected - pair.actual)
		if variance == 0 || maxTotal == 0 {
			continue
		}

		pct := variance / maxTotal * 100
		if variance > tol.AmountTolerance && pct > tol.PriceTolerancePct {
			severity := models.SeverityMedium
			if pct > amountHighSeverityPct {
				severity = models.SeverityHigh
			}

			expected := pair.expected
			actual := pair.actual
			variancePct := pct
			exceptions = append(exceptions, models.MatchingException{
				ExceptionType: models.ExceptionAmount,
				Severity:      severity,
				Description: fmt.Sprintf("invoice total %.2f differs from %s total %.2f by %.2f (%.1f%%)",
					pair.actual, pair.label, pair.expected, variance, pct),
				ExpectedValue: &expected,
				ActualValue:   &actual,
				VariancePct:   &variancePct,
			})
		}
	}

	return exceptions
}

// lineLevelExceptions pairs each PO line with receipt quantities and the
// best-matching invoice line and flags quantity and unit-price variances.
func lineLevelExceptions(po *models.PurchaseOrder, receipt *models.Receipt, invoice *models.Invoice, tol models.MatchingTolerances) []models.MatchingException {
	var exceptions []models.MatchingException

	receivedByLine := make(map[uuid.UUID]float64)
	for _, line := range receipt.Lines {
		receivedByLine[line.POLineID] += line.QuantityReceived
	}

	for _, poLine := range po.Lines {
		invLine := findInvoiceLine(poLine, invoice.Lines)
		if invLine == nil {
			exceptions = append(exceptions, models.MatchingException{
				ExceptionType: models.ExceptionMissingDocument,
				Severity:      models.SeverityMedium,
				Description: fmt.Sprintf("no invoice line found for PO line %d (%s)",
					poLine.LineNumber, poLine.Description),
			})
			continue
		}

		received := receivedByLine[poLine.ID]
		if exc := quantityException(poLine, invLine, received, tol); exc != nil {
			exceptions = append(exceptions, *exc)
		}
		if exc := priceException(poLine, invLine, tol); exc != nil {
			exceptions = append(exceptions, *exc)
		}
	}

	return exceptions
}

// findInvoiceLine prefers an exact line-number match, falling back to the
// most similar description at or above the similarity cutoff.
func findInvoiceLine(poLine models.PurchaseOrderLine, invoiceLines []models.InvoiceLine) *models.InvoiceLine {
	for i := range invoiceLines {
		if invoiceLines[i].LineNumber == poLine.LineNumber {
			return &invoiceLines[i]
		}
	}

	var best *models.InvoiceLine
	bestScore := 0.0
	for i := range invoiceLines {
		score := descriptionSimilarity(poLine.Description, invoiceLines[i].Description)
		if score >= lineMatchSimilarity && score > bestScore {
			best = &invoiceLines[i]
			bestScore = score
		}
	}

	return best
}

func quantityException(poLine models.PurchaseOrderLine, invLine *models.InvoiceLine, received float64, tol models.MatchingTolerances) *models.MatchingException {
	base := invLine.Quantity
	if base == 0 {
		base = received
	}
	if base == 0 {
		return nil
	}

	variance := math.Abs(received - invLine.Quantity)
	pct := variance / base * 100
	if pct <= tol.QuantityTolerancePct {
		return nil
	}

	severity := models.SeverityMedium
	if pct > quantityHighSeverityPct {
		severity = models.SeverityHigh
	}

	expected := received
	actual := invLine.Quantity
	variancePct := pct
	return &models.MatchingException{
		ExceptionType: models.ExceptionQuantity,
		Severity:      severity,
		Description: fmt.Sprintf("invoiced quantity %.2f on line %d differs from received quantity %.2f (%.1f%%)",
			invLine.Quantity, poLine.LineNumber, received, pct),
		ExpectedValue: &expected,
		ActualValue:   &actual,
		VariancePct:   &variancePct,
	}
}

func priceException(poLine models.PurchaseOrderLine, invLine *models.InvoiceLine, tol models.MatchingTolerances) *models.MatchingException {
	if poLine.UnitPrice == 0 {
		return nil
	}

	variance := math.Abs(poLine.UnitPrice - invLine.UnitPrice)
	pct := variance / poLine.UnitPrice * 100
	if pct <= tol.PriceTolerancePct {
		return nil
	}

	severity := models.SeverityMedium
	if pct > priceHighSeverityPct {
		severity = models.SeverityHigh
	}

	expected := poLine.UnitPrice
	actual := invLine.UnitPrice
	variancePct := pct
	return &models.MatchingException{
		ExceptionType: models.ExceptionPrice,
		Severity:      severity,
		Description: fmt.Sprintf("invoiced unit price %.4f on line %d differs from PO unit price %.4f (%.1f%%)",
			invLine.UnitPrice, poLine.LineNumber, poLine.UnitPrice, pct),
		ExpectedValue: &expected,
		ActualValue:   &actual,
		VariancePct:   &variancePct,
	}
}

// ApproveMatch marks the match approved by the given actor. This is a
// terminal transition; no further analysis is run.
func (s *MatchingService) ApproveMatch(ctx context.Context, matchID uuid.UUID, actorID string) (*models.ThreeWayMatch, error) {
	return s.decide(ctx, matchID, actorID, models.MatchApproved, nil)
}

// RejectMatch marks the match rejected by the given actor.
func (s *MatchingService) RejectMatch(ctx context.Context, matchID uuid.UUID, actorID, reason string) (*models.ThreeWayMatch, error) {
	var reasonPtr *string
	if strings.TrimSpace(reason) != "" {
		reasonPtr = &reason
	}
	return s.decide(ctx, matchID, actorID, models.MatchRejected, reasonPtr)
}

// OverrideMatch approves the match despite its exceptions. A free-text
// justification is mandatory and the manual-override flag is set.
func (s *MatchingService) OverrideMatch(ctx context.Context, matchID uuid.UUID, actorID, justification string) (*models.ThreeWayMatch, error) {
	if strings.TrimSpace(justification) == "" {
		return nil, fmt.Errorf("override justification is required: %w", ErrValidation)
	}

	match, err := s.decide(ctx, matchID, actorID, models.MatchApproved, &justification)
	if err != nil {
		return nil, err
	}

	return match, nil
}

func (s *MatchingService) decide(ctx context.Context, matchID uuid.UUID, actorID string, status models.MatchStatus, reason *string) (*models.ThreeWayMatch, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("match decision: %w", ErrUnauthenticated)
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	match.Status = status
	match.DecidedBy = &actorID
	match.DecidedAt = &now
	match.OverrideReason = reason
	if reason != nil && status == models.MatchApproved {
		match.ManualOverride = true
	}

	if err := s.matchRepo.UpdateDecision(ctx, match); err != nil {
		return nil, err
	}

	return match, nil
}

// GetMatch returns a match with its persisted exception findings.
func (s *MatchingService) GetMatch(ctx context.Context, matchID uuid.UUID) (*models.ThreeWayMatch, []models.MatchingException, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	exceptions, err := s.matchRepo.GetExceptions(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	return match, exceptions, nil
}

func (s *MatchingService) publishOutcome(ctx context.Context, associationID string, match *models.ThreeWayMatch) {
	if s.publisher == nil {
		return
	}

	eventType := EventTypeForMatch(match)
	if eventType == "" {
		return
	}

	evt := event.FinanceEvent{
		EventType:     eventType,
		AssociationID: associationID,
		Data: map[string]interface{}{
			"match_id":         match.ID.String(),
			"status":           string(match.Status),
			"confidence_score": match.ConfidenceScore,
			"variance_amount":  match.VarianceAmount,
		},
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Error("Failed to publish match outcome event", "match_id", match.ID, "error", err)
	}
}

// EventTypeForMatch maps a fresh match outcome to its notification event,
// empty when no notification is warranted.
func EventTypeForMatch(match *models.ThreeWayMatch) string {
	switch {
	case match.AutoApproved:
		return event.EventMatchAutoApproved
	case match.Status == models.MatchException || match.Status == models.MatchManualReview:
		return event.EventMatchReviewRequired
	default:
		return ""
	}
}
