package services

import (
	"testing"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func testTolerances() models.MatchingTolerances {
	return models.MatchingTolerances{
		PriceTolerancePct:    5.0,
		QuantityTolerancePct: 5.0,
		AmountTolerance:      100.0,
		AutoApproveThreshold: 1000.0,
	}
}

// createTestTriple builds a PO, receipt and invoice that reconcile cleanly:
// one line, quantity 10 at unit price matching the given total.
func createTestTriple(vendorID string, poTotal, receiptTotal, invoiceTotal float64) (*models.PurchaseOrder, *models.Receipt, *models.Invoice) {
	poLineID := uuid.New()

	po := &models.PurchaseOrder{
		ID:            uuid.New(),
		AssociationID: "assoc-1",
		VendorID:      vendorID,
		PONumber:      "PO-1001",
		TotalAmount:   poTotal,
		Lines: []models.PurchaseOrderLine{
			{ID: poLineID, LineNumber: 1, Description: "Landscaping services", Quantity: 10, UnitPrice: poTotal / 10},
		},
	}

	receipt := &models.Receipt{
		ID:              uuid.New(),
		PurchaseOrderID: po.ID,
		ReceiptNumber:   "RCV-1001",
		TotalReceived:   receiptTotal,
		Lines: []models.ReceiptLine{
			{ID: uuid.New(), POLineID: poLineID, QuantityReceived: 10},
		},
	}

	invoice := &models.Invoice{
		ID:            uuid.New(),
		VendorID:      vendorID,
		InvoiceNumber: "INV-1001",
		TotalAmount:   invoiceTotal,
		Lines: []models.InvoiceLine{
			{ID: uuid.New(), LineNumber: 1, Description: "Landscaping services", Quantity: 10, UnitPrice: invoiceTotal / 10},
		},
	}

	return po, receipt, invoice
}

func countBySeverity(exceptions []models.MatchingException, severity models.ExceptionSeverity) int {
	count := 0
	for _, exc := range exceptions {
		if exc.Severity == severity {
			count++
		}
	}
	return count
}

// ============================================================================
// TEST SUITE 1: DOCUMENT-LEVEL ANALYSIS
// ============================================================================

func TestAnalyzeDocuments_CleanMatch(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 900, 900, 900)

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Empty(t, analysis.Exceptions)
	assert.Equal(t, models.MatchMatched, analysis.Status)
	assert.Equal(t, 100, analysis.ConfidenceScore)
	assert.True(t, analysis.AutoApproved, "clean match below threshold should auto-approve")
	assert.Equal(t, 0.0, analysis.VarianceAmount)
}

func TestAnalyzeDocuments_VendorMismatchIsCritical(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 900, 900, 900)
	invoice.VendorID = "vendor-2"

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Len(t, analysis.Exceptions, 1)
	assert.Equal(t, models.ExceptionVendor, analysis.Exceptions[0].ExceptionType)
	assert.Equal(t, models.SeverityCritical, analysis.Exceptions[0].Severity)
	assert.Equal(t, models.MatchException, analysis.Status)
	assert.NotEqual(t, models.MatchMatched, analysis.Status)
	assert.False(t, analysis.AutoApproved)
	assert.Equal(t, 60, analysis.ConfidenceScore)
}

func TestAnalyzeDocuments_SmallVarianceWithinTolerances(t *testing.T) {
	// PO $1000, receipt $1000, invoice $1050: $50 variance is 5% but below
	// the $100 absolute tolerance, so no exception is raised.
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 1000, 1000, 1050)

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Empty(t, analysis.Exceptions)
	assert.Equal(t, models.MatchMatched, analysis.Status)
	assert.Equal(t, 100, analysis.ConfidenceScore)
	assert.Equal(t, 50.0, analysis.VarianceAmount)
	assert.False(t, analysis.AutoApproved, "total above the auto-approve threshold")
}

func TestAnalyzeDocuments_MaterialVarianceFlagged(t *testing.T) {
	// Invoice $1200 against PO/receipt $1000: exceeds both the absolute and
	// the percentage tolerance (16.7% of the largest total).
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 1000, 1000, 1200)

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.NotEmpty(t, analysis.Exceptions)
	assert.Equal(t, models.MatchManualReview, analysis.Status)
	assert.False(t, analysis.AutoApproved)
	assert.Less(t, analysis.ConfidenceScore, 100)
	assert.Equal(t, 200.0, analysis.VarianceAmount)

	// Both header comparisons (PO vs invoice, receipt vs invoice) fire at
	// high severity, and the 20% unit-price drift fires as well.
	assert.Equal(t, 2, countByType(analysis.Exceptions, models.ExceptionAmount))
	assert.Equal(t, 1, countByType(analysis.Exceptions, models.ExceptionPrice))
}

func TestAnalyzeDocuments_HeaderSeverityEscalatesAboveTenPercent(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 2000, 2000, 2160)
	// Keep lines consistent so only the header check fires.
	invoice.Lines[0].UnitPrice = po.Lines[0].UnitPrice
	invoice.Lines[0].Quantity = 10

	// $160 variance on $2160 is 7.4%: above the 5% tolerance, below the 10%
	// escalation point.
	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Equal(t, 2, len(analysis.Exceptions))
	assert.Equal(t, 2, countBySeverity(analysis.Exceptions, models.SeverityMedium))
	assert.Equal(t, models.MatchManualReview, analysis.Status)
}

// ============================================================================
// TEST SUITE 2: LINE-LEVEL ANALYSIS
// ============================================================================

func TestAnalyzeDocuments_MissingInvoiceLine(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 900, 900, 900)
	po.Lines = append(po.Lines, models.PurchaseOrderLine{
		ID: uuid.New(), LineNumber: 2, Description: "Pool maintenance", Quantity: 4, UnitPrice: 25,
	})

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Len(t, analysis.Exceptions, 1)
	assert.Equal(t, models.ExceptionMissingDocument, analysis.Exceptions[0].ExceptionType)
	assert.Equal(t, models.SeverityMedium, analysis.Exceptions[0].Severity)
	assert.Equal(t, models.MatchManualReview, analysis.Status)
	assert.Equal(t, 85, analysis.ConfidenceScore)
}

func TestAnalyzeDocuments_QuantityVarianceEscalation(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 1000, 1000, 1000)
	// Received 10, invoiced 12: 16.7% variance, above the 10% escalation.
	invoice.Lines[0].Quantity = 12
	invoice.Lines[0].UnitPrice = po.Lines[0].UnitPrice

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Equal(t, 1, countByType(analysis.Exceptions, models.ExceptionQuantity))
	assert.Equal(t, 1, countBySeverity(analysis.Exceptions, models.SeverityHigh))
}

func TestAnalyzeDocuments_PriceVarianceMediumBelowFifteenPercent(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 1000, 1000, 1000)
	// PO unit price 100, invoiced 110: 10% variance, medium severity.
	invoice.Lines[0].UnitPrice = 110

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Equal(t, 1, countByType(analysis.Exceptions, models.ExceptionPrice))
	assert.Equal(t, 1, countBySeverity(analysis.Exceptions, models.SeverityMedium))
	assert.Equal(t, 85, analysis.ConfidenceScore)
}

func TestAnalyzeDocuments_ReceiptQuantitiesSummedAcrossLines(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 1000, 1000, 1000)
	// Two partial deliveries against the same PO line add up to the
	// invoiced quantity.
	poLineID := po.Lines[0].ID
	receipt.Lines = []models.ReceiptLine{
		{ID: uuid.New(), POLineID: poLineID, QuantityReceived: 6},
		{ID: uuid.New(), POLineID: poLineID, QuantityReceived: 4},
	}

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Empty(t, analysis.Exceptions)
	assert.Equal(t, models.MatchMatched, analysis.Status)
}

func TestFindInvoiceLine_MatchesByDescriptionSimilarity(t *testing.T) {
	poLine := models.PurchaseOrderLine{LineNumber: 7, Description: "Landscaping services"}
	invoiceLines := []models.InvoiceLine{
		{LineNumber: 1, Description: "Elevator inspection", UnitPrice: 300},
		{LineNumber: 2, Description: "Landscaping service", UnitPrice: 50},
	}

	matched := findInvoiceLine(poLine, invoiceLines)

	assert.NotNil(t, matched)
	assert.Equal(t, 2, matched.LineNumber)
}

func TestFindInvoiceLine_NoMatchBelowCutoff(t *testing.T) {
	poLine := models.PurchaseOrderLine{LineNumber: 3, Description: "Pool maintenance"}
	invoiceLines := []models.InvoiceLine{
		{LineNumber: 1, Description: "Roof repair"},
	}

	assert.Nil(t, findInvoiceLine(poLine, invoiceLines))
}

func TestAnalyzeDocuments_ConfidenceFloorsAtZero(t *testing.T) {
	service := &MatchingService{}
	po, receipt, invoice := createTestTriple("vendor-1", 1000, 1000, 1400)
	invoice.VendorID = "vendor-2"
	invoice.Lines[0].Quantity = 20
	invoice.Lines[0].UnitPrice = 70

	analysis := service.analyzeDocuments(po, receipt, invoice, testTolerances())

	assert.Equal(t, 0, analysis.ConfidenceScore)
	assert.Equal(t, models.MatchException, analysis.Status)
}

// ============================================================================
// TEST SUITE 3: STRING SIMILARITY
// ============================================================================

func TestDescriptionSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, descriptionSimilarity("Landscaping", "landscaping"))
	assert.Equal(t, 1.0, descriptionSimilarity("", ""))
	assert.InDelta(t, 2.0/3.0, descriptionSimilarity("abc", "abd"), 0.001)
	assert.Equal(t, 0.0, descriptionSimilarity("abc", "xyz"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("match", "match"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "gravel"))
	assert.Equal(t, 1, levenshtein("invoice", "invoices"))
}

func countByType(exceptions []models.MatchingException, excType models.ExceptionType) int {
	count := 0
	for _, exc := range exceptions {
		if exc.ExceptionType == excType {
			count++
		}
	}
	return count
}
