package services

import (
	"testing"
	"time"

	"finance-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func openReceivable(balance float64, dueDate time.Time) models.AccountsReceivable {
	return models.AccountsReceivable{
		ID:             uuid.New(),
		AssociationID:  "assoc-1",
		PropertyID:     uuid.New(),
		ChargeType:     models.ChargeAssessment,
		OriginalAmount: balance,
		CurrentBalance: balance,
		DueDate:        dueDate,
		Status:         models.ReceivableOpen,
	}
}

// ============================================================================
// TEST SUITE 1: BILLING PERIODS
// ============================================================================

func TestBillingPeriodEnd(t *testing.T) {
	start := day(2026, time.January, 1)

	assert.Equal(t, day(2026, time.January, 31), billingPeriodEnd(start, models.FrequencyMonthly))
	assert.Equal(t, day(2026, time.March, 31), billingPeriodEnd(start, models.FrequencyQuarterly))
	assert.Equal(t, day(2026, time.June, 30), billingPeriodEnd(start, models.FrequencySemiannual))
	assert.Equal(t, day(2026, time.December, 31), billingPeriodEnd(start, models.FrequencyAnnual))
}

func TestBillingPeriodEnd_MidMonthStart(t *testing.T) {
	// A cycle billed on the 15th runs through the 14th of the next month.
	start := day(2026, time.February, 15)
	assert.Equal(t, day(2026, time.March, 14), billingPeriodEnd(start, models.FrequencyMonthly))
}

// ============================================================================
// TEST SUITE 2: LATE FEES
// ============================================================================

func TestLateFeeFor_WithinGracePeriod(t *testing.T) {
	asOf := day(2026, time.March, 20)
	ar := openReceivable(250, day(2026, time.March, 12))

	assert.Nil(t, lateFeeFor(ar, asOf, 10, 5.0), "8 days past due is inside a 10-day grace period")
}

func TestLateFeeFor_GraceBoundaryIsExclusive(t *testing.T) {
	ar := openReceivable(250, day(2026, time.March, 1))

	// Exactly at the grace limit no fee accrues; one day later it does.
	assert.Nil(t, lateFeeFor(ar, day(2026, time.March, 11), 10, 5.0))
	charge := lateFeeFor(ar, day(2026, time.March, 12), 10, 5.0)
	assert.NotNil(t, charge)
	assert.Equal(t, 11, charge.DaysLate)
}

func TestLateFeeFor_PercentOfOriginalAmount(t *testing.T) {
	ar := openReceivable(250, day(2026, time.January, 1))
	ar.PaidAmount = 100
	ar.CurrentBalance = 150

	charge := lateFeeFor(ar, day(2026, time.February, 1), 10, 5.0)

	assert.NotNil(t, charge)
	// The fee is a percentage of the original assessment, not the balance.
	assert.Equal(t, 12.5, charge.FeeAmount)
	assert.Equal(t, ar.ID, charge.ReceivableID)
	assert.Equal(t, ar.PropertyID, charge.PropertyID)
}

func TestDaysPastDue_PartialDayRoundsUp(t *testing.T) {
	due := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, daysPastDue(due, due.Add(6*time.Hour)))
	assert.Equal(t, 3, daysPastDue(due, due.Add(72*time.Hour)))
	assert.Equal(t, 0, daysPastDue(due, due))
	assert.LessOrEqual(t, daysPastDue(due, due.Add(-48*time.Hour)), 0)
}

// ============================================================================
// TEST SUITE 3: AGING REPORT
// ============================================================================

func TestBuildAgingReport_BucketBoundaries(t *testing.T) {
	now := day(2026, time.September, 1)
	receivables := []models.AccountsReceivable{
		openReceivable(100, now.AddDate(0, 0, -10)),  // current
		openReceivable(200, now.AddDate(0, 0, -30)),  // current, boundary
		openReceivable(300, now.AddDate(0, 0, -31)),  // 31-60
		openReceivable(400, now.AddDate(0, 0, -60)),  // 31-60, boundary
		openReceivable(500, now.AddDate(0, 0, -75)),  // 61-90
		openReceivable(600, now.AddDate(0, 0, -100)), // 91-120
		openReceivable(700, now.AddDate(0, 0, -121)), // over 120
	}

	report := buildAgingReport("assoc-1", receivables, now)

	assert.Equal(t, 300.0, report.Current)
	assert.Equal(t, 700.0, report.Days31to60)
	assert.Equal(t, 500.0, report.Days61to90)
	assert.Equal(t, 600.0, report.Days91to120)
	assert.Equal(t, 700.0, report.Over120)
	assert.Equal(t, 2800.0, report.TotalOpen)
}

func TestBuildAgingReport_BucketsSumToTotal(t *testing.T) {
	now := day(2026, time.September, 1)
	receivables := []models.AccountsReceivable{
		openReceivable(125.50, now.AddDate(0, 0, -5)),
		openReceivable(89.25, now.AddDate(0, 0, -45)),
		openReceivable(310.00, now.AddDate(0, 0, -130)),
	}

	report := buildAgingReport("assoc-1", receivables, now)

	sum := report.Current + report.Days31to60 + report.Days61to90 + report.Days91to120 + report.Over120
	assert.InDelta(t, report.TotalOpen, sum, 0.0001)
	assert.Equal(t, "assoc-1", report.AssociationID)
}

func TestBuildAgingReport_SkipsZeroBalances(t *testing.T) {
	now := day(2026, time.September, 1)
	paid := openReceivable(100, now.AddDate(0, 0, -50))
	paid.PaidAmount = 100
	paid.CurrentBalance = 0
	paid.Status = models.ReceivablePaid

	report := buildAgingReport("assoc-1", []models.AccountsReceivable{paid}, now)

	assert.Equal(t, 0.0, report.TotalOpen)
	assert.Equal(t, 0.0, report.Days31to60)
}

func TestBuildAgingReport_FutureDueDatesAreCurrent(t *testing.T) {
	now := day(2026, time.September, 1)
	upcoming := openReceivable(250, now.AddDate(0, 0, 14))

	report := buildAgingReport("assoc-1", []models.AccountsReceivable{upcoming}, now)

	assert.Equal(t, 250.0, report.Current)
	assert.Equal(t, 250.0, report.TotalOpen)
}
