package services

import (
	"testing"
	"time"

	"finance-service/internal/models"

	"github.com/stretchr/testify/assert"
)

// Open receivables ordered oldest due date first, the way the repository
// loads them for allocation.
func orderedReceivables(balances ...float64) []models.AccountsReceivable {
	receivables := make([]models.AccountsReceivable, 0, len(balances))
	due := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, balance := range balances {
		receivables = append(receivables, openReceivable(balance, due.AddDate(0, i, 0)))
	}
	return receivables
}

func TestBuildAllocationPlan_ExactPayoff(t *testing.T) {
	receivables := orderedReceivables(200, 300)

	plan, remainder := buildAllocationPlan(500, receivables)

	assert.Len(t, plan, 2)
	assert.Equal(t, 0.0, remainder)
	for _, step := range plan {
		assert.Equal(t, models.ReceivablePaid, step.NewStatus)
		assert.Equal(t, 0.0, step.NewBalance)
	}
}

func TestBuildAllocationPlan_PartialOldestFirst(t *testing.T) {
	// $350 against a $200 January assessment and a $300 February assessment:
	// January is paid in full, February takes the remaining $150.
	receivables := orderedReceivables(200, 300)

	plan, remainder := buildAllocationPlan(350, receivables)

	assert.Len(t, plan, 2)
	assert.Equal(t, 0.0, remainder)

	assert.Equal(t, receivables[0].ID, plan[0].ReceivableID)
	assert.Equal(t, 200.0, plan[0].Amount)
	assert.Equal(t, models.ReceivablePaid, plan[0].NewStatus)

	assert.Equal(t, receivables[1].ID, plan[1].ReceivableID)
	assert.Equal(t, 150.0, plan[1].Amount)
	assert.Equal(t, 150.0, plan[1].NewBalance)
	assert.Equal(t, models.ReceivablePartial, plan[1].NewStatus)
}

func TestBuildAllocationPlan_OverpaymentBecomesRemainder(t *testing.T) {
	receivables := orderedReceivables(200, 300)

	plan, remainder := buildAllocationPlan(600, receivables)

	assert.Len(t, plan, 2)
	assert.Equal(t, 100.0, remainder)
}

func TestBuildAllocationPlan_NoOpenReceivables(t *testing.T) {
	plan, remainder := buildAllocationPlan(250, nil)

	assert.Empty(t, plan)
	assert.Equal(t, 250.0, remainder)
}

func TestBuildAllocationPlan_SkipsZeroBalances(t *testing.T) {
	receivables := orderedReceivables(200, 300)
	receivables[0].PaidAmount = 200
	receivables[0].CurrentBalance = 0

	plan, remainder := buildAllocationPlan(100, receivables)

	assert.Len(t, plan, 1)
	assert.Equal(t, receivables[1].ID, plan[0].ReceivableID)
	assert.Equal(t, 100.0, plan[0].Amount)
	assert.Equal(t, 0.0, remainder)
}

func TestBuildAllocationPlan_ConservesMoney(t *testing.T) {
	receivables := orderedReceivables(120.50, 89.25, 310.00)

	plan, remainder := buildAllocationPlan(400, receivables)

	allocated := 0.0
	for _, step := range plan {
		allocated += step.Amount
		assert.GreaterOrEqual(t, step.NewBalance, 0.0)
	}
	assert.InDelta(t, 400.0, allocated+remainder, 0.0001)
}

func TestBuildAllocationPlan_PaidAmountAccumulates(t *testing.T) {
	receivables := orderedReceivables(300)
	receivables[0].PaidAmount = 50
	receivables[0].CurrentBalance = 250

	plan, _ := buildAllocationPlan(100, receivables)

	assert.Len(t, plan, 1)
	assert.Equal(t, 150.0, plan[0].NewPaid)
	assert.Equal(t, 150.0, plan[0].NewBalance)
	assert.Equal(t, models.ReceivablePartial, plan[0].NewStatus)
}
