package services

import (
	"context"
	"fmt"
	"log/slog"

	"finance-service/internal/event"
	"finance-service/internal/models"
	"finance-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PaymentService struct {
	db             *sqlx.DB
	paymentRepo    *repository.PaymentRepository
	receivableRepo *repository.ReceivableRepository
	creditRepo     *repository.CreditRepository
	propertyRepo   *repository.PropertyRepository
	billingService *BillingService
	publisher      *event.FinancePublisher
}

func NewPaymentService(
	db *sqlx.DB,
	paymentRepo *repository.PaymentRepository,
	receivableRepo *repository.ReceivableRepository,
	creditRepo *repository.CreditRepository,
	propertyRepo *repository.PropertyRepository,
	billingService *BillingService,
	publisher *event.FinancePublisher,
) *PaymentService {
	return &PaymentService{
		db:             db,
		paymentRepo:    paymentRepo,
		receivableRepo: receivableRepo,
		creditRepo:     creditRepo,
		propertyRepo:   propertyRepo,
		billingService: billingService,
		publisher:      publisher,
	}
}

// plannedAllocation is one step of an allocation plan: how much of the
// payment lands on one receivable and what the row looks like afterwards.
type plannedAllocation struct {
	ReceivableID uuid.UUID
	Amount       float64
	NewPaid      float64
	NewBalance   float64
	NewStatus    models.ReceivableStatus
}

// ApplyPayment records a payment and allocates it across the property's
// open receivables oldest-due-date-first inside a single transaction, with
// the affected rows locked. Whatever the open balances cannot absorb
// becomes an overpayment credit.
func (s *PaymentService) ApplyPayment(ctx context.Context, req *models.ApplyPaymentRequest) (*models.PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrValidation)
	}

	property, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer tx.Rollback()

	payment := &models.AssessmentPayment{
		ID:              uuid.New(),
		PropertyID:      property.ID,
		Amount:          req.Amount,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
	}
	if err := s.paymentRepo.CreateTx(tx, payment); err != nil {
		return nil, err
	}

	receivables, err := s.receivableRepo.GetOpenByPropertyForUpdate(tx, property.ID)
	if err != nil {
		return nil, err
	}

	plan, remainder := buildAllocationPlan(req.Amount, receivables)

	result := &models.PaymentResult{PaymentID: payment.ID}
	for _, step := range plan {
		allocation := &models.PaymentAllocation{
			PaymentID:       payment.ID,
			ReceivableID:    step.ReceivableID,
			AllocatedAmount: step.Amount,
		}
		if err := s.paymentRepo.CreateAllocationTx(tx, allocation); err != nil {
			return nil, err
		}
		if err := s.receivableRepo.ApplyAllocationTx(tx, step.ReceivableID, step.NewPaid, step.NewBalance, step.NewStatus); err != nil {
			return nil, err
		}

		result.Allocations = append(result.Allocations, *allocation)
		result.TotalAllocated += step.Amount
	}

	if remainder > 0 {
		paymentID := payment.ID
		credit := &models.AccountCredit{
			AssociationID:    property.AssociationID,
			PropertyID:       property.ID,
			CreditType:       models.CreditOverpayment,
			Amount:           remainder,
			RemainingBalance: remainder,
			SourcePaymentID:  &paymentID,
		}
		if err := s.creditRepo.CreateTx(tx, credit); err != nil {
			return nil, err
		}
		result.CreditCreated = credit
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	s.billingService.invalidateAgingCache(ctx, property.AssociationID)
	s.publishPayment(ctx, property.AssociationID, payment, result)

	return result, nil
}

// buildAllocationPlan walks the receivables in the order given (callers
// load them ascending by due date) and allocates min(remaining, balance)
// to each until the payment is exhausted. The returned remainder is what
// no open balance could absorb. Balances never go negative and the plan
// total never exceeds the payment amount.
func buildAllocationPlan(amount float64, receivables []models.AccountsReceivable) ([]plannedAllocation, float64) {
	var plan []plannedAllocation
	remaining := amount

	for _, ar := range receivables {
		if remaining <= 0 {
			break
		}
		if ar.CurrentBalance <= 0 {
			continue
		}

		alloc := remaining
		if ar.CurrentBalance < alloc {
			alloc = ar.CurrentBalance
		}

		newBalance := ar.CurrentBalance - alloc
		status := models.ReceivablePartial
		if newBalance == 0 {
			status = models.ReceivablePaid
		}

		plan = append(plan, plannedAllocation{
			ReceivableID: ar.ID,
			Amount:       alloc,
			NewPaid:      ar.PaidAmount + alloc,
			NewBalance:   newBalance,
			NewStatus:    status,
		})
		remaining -= alloc
	}

	return plan, remaining
}

// GetCredits returns the property's credits, newest first.
func (s *PaymentService) GetCredits(ctx context.Context, propertyID uuid.UUID) ([]models.AccountCredit, error) {
	if _, err := s.propertyRepo.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	return s.creditRepo.GetByPropertyID(ctx, propertyID)
}

func (s *PaymentService) publishPayment(ctx context.Context, associationID string, payment *models.AssessmentPayment, result *models.PaymentResult) {
	if s.publisher == nil {
		return
	}

	data := map[string]interface{}{
		"payment_id":      payment.ID.String(),
		"property_id":     payment.PropertyID.String(),
		"amount":          payment.Amount,
		"total_allocated": result.TotalAllocated,
	}
	if result.CreditCreated != nil {
		data["credit_amount"] = result.CreditCreated.Amount
	}

	evt := event.FinanceEvent{
		EventType:     event.EventPaymentApplied,
		AssociationID: associationID,
		Data:          data,
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Error("Failed to publish payment event", "payment_id", payment.ID, "error", err)
	}
}
