package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"finance-service/internal/database/redis"
	"finance-service/internal/event"
	"finance-service/internal/models"
	"finance-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BillingService struct {
	db             *sqlx.DB
	cycleRepo      *repository.BillingCycleRepository
	runRepo        *repository.BillingRunRepository
	receivableRepo *repository.ReceivableRepository
	propertyRepo   *repository.PropertyRepository
	pricer         AssessmentPricer
	cache          *redis.Client
	publisher      *event.FinancePublisher

	defaultGraceDays      int
	defaultLateFeePercent float64
	agingCacheTTL         time.Duration
}

func NewBillingService(
	db *sqlx.DB,
	cycleRepo *repository.BillingCycleRepository,
	runRepo *repository.BillingRunRepository,
	receivableRepo *repository.ReceivableRepository,
	propertyRepo *repository.PropertyRepository,
	pricer AssessmentPricer,
	cache *redis.Client,
	publisher *event.FinancePublisher,
	defaultGraceDays int,
	defaultLateFeePercent float64,
	agingCacheTTL time.Duration,
) *BillingService {
	return &BillingService{
		db:                    db,
		cycleRepo:             cycleRepo,
		runRepo:               runRepo,
		receivableRepo:        receivableRepo,
		propertyRepo:          propertyRepo,
		pricer:                pricer,
		cache:                 cache,
		publisher:             publisher,
		defaultGraceDays:      defaultGraceDays,
		defaultLateFeePercent: defaultLateFeePercent,
		agingCacheTTL:         agingCacheTTL,
	}
}

// GenerateBillingRun creates one open receivable per property under the
// association for the billing period starting at billingDate. The run row
// is the audit trail: generation failures are recorded on it as
// status=failed rather than returned as an error, so callers observe the
// outcome by reading the returned run. Only a missing cycle or an already
// generated period fail fast.
func (s *BillingService) GenerateBillingRun(ctx context.Context, associationID string, cycleID uuid.UUID, billingDate time.Time) (*models.AssessmentBillingRun, error) {
	cycle, err := s.cycleRepo.GetByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.AssociationID != associationID {
		return nil, fmt.Errorf("billing cycle %s does not belong to association %s: %w", cycleID, associationID, ErrValidation)
	}

	periodStart := billingDate.Truncate(24 * time.Hour)
	run := &models.AssessmentBillingRun{
		ID:             uuid.New(),
		AssociationID:  associationID,
		BillingCycleID: cycle.ID,
		PeriodStart:    periodStart,
		PeriodEnd:      billingPeriodEnd(periodStart, cycle.Frequency),
		Status:         models.RunPending,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	if err := s.runRepo.MarkRunning(ctx, run.ID, startedAt); err != nil {
		return nil, err
	}
	run.Status = models.RunRunning
	run.StartedAt = &startedAt

	count, total, genErr := s.generateAssessments(ctx, run, cycle, periodStart)
	now := time.Now()
	if genErr != nil {
		detail := genErr.Error()
		if err := s.runRepo.MarkFailed(ctx, run.ID, detail, now); err != nil {
			return nil, err
		}
		run.Status = models.RunFailed
		run.ErrorDetail = &detail
		run.CompletedAt = &now
		slog.Error("Billing run failed", "run_id", run.ID, "association_id", associationID, "error", genErr)
		s.publishRunOutcome(ctx, run, event.EventBillingRunFailed)
		return run, nil
	}

	if err := s.runRepo.MarkCompleted(ctx, run.ID, count, total, now); err != nil {
		return nil, err
	}
	run.Status = models.RunCompleted
	run.AssessmentCount = count
	run.TotalAmount = total
	run.CompletedAt = &now

	slog.Info("Billing run completed", "run_id", run.ID, "association_id", associationID,
		"assessments", count, "total_amount", total)
	s.publishRunOutcome(ctx, run, event.EventBillingRunCompleted)
	s.invalidateAgingCache(ctx, associationID)

	return run, nil
}

// generateAssessments inserts every property's receivable inside a single
// transaction, so a failed run leaves no partial rows behind.
func (s *BillingService) generateAssessments(ctx context.Context, run *models.AssessmentBillingRun, cycle *models.AssessmentBillingCycle, billingDate time.Time) (int, float64, error) {
	properties, err := s.propertyRepo.GetByAssociationID(ctx, run.AssociationID)
	if err != nil {
		return 0, 0, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin billing transaction: %w", err)
	}
	defer tx.Rollback()

	dueDate := billingDate.AddDate(0, 0, cycle.DueDays)
	description := fmt.Sprintf("%s assessment for period starting %s", cycle.Name, billingDate.Format("2006-01-02"))

	count := 0
	total := 0.0
	for _, property := range properties {
		amount, err := s.pricer.PriceFor(ctx, property, *cycle)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to price assessment for property %s: %w", property.ID, err)
		}

		runID := run.ID
		ar := &models.AccountsReceivable{
			AssociationID:  run.AssociationID,
			PropertyID:     property.ID,
			BillingRunID:   &runID,
			ChargeType:     models.ChargeAssessment,
			Description:    &description,
			OriginalAmount: amount,
			PaidAmount:     0,
			CurrentBalance: amount,
			DueDate:        dueDate,
			Status:         models.ReceivableOpen,
		}
		if err := s.receivableRepo.CreateTx(tx, ar); err != nil {
			return 0, 0, err
		}

		count++
		total += amount
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit billing transaction: %w", err)
	}

	return count, total, nil
}

// billingPeriodEnd returns the last day of the billing period, inclusive.
func billingPeriodEnd(start time.Time, frequency models.BillingFrequency) time.Time {
	months := 1
	switch frequency {
	case models.FrequencyQuarterly:
		months = 3
	case models.FrequencySemiannual:
		months = 6
	case models.FrequencyAnnual:
		months = 12
	}

	return start.AddDate(0, months, 0).AddDate(0, 0, -1)
}

// CreateBillingCycle registers a billing policy for an association. Grace
// days and late-fee percentage fall back to the service defaults when left
// unset.
func (s *BillingService) CreateBillingCycle(ctx context.Context, req *models.CreateBillingCycleRequest) (*models.AssessmentBillingCycle, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrValidation)
	}

	cycle := &models.AssessmentBillingCycle{
		ID:             uuid.New(),
		AssociationID:  req.AssociationID,
		Name:           req.Name,
		Frequency:      req.Frequency,
		BillingDay:     req.BillingDay,
		DueDays:        req.DueDays,
		GraceDays:      req.GraceDays,
		LateFeePercent: req.LateFeePercent,
		LateFeeMode:    req.LateFeeMode,
		AutoGenerate:   req.AutoGenerate,
	}
	if cycle.GraceDays == 0 {
		cycle.GraceDays = s.defaultGraceDays
	}
	if cycle.LateFeePercent == 0 {
		cycle.LateFeePercent = s.defaultLateFeePercent
	}
	if cycle.LateFeeMode == "" {
		cycle.LateFeeMode = models.LateFeePercentage
	}

	if err := s.cycleRepo.Create(ctx, cycle); err != nil {
		return nil, err
	}

	slog.Info("Billing cycle created", "cycle_id", cycle.ID, "association_id", cycle.AssociationID,
		"frequency", cycle.Frequency)

	return cycle, nil
}

// ListBillingCycles returns every billing cycle configured for the association.
func (s *BillingService) ListBillingCycles(ctx context.Context, associationID string) ([]models.AssessmentBillingCycle, error) {
	return s.cycleRepo.GetByAssociationID(ctx, associationID)
}

// GetBillingRun exposes the run record so callers can poll its status.
func (s *BillingService) GetBillingRun(ctx context.Context, runID uuid.UUID) (*models.AssessmentBillingRun, error) {
	return s.runRepo.GetByID(ctx, runID)
}

// CalculateLateFees computes late fees for every past-due assessment in the
// association and appends each fee as its own late_fee receivable row, so
// fees show up in the ledger and the aging report without touching the
// original assessment. An assessment that already carries a fee is skipped.
func (s *BillingService) CalculateLateFees(ctx context.Context, associationID string) ([]models.LateFeeCharge, error) {
	now := time.Now()
	overdue, err := s.receivableRepo.GetOpenPastDue(ctx, associationID, now)
	if err != nil {
		return nil, err
	}

	var charges []models.LateFeeCharge
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin late fee transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ar := range overdue {
		charge := lateFeeFor(ar, now, s.defaultGraceDays, s.defaultLateFeePercent)
		if charge == nil {
			continue
		}

		sourceID := ar.ID
		description := fmt.Sprintf("late fee on assessment due %s (%d days late)",
			ar.DueDate.Format("2006-01-02"), charge.DaysLate)
		feeRow := &models.AccountsReceivable{
			AssociationID:      ar.AssociationID,
			PropertyID:         ar.PropertyID,
			SourceReceivableID: &sourceID,
			ChargeType:         models.ChargeLateFee,
			Description:        &description,
			OriginalAmount:     charge.FeeAmount,
			PaidAmount:         0,
			CurrentBalance:     charge.FeeAmount,
			DueDate:            now,
			Status:             models.ReceivableOpen,
		}
		inserted, err := s.receivableRepo.CreateLateFeeTx(tx, feeRow)
		if err != nil {
			return nil, err
		}
		if !inserted {
			// A fee for this assessment already exists, possibly written by
			// a concurrent calculation.
			continue
		}

		charges = append(charges, *charge)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit late fee transaction: %w", err)
	}

	if len(charges) > 0 {
		s.invalidateAgingCache(ctx, associationID)
	}

	return charges, nil
}

// lateFeeFor computes the flat-percentage late fee for one receivable, nil
// when it is still inside the grace period.
func lateFeeFor(ar models.AccountsReceivable, asOf time.Time, graceDays int, feePercent float64) *models.LateFeeCharge {
	daysLate := daysPastDue(ar.DueDate, asOf)
	if daysLate <= graceDays {
		return nil
	}

	return &models.LateFeeCharge{
		ReceivableID: ar.ID,
		PropertyID:   ar.PropertyID,
		DaysLate:     daysLate,
		FeeAmount:    ar.OriginalAmount * feePercent / 100,
	}
}

// daysPastDue is the ceiling of the elapsed time since the due date in
// days; zero or negative means not yet due.
func daysPastDue(dueDate, asOf time.Time) int {
	return int(math.Ceil(asOf.Sub(dueDate).Hours() / 24))
}

// GetAgingReport buckets the association's open balances by days past due.
// Reports are cached briefly; payment application invalidates the cache.
func (s *BillingService) GetAgingReport(ctx context.Context, associationID string) (*models.AgingReport, error) {
	cacheKey := agingCacheKey(associationID)
	if s.cache != nil {
		var cached models.AgingReport
		found, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			slog.Error("Failed to read aging report cache", "association_id", associationID, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	receivables, err := s.receivableRepo.GetOpenByAssociation(ctx, associationID)
	if err != nil {
		return nil, err
	}

	report := buildAgingReport(associationID, receivables, time.Now())

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, report, s.agingCacheTTL); err != nil {
			slog.Error("Failed to cache aging report", "association_id", associationID, "error", err)
		}
	}

	return report, nil
}

// buildAgingReport assigns each balance to exactly one bucket, so bucket
// sums always equal the total open balance.
func buildAgingReport(associationID string, receivables []models.AccountsReceivable, now time.Time) *models.AgingReport {
	report := &models.AgingReport{
		AssociationID: associationID,
		GeneratedAt:   now,
	}

	for _, ar := range receivables {
		if ar.CurrentBalance <= 0 {
			continue
		}

		days := daysPastDue(ar.DueDate, now)
		switch {
		case days <= 30:
			report.Current += ar.CurrentBalance
		case days <= 60:
			report.Days31to60 += ar.CurrentBalance
		case days <= 90:
			report.Days61to90 += ar.CurrentBalance
		case days <= 120:
			report.Days91to120 += ar.CurrentBalance
		default:
			report.Over120 += ar.CurrentBalance
		}
		report.TotalOpen += ar.CurrentBalance
	}

	return report
}

func agingCacheKey(associationID string) string {
	return fmt.Sprintf("finance:aging:%s", associationID)
}

func (s *BillingService) invalidateAgingCache(ctx context.Context, associationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, agingCacheKey(associationID)); err != nil {
		slog.Error("Failed to invalidate aging report cache", "association_id", associationID, "error", err)
	}
}

func (s *BillingService) publishRunOutcome(ctx context.Context, run *models.AssessmentBillingRun, eventType string) {
	if s.publisher == nil {
		return
	}

	evt := event.FinanceEvent{
		EventType:     eventType,
		AssociationID: run.AssociationID,
		Data: map[string]interface{}{
			"run_id":           run.ID.String(),
			"billing_cycle_id": run.BillingCycleID.String(),
			"status":           string(run.Status),
			"assessment_count": run.AssessmentCount,
			"total_amount":     run.TotalAmount,
		},
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Error("Failed to publish billing run event", "run_id", run.ID, "error", err)
	}
}
