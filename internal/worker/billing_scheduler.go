package worker

import (
	"context"
	"log"
	"time"

	"finance-service/internal/repository"
	"finance-service/internal/services"
)

// BillingScheduler periodically submits billing-run jobs for every cycle
// flagged auto_generate whose billing day matches the current date. The
// billing-run uniqueness constraint makes a duplicate tick harmless.
type BillingScheduler struct {
	Name           string
	Ticker         *time.Ticker
	Pool           *WorkingPool
	cycleRepo      *repository.BillingCycleRepository
	billingService *services.BillingService
}

func NewBillingScheduler(interval time.Duration, pool *WorkingPool, cycleRepo *repository.BillingCycleRepository, billingService *services.BillingService) *BillingScheduler {
	return &BillingScheduler{
		Name:           "billing-run-scheduler",
		Ticker:         time.NewTicker(interval),
		Pool:           pool,
		cycleRepo:      cycleRepo,
		billingService: billingService,
	}
}

func (s *BillingScheduler) Run(ctx context.Context) {
	log.Printf("[Scheduler %s] Running.\n", s.Name)
	defer s.Ticker.Stop()

	for {
		select {
		case <-s.Ticker.C:
			s.submitDueRuns(ctx)

		case <-ctx.Done():
			// The manager signaled a global shutdown
			log.Printf("[Scheduler %s] Shutting down.\n", s.Name)
			return
		}
	}
}

func (s *BillingScheduler) submitDueRuns(ctx context.Context) {
	cycles, err := s.cycleRepo.ListAutoGenerate(ctx)
	if err != nil {
		log.Printf("[Scheduler %s] Failed to list billing cycles: %s\n", s.Name, err)
		return
	}

	today := time.Now()
	for _, cycle := range cycles {
		if cycle.BillingDay != today.Day() {
			continue
		}

		c := cycle
		billingDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		s.Pool.SubmitJob(func(jobCtx context.Context) error {
			run, err := s.billingService.GenerateBillingRun(jobCtx, c.AssociationID, c.ID, billingDate)
			if err != nil {
				return err
			}
			log.Printf("[Scheduler %s] Billing run %s for cycle %s finished with status %s\n",
				s.Name, run.ID, c.ID, run.Status)
			return nil
		})
	}
}
