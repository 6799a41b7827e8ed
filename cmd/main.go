package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"finance-service/internal/config"
	"finance-service/internal/database/postgres"
	"finance-service/internal/database/redis"
	"finance-service/internal/event"
	"finance-service/internal/handlers"
	"finance-service/internal/repository"
	"finance-service/internal/services"
	"finance-service/internal/worker"

	"github.com/gofiber/fiber/v3"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/hoa", "log", "finance_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		// Repositories capture the handle at construction, so block here
		// until the database is reachable instead of serving requests with
		// a nil handle.
		log.Printf("error connect to database, retrying: %s", err)
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg.Host, cfg.RedisCfg.Port, cfg.RedisCfg.Password, cfg.RedisCfg.DB)
	if err != nil {
		log.Printf("error connect to redis, aging reports will not be cached: %s", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var publisher *event.FinancePublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("error connect to rabbitmq, finance events will not be published: %s", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewFinancePublisher(rabbitConn)
	}

	// Repositories
	poRepo := repository.NewPurchaseOrderRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	cycleRepo := repository.NewBillingCycleRepository(db)
	runRepo := repository.NewBillingRunRepository(db)
	receivableRepo := repository.NewReceivableRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)

	// Services
	matchingService := services.NewMatchingService(db, poRepo, receiptRepo, invoiceRepo, matchRepo, publisher,
		services.TolerancesFromConfig(cfg.MatchingCfg))
	billingService := services.NewBillingService(db, cycleRepo, runRepo, receivableRepo, propertyRepo,
		services.FlatRatePricer{Amount: cfg.BillingCfg.FlatAssessmentAmount},
		redisClient, publisher,
		cfg.BillingCfg.DefaultGraceDays, cfg.BillingCfg.DefaultLateFeePercent,
		time.Duration(cfg.BillingCfg.AgingCacheTTLSeconds)*time.Second)
	paymentService := services.NewPaymentService(db, paymentRepo, receivableRepo, creditRepo, propertyRepo,
		billingService, publisher)
	procurementService := services.NewProcurementService(poRepo, receiptRepo, invoiceRepo)

	// Background generation of automatic billing runs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	pool := worker.NewWorkingPool(2, 16)
	wg.Add(1)
	go pool.Start(ctx, &wg)

	scheduler := worker.NewBillingScheduler(
		time.Duration(cfg.BillingCfg.AutoRunIntervalHours)*time.Hour, pool, cycleRepo, billingService)
	go scheduler.Run(ctx)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Finance service is healthy")
	})

	handlers.NewProcurementHandler(procurementService).Register(app)
	handlers.NewMatchingHandler(matchingService).Register(app)
	handlers.NewBillingHandler(billingService).Register(app)
	handlers.NewPaymentHandler(paymentService).Register(app)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start finance service: %v", err)
	}

	wg.Wait()
}
