package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialflow/config"
	"socialflow/internal/adapter"
	"socialflow/internal/automation"
	"socialflow/internal/domain/job"
	"socialflow/internal/repository"
	"socialflow/internal/services"
	"socialflow/internal/storage"
	"socialflow/internal/workers"
	"socialflow/pkg/database"
	"socialflow/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)

	itemRepo := repository.NewInboxItemRepository(database.DB)
	accountRepo := repository.NewAccountRepository(database.DB)
	replyRepo := repository.NewReplyRepository(database.DB)
	collabRepo := repository.NewCollabRepository(database.DB)
	automationRepo := repository.NewAutomationRepository(database.DB)
	metricsRepo := repository.NewMetricsRepository(database.DB)
	notificationRepo := repository.NewNotificationRepository(database.DB)
	jobRepo := repository.NewJobRepository(database.DB)

	engine := automation.NewEngine(automationRepo, itemRepo, collabRepo, replyRepo, notificationRepo, jobRepo, l)

	dispatchTimeout := time.Duration(cfg.PlatformTimeoutSec) * time.Second
	replyService := services.NewReplyService(
		replyRepo, itemRepo, accountRepo, notificationRepo, jobRepo,
		adapter.DefaultReplyRegistry(dispatchTimeout),
		nil, l, dispatchTimeout,
	)
	metricsService := services.NewMetricsService(metricsRepo, l)

	pool := workers.NewPool(
		jobRepo,
		time.Duration(cfg.WorkerPollMs)*time.Millisecond,
		cfg.WorkerBatchSize,
		cfg.WorkerMaxRetries,
		l,
	)
	pool.Register(job.TypeAutomationEvaluate, workers.NewAutomationHandler(engine, itemRepo, l))
	pool.Register(job.TypeReplyDispatch, workers.NewReplyDispatchHandler(replyService))
	pool.Register(job.TypeMetricsFetch, workers.NewMetricsHandler(metricsService))
	pool.Register(job.TypeArchiveSweep, workers.NewArchiveSweepHandler(
		itemRepo,
		time.Duration(cfg.ArchiveAfterDays)*24*time.Hour,
		cfg.WorkerBatchSize,
		l,
	))
	pool.Register(job.TypeNotificationCreate, workers.NewNotificationHandler(notificationRepo))

	// Raw payload archival only runs when a bucket is configured; the API
	// enqueues those jobs under the same switch.
	if cfg.S3Bucket != "" {
		store, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("Failed to configure payload archive storage: %v", err)
		}
		pool.Register(job.TypePayloadArchive, workers.NewPayloadArchiveHandler(store))
	}

	scheduler := workers.NewSweepScheduler(jobRepo, time.Hour, l)

	pool.Start()
	scheduler.Start()
	l.Infof("Worker started: poll=%dms batch=%d maxRetries=%d", cfg.WorkerPollMs, cfg.WorkerBatchSize, cfg.WorkerMaxRetries)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	l.Infof("Worker shutting down")
	scheduler.Stop()
	pool.Stop()
	l.Infof("Worker stopped gracefully")
}
