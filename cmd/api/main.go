package main

import (
	"context"
	"log"
	"time"

	"socialflow/config"
	"socialflow/internal/adapter"
	"socialflow/internal/automation"
	"socialflow/internal/events"
	"socialflow/internal/handler"
	"socialflow/internal/ingest"
	"socialflow/internal/redis"
	"socialflow/internal/repository"
	"socialflow/internal/server"
	"socialflow/internal/services"
	"socialflow/internal/websocket"
	"socialflow/pkg/database"
	"socialflow/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redis.Ping(pingCtx, redisClient); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	cancelPing()

	bus := events.NewRedisEventBus(redisClient, events.WorkspaceChannelResolver{})
	if err := bus.Start(); err != nil {
		log.Fatalf("Failed to start event bus: %v", err)
	}
	defer bus.Stop()

	// Repositories
	workspaceRepo := repository.NewWorkspaceRepository(database.DB)
	accountRepo := repository.NewAccountRepository(database.DB)
	itemRepo := repository.NewInboxItemRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	replyRepo := repository.NewReplyRepository(database.DB)
	collabRepo := repository.NewCollabRepository(database.DB)
	automationRepo := repository.NewAutomationRepository(database.DB)
	metricsRepo := repository.NewMetricsRepository(database.DB)
	notificationRepo := repository.NewNotificationRepository(database.DB)
	jobRepo := repository.NewJobRepository(database.DB)

	// Services
	pipeline := ingest.NewPipeline(itemRepo, conversationRepo, collabRepo, metricsRepo, jobRepo, bus, l)
	webhookService := services.NewWebhookService(accountRepo, jobRepo, adapter.DefaultRegistry(), pipeline, l, cfg.S3Bucket != "")
	inboxService := services.NewInboxService(itemRepo, conversationRepo, notificationRepo, bus, l)
	replyService := services.NewReplyService(
		replyRepo, itemRepo, accountRepo, notificationRepo, jobRepo,
		adapter.DefaultReplyRegistry(time.Duration(cfg.PlatformTimeoutSec)*time.Second),
		bus, l, time.Duration(cfg.PlatformTimeoutSec)*time.Second,
	)
	collabService := services.NewCollabService(collabRepo, itemRepo, workspaceRepo)
	automationService := services.NewAutomationService(automationRepo)
	metricsService := services.NewMetricsService(metricsRepo, l)
	engine := automation.NewEngine(automationRepo, itemRepo, collabRepo, replyRepo, notificationRepo, jobRepo, l)

	// Websocket fanout
	hub := websocket.NewHub()
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	go hub.Run(hubCtx)
	websocket.NewRedisBridge(bus, hub).Attach()

	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	handlers := &server.Handlers{
		Webhook:      handler.NewWebhookHandler(webhookService, l),
		Inbox:        handler.NewInboxHandler(inboxService),
		Conversation: handler.NewConversationHandler(conversationRepo),
		Reply:        handler.NewReplyHandler(replyService),
		Collab:       handler.NewCollabHandler(collabService),
		Automation:   handler.NewAutomationHandler(automationService, engine, inboxService),
		Metrics:      handler.NewMetricsHandler(metricsService),
		WS:           websocket.NewHandler(workspaceRepo, hub, []byte(cfg.JWTSecret)),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, workspaceRepo, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
