package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialflow/config"
	"socialflow/internal/handler"
	"socialflow/internal/middleware"
	"socialflow/internal/redis"
	"socialflow/internal/repository"
	"socialflow/internal/transport/httpdto"
	"socialflow/internal/websocket"
	"socialflow/pkg/database"
	"socialflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Webhook      *handler.WebhookHandler
	Inbox        *handler.InboxHandler
	Conversation *handler.ConversationHandler
	Reply        *handler.ReplyHandler
	Collab       *handler.CollabHandler
	Automation   *handler.AutomationHandler
	Metrics      *handler.MetricsHandler
	WS           *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, workspaces repository.WorkspaceRepository, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	// Platform ingress: authenticated by signature, not by token.
	webhooks := s.engine.Group("/v1/webhooks")
	if limiter != nil {
		webhooks.Use(middleware.WebhookRateLimitMiddleware(limiter))
	}
	{
		webhooks.GET("/:platform/:accountID", handlers.Webhook.Verify)
		webhooks.POST("/:platform/:accountID", handlers.Webhook.Receive)
	}

	auth := middleware.AuthMiddleware(workspaces, []byte(s.config.JWTSecret))

	ws := s.engine.Group("/v1/workspaces/:workspaceID", auth)
	if limiter != nil {
		ws.Use(middleware.APIRateLimitMiddleware(limiter))
	}
	{
		items := ws.Group("/inbox/items")
		{
			items.GET("", handlers.Inbox.List)
			items.GET("/:id", handlers.Inbox.Get)
			items.POST("/:id/read", handlers.Inbox.MarkRead)
			items.POST("/:id/resolve", handlers.Inbox.Resolve)
			items.POST("/:id/reopen", handlers.Inbox.Reopen)
			items.POST("/:id/archive", handlers.Inbox.Archive)
			items.POST("/:id/assign", handlers.Inbox.Assign)
			items.POST("/:id/unassign", handlers.Inbox.Unassign)
			items.POST("/bulk/read", handlers.Inbox.BulkMarkRead)
			items.POST("/bulk/resolve", handlers.Inbox.BulkResolve)
			items.POST("/bulk/archive", handlers.Inbox.BulkArchive)

			items.POST("/:id/replies", handlers.Reply.Create)
			items.GET("/:id/replies", handlers.Reply.ListByItem)

			items.POST("/:id/notes", handlers.Collab.AddNote)
			items.GET("/:id/notes", handlers.Collab.ListNotes)

			items.GET("/:id/tags", handlers.Collab.ListItemTags)
			items.PUT("/:id/tags/:tagID", handlers.Collab.AttachTag)
			items.DELETE("/:id/tags/:tagID", handlers.Collab.DetachTag)
		}

		ws.DELETE("/inbox/notes/:noteID", handlers.Collab.DeleteNote)

		conversations := ws.Group("/inbox/conversations")
		{
			conversations.GET("", handlers.Conversation.List)
			conversations.GET("/:id", handlers.Conversation.Get)
		}

		tags := ws.Group("/inbox/tags")
		{
			tags.POST("", handlers.Collab.CreateTag)
			tags.GET("", handlers.Collab.ListTags)
		}

		saved := ws.Group("/inbox/saved-replies")
		{
			saved.POST("", handlers.Collab.CreateSavedReply)
			saved.GET("", handlers.Collab.ListSavedReplies)
			saved.POST("/:savedReplyID/use", handlers.Collab.UseSavedReply)
		}

		rules := ws.Group("/automation/rules")
		{
			rules.POST("", handlers.Automation.Create)
			rules.GET("", handlers.Automation.List)
			rules.GET("/:ruleID", handlers.Automation.Get)
			rules.PUT("/:ruleID", handlers.Automation.Update)
			rules.DELETE("/:ruleID", handlers.Automation.Delete)
		}
		ws.POST("/automation/test/:itemID", handlers.Automation.TestEvaluate)

		metrics := ws.Group("/metrics/post-targets")
		{
			metrics.POST("", handlers.Metrics.CreatePostTarget)
			metrics.GET("", handlers.Metrics.ListPostTargets)
			metrics.POST("/:targetID/snapshots", handlers.Metrics.RecordSnapshot)
			metrics.GET("/:targetID/snapshots", handlers.Metrics.ListSnapshots)
		}
	}

	// Websocket upgrade authenticates inside the handler; the auth
	// middleware cannot read headers set by browsers here.
	s.engine.GET("/v1/workspaces/:workspaceID/inbox/ws", handlers.WS.Connect)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
