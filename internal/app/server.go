// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"unihomes_backend/internal/admin"
	"unihomes_backend/internal/agent"
	"unihomes_backend/internal/auth"
	"unihomes_backend/internal/common"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/jobs"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/notification"
	"unihomes_backend/internal/payment"
	"unihomes_backend/internal/platform/elasticsearch"
	"unihomes_backend/internal/roommate"
	"unihomes_backend/internal/shared"
	"unihomes_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Exposed so main can run index bootstrap before serving.
	ESClient  *elasticsearch.ESClientWrapper
	AppLogger *zap.Logger

	dispatcher      notification.Dispatcher
	tokenCleanupJob *jobs.TokenCleanupJob

	dispatcherCancel context.CancelFunc
}

// NewServer wires the router, global middleware and every module's routes.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	listingHandler *listing.Handler,
	roommateHandler *roommate.Handler,
	paymentHandler *payment.Handler,
	adminHandler *admin.Handler,
	agentHandler *agent.Handler,
	notificationHandler *notification.Handler,
	tokenService shared.TokenService,
	userService shared.Service,
	dispatcher notification.Dispatcher,
	tokenCleanupJob *jobs.TokenCleanupJob,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendBaseURL}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, userService, logger.Named("AuthMiddleware"))
	optionalAuthMW := middleware.OptionalAuthMiddleware(tokenService, userService, logger.Named("OptionalAuthMiddleware"))
	requireAdmin := middleware.RequireRole(common.RoleAdmin)
	requireAgent := middleware.RequireRole(common.RoleAgent)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "UniHomes API is healthy!"})
	})

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1, authMW)
	userHandler.RegisterRoutes(v1, authMW)
	listingHandler.RegisterRoutes(v1, authMW, optionalAuthMW, requireAgent)
	roommateHandler.RegisterRoutes(v1, authMW, optionalAuthMW)
	paymentHandler.RegisterRoutes(v1, authMW, requireAdmin)
	adminHandler.RegisterRoutes(v1, authMW, requireAdmin)
	agentHandler.RegisterRoutes(v1, authMW, requireAgent)
	notificationHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:      httpServer,
		router:          router,
		cfg:             cfg,
		logger:          logger,
		ESClient:        esClient,
		AppLogger:       logger,
		dispatcher:      dispatcher,
		tokenCleanupJob: tokenCleanupJob,
	}, nil
}

// Start launches the event worker, the cron jobs and the HTTP listener. It
// blocks until the listener returns.
func (s *Server) Start() error {
	dispatcherCtx, cancel := context.WithCancel(context.Background())
	s.dispatcherCancel = cancel
	s.dispatcher.Start(dispatcherCtx)

	if s.tokenCleanupJob != nil {
		if err := s.tokenCleanupJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start token cleanup job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the listener, the cron jobs, then drains the event worker so
// queued notifications still go out.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.tokenCleanupJob != nil {
		s.tokenCleanupJob.Stop()
	}

	err := s.httpServer.Shutdown(ctx)

	if s.dispatcherCancel != nil {
		s.dispatcherCancel()
		if closeErr := s.dispatcher.Close(); closeErr != nil {
			s.logger.Warn("Event dispatcher did not close cleanly", zap.Error(closeErr))
		}
	}
	return err
}
