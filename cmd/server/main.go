package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/api/handlers"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/api/middleware"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/websocket"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/cache"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/config"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logger with service context
	structuredLogger := logger.InitLogger("info", cfg.IsDevelopment())
	logger.WithService("log-picker").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting match selection service")

	// Setup Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to Redis for the result cache
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.WithService("log-picker").Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithService("log-picker").Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	cacheService := cache.NewResultCacheService(redisClient, structuredLogger)

	// Initialize WebSocket hub for solve progress updates
	wsHub := websocket.NewHub(structuredLogger)
	go wsHub.Run()

	// Initialize router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Initialize handlers
	mipSolver := solver.NewGLPK(structuredLogger)
	optimizationHandler := handlers.NewOptimizationHandler(
		mipSolver,
		cacheService,
		wsHub,
		cfg,
		structuredLogger,
	)
	healthHandler := handlers.NewHealthHandler(redisClient, wsHub, structuredLogger)

	// Setup API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/optimize", optimizationHandler.SelectMatches)
		apiV1.POST("/optimize/validate", optimizationHandler.ValidateRequest)
		apiV1.GET("/optimize/cache-status", optimizationHandler.GetCacheStatus)
	}

	// WebSocket endpoint for progress updates
	router.GET("/ws/optimization-progress/:optimization_id", wsHub.HandleWebSocket)

	// Health check endpoints
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.WithService("log-picker").WithField("port", cfg.Port).Info("Match selection service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithService("log-picker").Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.WithService("log-picker").Info("Shutting down match selection service...")

	// Tell connected progress watchers the service is going away
	wsHub.BroadcastToAll(gin.H{"event": "shutdown"})

	// The server has 5 seconds to finish the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithService("log-picker").Fatalf("Match selection service forced to shutdown: %v", err)
	}

	logger.WithService("log-picker").Info("Match selection service exited")
}
