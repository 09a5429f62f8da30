package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fincore-assistant/internal/ai"
	"fincore-assistant/internal/config"
	"fincore-assistant/internal/fincore"
	"fincore-assistant/internal/logger"
	"fincore-assistant/internal/store"
	"fincore-assistant/internal/telemetry"
	"fincore-assistant/middleware"
	"fincore-assistant/routes"
	"fincore-assistant/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Redis is optional: without it the answer cache and HTTP rate limiting
	// are disabled, everything else keeps working.
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without answer cache", "error", err)
		rdb = nil
	}

	// Tracing
	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer("fincore-assistant", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Failed to initialize tracing", "error", err)
		} else {
			defer shutdownTracer()
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	// External collaborators
	gemini, err := ai.NewGeminiClient(cfg)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer gemini.Close()

	fincoreClient := fincore.NewClient(cfg)

	documentStore := store.NewMongoStore(mongoClient.Database(cfg.DBName))

	// Pipeline services
	indexer := services.NewIndexer(fincoreClient, gemini, documentStore, cfg.IndexPageSize, metrics)
	searchEngine := services.NewSearchEngine(gemini, documentStore, cfg.SearchMinScore)
	ragService := services.NewRAGService(searchEngine, fincoreClient, gemini, documentStore, rdb, metrics,
		cfg.SearchTopK, cfg.ContextCharLimit, cfg.AnswerCacheTTL)

	scheduler := services.NewJobScheduler(services.SchedulerIntervals{
		Index:       cfg.IndexInterval,
		CacheSweep:  cfg.CacheSweepInterval,
		HealthProbe: cfg.HealthProbeInterval,
	}, indexer, documentStore, fincoreClient)

	if err := scheduler.StartAll(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.MetricsMiddleware(metrics))
	if rdb != nil {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"fincore":   fincoreClient.HealthCheck(ctx),
			"timestamp": time.Now(),
		})
	})

	// Setup routes
	routes.SetupAssistantRoutes(router, ragService)
	routes.SetupAdminRoutes(router, scheduler, indexer)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop scheduled jobs before the HTTP server so no new index batches
	// start during shutdown.
	scheduler.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
