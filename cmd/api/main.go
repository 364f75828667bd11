package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/config"
	"github.com/Samrudhp/renova-backend/internal/credits"
	"github.com/Samrudhp/renova-backend/internal/events"
	"github.com/Samrudhp/renova-backend/internal/marketplace"
	"github.com/Samrudhp/renova-backend/internal/tokens"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load .env if present, then config
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	factors, err := cfg.Materials.FactorTable()
	if err != nil {
		logger.Fatal("Invalid material factor table", zap.Error(err))
	}

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName))

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// Event publisher (optional)
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.URL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.Events.URL, cfg.Events.Queue, logger)
		if err != nil {
			logger.Warn("Event publishing disabled", zap.Error(err))
		} else {
			publisher = rabbit
			defer rabbit.Close()
		}
	}

	// Credit/impact engine and feature modules
	engine := credits.NewEngine(factors)

	creditsRepo := credits.NewPostgresRepository(db)
	creditsService := credits.NewService(engine, creditsRepo, publisher, logger)
	creditsHandler := credits.NewHandler(creditsService, logger)

	rankingEngine := marketplace.NewEngine(cfg.Ranking, logger)
	marketplaceRepo := marketplace.NewPostgresRepository(db)
	marketplaceService := marketplace.NewService(rankingEngine, marketplaceRepo, logger)
	marketplaceHandler := marketplace.NewHandler(marketplaceService, cfg.Ranking.DefaultMaxDistanceKm, logger)

	tokensRepo := tokens.NewPostgresRepository(db)
	tokensService := tokens.NewService(tokensRepo, engine, publisher,
		cfg.Tokens.Expiry(), cfg.Tokens.MintRetries, logger)
	tokensHandler := tokens.NewHandler(tokensService, logger)

	// Token expiry sweeper
	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Tokens.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := tokensService.SweepExpired(ctx); err != nil {
			logger.Error("Token expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Invalid sweep schedule", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Setup Router
	gin.SetMode(gin.DebugMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		creditsHandler.RegisterRoutes(api)
		marketplaceHandler.RegisterRoutes(api)
		tokensHandler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}
