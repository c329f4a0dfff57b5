package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptopredict/internal/auth"
	"cryptopredict/internal/config"
	"cryptopredict/internal/database"
	"cryptopredict/internal/handlers"
	"cryptopredict/internal/jobs"
	"cryptopredict/internal/logger"
	"cryptopredict/internal/repository"
	"cryptopredict/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	db, err := database.Connect(cfg.GetDSN())
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	initialBalance, err := decimal.NewFromString(cfg.App.InitialBalance)
	if err != nil {
		zlog.Fatal("invalid INITIAL_BALANCE", zap.Error(err))
	}

	// Initialize services
	oracle := services.NewPriceService(cfg.Oracle.Timeout, cfg.Oracle.CacheTTL, zlog)
	walletService := services.NewWalletService(db, zlog)
	userService := services.NewUserService(db, walletService, initialBalance, zlog)
	predictionRepo := repository.NewPredictionRepository(db)
	predictionService := services.NewPredictionService(db, predictionRepo, walletService, oracle, zlog)
	settlementService := services.NewSettlementService(db, predictionRepo, walletService, oracle, zlog)
	fundingService := services.NewFundingService(db, walletService, oracle, zlog)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	predictionHandler := handlers.NewPredictionHandler(predictionService, settlementService)
	walletHandler := handlers.NewWalletHandler(walletService, oracle)
	fundingHandler := handlers.NewFundingHandler(fundingService)

	// Start the settlement sweep
	sweeper := jobs.NewSettlementSweeper(context.Background(), settlementService, cfg.App.SweepInterval, zlog)
	if err := sweeper.Start(); err != nil {
		zlog.Fatal("failed to start settlement sweeper", zap.Error(err))
	}

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Registration routes (public)
	register := router.Group("/register")
	{
		register.POST("/createuser", authHandler.Register)
		register.POST("/login", authHandler.Login)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/user/profile", authHandler.GetMe)

		api.GET("/prices", walletHandler.GetPrices)
		api.GET("/wallet", walletHandler.GetWallet)
		api.GET("/transactions", walletHandler.ListTransactions)

		api.GET("/predictions/tiers", predictionHandler.GetTiers)
		api.POST("/predictions", predictionHandler.Stake)
		api.GET("/predictions", predictionHandler.ListMyPredictions)
		api.GET("/predictions/:id", predictionHandler.GetPrediction)

		api.POST("/deposits", fundingHandler.RequestDeposit)
		api.POST("/withdraw", fundingHandler.Withdraw)
		api.POST("/send", fundingHandler.Send)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(authHandler.AdminMiddleware())
	{
		admin.GET("/predictions/open", predictionHandler.ListOpenPredictions)
		admin.POST("/predictions/:id/result", predictionHandler.ForceResult)

		admin.GET("/deposits/pending", fundingHandler.ListPendingDeposits)
		admin.POST("/deposits/:id/approve", fundingHandler.ApproveDeposit)
		admin.GET("/sends/pending", fundingHandler.ListPendingSends)
		admin.POST("/sends/:id/status", fundingHandler.UpdateSendStatus)

		admin.POST("/wallet/balance", walletHandler.SetBalance)
		admin.GET("/wallet/:userId", walletHandler.GetUserBalances)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}
