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

	"rewards-backend/internal/auth"
	"rewards-backend/internal/config"
	"rewards-backend/internal/database"
	"rewards-backend/internal/handlers"
	"rewards-backend/internal/jobs"
	"rewards-backend/internal/payouts"
	"rewards-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Payout client for withdrawal settlement
	payoutClient := payouts.NewClient(
		cfg.Solana.Network,
		cfg.Solana.PayoutWalletPrivateKey,
		cfg.Solana.LamportsPerUnit,
	)

	// Initialize services
	ledgerService := services.NewLedgerService(db)
	notificationService := services.NewNotificationService(db)
	referralService := services.NewReferralService(db)
	userService := services.NewUserService(db, cfg.App.InitialBalance, cfg.App.ReferredInitialBalance)
	taskService := services.NewTaskService(db)
	bonusService := services.NewDailyBonusService(db)
	adService := services.NewAdService(db, cfg.App.AdDailyLimit)
	withdrawalService := services.NewWithdrawalService(db, ledgerService, notificationService, payoutClient, cfg.App.MinWithdrawal)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, cfg.Telegram.BotToken)
	taskHandler := handlers.NewTaskHandler(taskService)
	bonusHandler := handlers.NewBonusHandler(bonusService)
	referralHandler := handlers.NewReferralHandler(referralService, userService)
	adHandler := handlers.NewAdHandler(adService)
	walletHandler := handlers.NewWalletHandler(ledgerService, withdrawalService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(db, taskService, withdrawalService)

	// Start earnings reset job (runs every 10 minutes)
	resetJob := jobs.NewEarningsResetJob(db)
	resetJob.Start(10 * time.Minute)
	log.Println("Earnings reset job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
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

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/telegram", authHandler.TelegramLogin)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.Me)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Task endpoints
		api.GET("/tasks", taskHandler.ListTasks)
		api.POST("/tasks/:id/complete", taskHandler.CompleteTask)

		// Daily bonus endpoints
		api.GET("/bonus/status", bonusHandler.GetStatus)
		api.POST("/bonus/claim", bonusHandler.Claim)

		// Referral endpoints
		api.GET("/referral/code", referralHandler.GetReferralCode)
		api.POST("/referral/apply", referralHandler.ApplyReferralCode)
		api.GET("/referral/tree", referralHandler.GetReferralTree)
		api.GET("/referral/referrals", referralHandler.GetReferrals)

		// Ad reward endpoints
		api.POST("/ads/watch", adHandler.RecordWatch)
		api.GET("/ads/today", adHandler.GetWatchedToday)

		// Wallet endpoints
		api.GET("/wallet/ledger", walletHandler.GetLedger)
		api.POST("/wallet/withdraw", walletHandler.RequestWithdrawal)
		api.GET("/wallet/withdrawals", walletHandler.ListWithdrawals)

		// Notification endpoints
		api.GET("/notifications", notificationHandler.List)
		api.POST("/notifications/:id/read", notificationHandler.MarkRead)
		api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.AdminMiddleware())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.GET("/users", adminHandler.GetUsers)

		// Task management
		admin.POST("/tasks", adminHandler.CreateTask)
		admin.PUT("/tasks/:id", adminHandler.UpdateTask)
		admin.POST("/completions/:id/verify", adminHandler.VerifyCompletion)

		// Withdrawal management
		admin.GET("/withdrawals", adminHandler.ListPendingWithdrawals)
		admin.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
