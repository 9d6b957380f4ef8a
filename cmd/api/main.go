package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/NewtonAvila/oticas-avila/internal/config"
	"github.com/NewtonAvila/oticas-avila/internal/database"
	"github.com/NewtonAvila/oticas-avila/internal/handlers"
	"github.com/NewtonAvila/oticas-avila/internal/livefeed"
	"github.com/NewtonAvila/oticas-avila/internal/logger"
	"github.com/NewtonAvila/oticas-avila/internal/middleware"
	"github.com/NewtonAvila/oticas-avila/internal/services"
	"github.com/NewtonAvila/oticas-avila/internal/validator"
)

// @title           Óticas Avila API
// @version         1.0
// @description     Back office for a small optician shop: product catalog, point of sale, partner time tracking, investments, debts, and cash flow.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	saleService := services.NewSaleService(db)
	sessionService := services.NewTimeSessionService(db)
	investmentService := services.NewInvestmentService(db)
	debtService := services.NewDebtService(db)
	cashflowService := services.NewCashflowService(db)
	entryService := services.NewEntryService(db)
	reportService := services.NewReportService(db)

	// Seed the bootstrap admin when the user table has no admin yet
	if err := userService.EnsureAdmin(appConfig.AdminUsername, appConfig.AdminPassword); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	// Start the live feed hub
	hub := livefeed.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, hub)
	saleHandler := handlers.NewSaleHandler(saleService, hub)
	sessionHandler := handlers.NewTimeSessionHandler(sessionService, hub)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, userService, hub)
	debtHandler := handlers.NewDebtHandler(debtService, userService, hub)
	cashflowHandler := handlers.NewCashflowHandler(cashflowService, userService, hub)
	entryHandler := handlers.NewEntryHandler(entryService, userService, hub)
	reportHandler := handlers.NewReportHandler(reportService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Live feed; authenticates via token query parameter
	router.GET("/ws", func(c *gin.Context) {
		livefeed.ServeWs(hub, c)
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Product routes
	products := protected.Group("/products")
	products.POST("", productHandler.CreateProduct)
	products.GET("", productHandler.ListProducts)
	products.GET("/search", productHandler.SearchProducts)
	products.GET("/total-value", productHandler.GetTotalProductValue)
	products.GET("/:id", productHandler.GetProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	// Sale routes
	sales := protected.Group("/sales")
	sales.POST("", saleHandler.CreateSale)
	sales.GET("", saleHandler.ListSales)
	sales.DELETE("/:id", saleHandler.UndoSale)

	// Time session routes
	sessions := protected.Group("/sessions")
	sessions.POST("/start", sessionHandler.StartSession)
	sessions.POST("/pause", sessionHandler.PauseSession)
	sessions.POST("/resume", sessionHandler.ResumeSession)
	sessions.POST("/stop", sessionHandler.StopSession)
	sessions.GET("/current", sessionHandler.GetCurrentSession)
	sessions.GET("", sessionHandler.ListSessions)
	sessions.PATCH("/:id", sessionHandler.UpdateSession)
	sessions.DELETE("/:id", sessionHandler.DeleteSession)

	// Investment routes
	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/summary", investmentHandler.GetInvestmentSummary)
	investments.PATCH("/:id", investmentHandler.UpdateInvestment)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	// Debt routes
	debts := protected.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.ListDebts)
	debts.GET("/by-month", debtHandler.GetDebtsByMonth)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PATCH("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.POST("/:id/paid", debtHandler.MarkDebtPaid)
	debts.POST("/:id/unpaid", debtHandler.MarkDebtUnpaid)

	// Cash flow routes
	cashflow := protected.Group("/cashflow")
	cashflow.POST("/movements", cashflowHandler.CreateMovement)
	cashflow.GET("/movements", cashflowHandler.ListMovements)
	cashflow.PATCH("/movements/:id", cashflowHandler.UpdateMovement)
	cashflow.DELETE("/movements/:id", cashflowHandler.DeleteMovement)
	cashflow.GET("/balance", cashflowHandler.GetBalance)

	// Planned entry routes
	entries := protected.Group("/entries")
	entries.POST("", entryHandler.CreateEntry)
	entries.GET("", entryHandler.ListEntries)
	entries.GET("/by-month", entryHandler.GetEntriesByMonth)
	entries.PATCH("/:id", entryHandler.UpdateEntry)
	entries.DELETE("/:id", entryHandler.DeleteEntry)

	// Unplanned expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", entryHandler.CreateExpense)
	expenses.GET("", entryHandler.ListExpenses)
	expenses.GET("/by-month", entryHandler.GetExpensesByMonth)
	expenses.PATCH("/:id", entryHandler.UpdateExpense)
	expenses.DELETE("/:id", entryHandler.DeleteExpense)

	// Report routes
	reports := protected.Group("/reports")
	reports.GET("/monthly-cash-flow", reportHandler.GetMonthlyCashFlow)
	reports.GET("/extended-balance", reportHandler.GetExtendedBalance)
	reports.POST("/monthly-summaries/rebuild", middleware.AdminOnly(), reportHandler.RebuildMonthlySummaries)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/users", userHandler.ListUsers)
	admin.PATCH("/users/:id", userHandler.UpdateUser)
	admin.POST("/users/:id/reset-password", userHandler.ResetPassword)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	log.Infof("Starting Óticas Avila backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
