package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/NewtonAvila/oticas-avila/internal/handlers"
	"github.com/NewtonAvila/oticas-avila/internal/livefeed"
	"github.com/NewtonAvila/oticas-avila/internal/logger"
	"github.com/NewtonAvila/oticas-avila/internal/middleware"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/services"
	"github.com/NewtonAvila/oticas-avila/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Counter{},
		&models.Product{},
		&models.Sale{},
		&models.TimeSession{},
		&models.Investment{},
		&models.Debt{},
		&models.CashMovement{},
		&models.Entry{},
		&models.UnplannedExpense{},
		&models.MonthlySummary{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	notifier := livefeed.NopNotifier{}

	// Services
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	saleService := services.NewSaleService(db)
	sessionService := services.NewTimeSessionService(db)
	investmentService := services.NewInvestmentService(db)
	debtService := services.NewDebtService(db)
	cashflowService := services.NewCashflowService(db)
	entryService := services.NewEntryService(db)
	reportService := services.NewReportService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, notifier)
	saleHandler := handlers.NewSaleHandler(saleService, notifier)
	sessionHandler := handlers.NewTimeSessionHandler(sessionService, notifier)
	investmentHandler := handlers.NewInvestmentHandler(investmentService, userService, notifier)
	debtHandler := handlers.NewDebtHandler(debtService, userService, notifier)
	cashflowHandler := handlers.NewCashflowHandler(cashflowService, userService, notifier)
	entryHandler := handlers.NewEntryHandler(entryService, userService, notifier)
	reportHandler := handlers.NewReportHandler(reportService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	products := protected.Group("/products")
	products.POST("", productHandler.CreateProduct)
	products.GET("", productHandler.ListProducts)
	products.GET("/search", productHandler.SearchProducts)
	products.GET("/total-value", productHandler.GetTotalProductValue)
	products.GET("/:id", productHandler.GetProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	sales := protected.Group("/sales")
	sales.POST("", saleHandler.CreateSale)
	sales.GET("", saleHandler.ListSales)
	sales.DELETE("/:id", saleHandler.UndoSale)

	sessions := protected.Group("/sessions")
	sessions.POST("/start", sessionHandler.StartSession)
	sessions.POST("/pause", sessionHandler.PauseSession)
	sessions.POST("/resume", sessionHandler.ResumeSession)
	sessions.POST("/stop", sessionHandler.StopSession)
	sessions.GET("/current", sessionHandler.GetCurrentSession)
	sessions.GET("", sessionHandler.ListSessions)
	sessions.PATCH("/:id", sessionHandler.UpdateSession)
	sessions.DELETE("/:id", sessionHandler.DeleteSession)

	investments := protected.Group("/investments")
	investments.POST("", investmentHandler.CreateInvestment)
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/summary", investmentHandler.GetInvestmentSummary)
	investments.PATCH("/:id", investmentHandler.UpdateInvestment)
	investments.DELETE("/:id", investmentHandler.DeleteInvestment)

	debts := protected.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.ListDebts)
	debts.GET("/by-month", debtHandler.GetDebtsByMonth)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PATCH("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.POST("/:id/paid", debtHandler.MarkDebtPaid)
	debts.POST("/:id/unpaid", debtHandler.MarkDebtUnpaid)

	cashflow := protected.Group("/cashflow")
	cashflow.POST("/movements", cashflowHandler.CreateMovement)
	cashflow.GET("/movements", cashflowHandler.ListMovements)
	cashflow.PATCH("/movements/:id", cashflowHandler.UpdateMovement)
	cashflow.DELETE("/movements/:id", cashflowHandler.DeleteMovement)
	cashflow.GET("/balance", cashflowHandler.GetBalance)

	entries := protected.Group("/entries")
	entries.POST("", entryHandler.CreateEntry)
	entries.GET("", entryHandler.ListEntries)
	entries.GET("/by-month", entryHandler.GetEntriesByMonth)
	entries.PATCH("/:id", entryHandler.UpdateEntry)
	entries.DELETE("/:id", entryHandler.DeleteEntry)

	expenses := protected.Group("/expenses")
	expenses.POST("", entryHandler.CreateExpense)
	expenses.GET("", entryHandler.ListExpenses)
	expenses.GET("/by-month", entryHandler.GetExpensesByMonth)
	expenses.PATCH("/:id", entryHandler.UpdateExpense)
	expenses.DELETE("/:id", entryHandler.DeleteExpense)

	reports := protected.Group("/reports")
	reports.GET("/monthly-cash-flow", reportHandler.GetMonthlyCashFlow)
	reports.GET("/extended-balance", reportHandler.GetExtendedBalance)
	reports.POST("/monthly-summaries/rebuild", middleware.AdminOnly(), reportHandler.RebuildMonthlySummaries)

	admin := protected.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/users", userHandler.ListUsers)
	admin.PATCH("/users/:id", userHandler.UpdateUser)
	admin.POST("/users/:id/reset-password", userHandler.ResetPassword)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token and user ID.
func (app *testApp) registerUser(t *testing.T, username, password string) (accessToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q,"first_name":"Test","last_name":"User"}`, username, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), user["id"].(string)
}

// registerAdmin registers a user and promotes it to admin directly in the
// database, then logs in again so the token carries the admin claim.
func (app *testApp) registerAdmin(t *testing.T, username, password string) (accessToken, userID string) {
	t.Helper()
	_, userID = app.registerUser(t, username, password)
	if err := app.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"is_admin": true, "role": models.RoleAdmin}).Error; err != nil {
		t.Fatalf("failed to promote admin: %v", err)
	}
	accessToken = app.loginUser(t, username, password)
	return accessToken, userID
}

// loginUser logs in and returns the access token.
func (app *testApp) loginUser(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string)
}
