package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, password, firstName, lastName, email string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(username, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	EnsureAdmin(username, password string) error
	ListUsers(page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	UpdateUser(userID, firstName, lastName, email string, isAdmin *bool) (*models.User, error)
	ResetPassword(userID, newPassword string) error
	DeleteUser(userID string) error
}

// ProductServicer defines the contract for product catalog business logic.
type ProductServicer interface {
	CreateProduct(description string, costPrice, profitMargin decimal.Decimal, quantity int, createdBy string) (*models.Product, error)
	GetProductByID(id string) (*models.Product, error)
	ListProducts(page pagination.PageRequest) (*pagination.PageResponse[models.Product], error)
	SearchProducts(query string, limit int) ([]models.Product, error)
	UpdateProduct(id string, description *string, costPrice, profitMargin *decimal.Decimal, updatedBy string) (*models.Product, error)
	DeleteProduct(id string) error
	TotalProductValue() (decimal.Decimal, error)
}

// SaleServicer defines the contract for point-of-sale business logic.
type SaleServicer interface {
	CreateSale(productID string, quantity int, discountPercent decimal.Decimal, soldBy string) (*models.Sale, error)
	UndoSale(saleID string) error
	GetSaleByID(id string) (*models.Sale, error)
	ListSales(page pagination.PageRequest, since *time.Time) (*pagination.PageResponse[models.Sale], error)
}

// TimeSessionServicer defines the contract for time tracking business logic.
type TimeSessionServicer interface {
	StartSession(userID string, hourlyRate decimal.Decimal) (*models.TimeSession, error)
	PauseSession(userID string) (*models.TimeSession, error)
	ResumeSession(userID string) (*models.TimeSession, error)
	StopSession(userID string, isPaid bool) (*models.TimeSession, error)
	GetCurrentSession(userID string) (*models.TimeSession, error)
	GetSessionByID(id string) (*models.TimeSession, error)
	ListSessions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.TimeSession], error)
	UpdateSession(sessionID string, startTime, endTime *time.Time, pausedMillis *int64, hourlyRate *decimal.Decimal, isPaid *bool) (*models.TimeSession, error)
	DeleteSession(sessionID string) error
}

// UserShare summarizes one partner's stake in the company.
type UserShare struct {
	UserID     string          `json:"user_id"`
	UserName   string          `json:"user_name"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// InvestmentServicer defines the contract for investment business logic.
type InvestmentServicer interface {
	CreateInvestment(description string, amount decimal.Decimal, date time.Time, user *models.User) (*models.Investment, error)
	GetInvestmentByID(id string) (*models.Investment, error)
	ListInvestments(page pagination.PageRequest, userID *string) (*pagination.PageResponse[models.Investment], error)
	UpdateInvestment(id string, description *string, amount *decimal.Decimal, date *time.Time) (*models.Investment, error)
	DeleteInvestment(id string) error
	TotalInvested() (decimal.Decimal, error)
	UserContribution(userID string) (decimal.Decimal, error)
	UserPercentage(userID string) (float64, error)
	AllUserShares() ([]UserShare, error)
}

// DebtServicer defines the contract for debt tracking business logic.
type DebtServicer interface {
	CreateDebt(description string, amount decimal.Decimal, debtType models.DebtType, dueDate time.Time, durationMonths *int, user *models.User) (*models.Debt, error)
	GetDebtByID(id string) (*models.Debt, error)
	ListDebts(page pagination.PageRequest, paid *bool) (*pagination.PageResponse[models.Debt], error)
	UpdateDebt(id string, description *string, amount *decimal.Decimal, debtType *models.DebtType, dueDate *time.Time, durationMonths *int) (*models.Debt, error)
	DeleteDebt(id string) error
	MarkPaid(id string) (*models.Debt, error)
	MarkUnpaid(id string) (*models.Debt, error)
	DebtsByMonth() ([]MonthGroup[models.Debt], error)
}

// CashflowServicer defines the contract for the manual cash ledger.
type CashflowServicer interface {
	CreateMovement(movementType models.MovementType, amount decimal.Decimal, description string, date time.Time, user *models.User) (*models.CashMovement, error)
	GetMovementByID(id string) (*models.CashMovement, error)
	ListMovements(page pagination.PageRequest, movementType *models.MovementType) (*pagination.PageResponse[models.CashMovement], error)
	UpdateMovement(id string, movementType *models.MovementType, amount *decimal.Decimal, description *string, date *time.Time) (*models.CashMovement, error)
	DeleteMovement(id string) error
	Balance() (decimal.Decimal, error)
}

// MonthGroup is a calendar-month bucket with its records' total.
type MonthGroup[T any] struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
	Items []T             `json:"items"`
}

// EntryServicer defines the contract for planned entries and unplanned expenses.
type EntryServicer interface {
	CreateEntry(description string, amount decimal.Decimal, date time.Time, userID string) (*models.Entry, error)
	ListEntries(page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error)
	UpdateEntry(id string, description *string, amount *decimal.Decimal, date *time.Time) (*models.Entry, error)
	DeleteEntry(id string) error
	EntriesByMonth() ([]MonthGroup[models.Entry], error)

	CreateExpense(description string, amount decimal.Decimal, date time.Time, user *models.User) (*models.UnplannedExpense, error)
	ListExpenses(page pagination.PageRequest) (*pagination.PageResponse[models.UnplannedExpense], error)
	UpdateExpense(id string, description *string, amount *decimal.Decimal, date *time.Time) (*models.UnplannedExpense, error)
	DeleteExpense(id string) error
	ExpensesByMonth() ([]MonthGroup[models.UnplannedExpense], error)
}

// MonthlyFlow is one month of the cash-flow chart series.
type MonthlyFlow struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Entradas decimal.Decimal `json:"entradas"`
	Saidas   decimal.Decimal `json:"saidas"`
	Balance  decimal.Decimal `json:"balance"`
}

// ReportServicer defines the contract for aggregated dashboards.
type ReportServicer interface {
	MonthlyCashFlow() ([]MonthlyFlow, error)
	ExtendedBalance() (decimal.Decimal, error)
	RebuildMonthlySummaries() ([]models.MonthlySummary, error)
}
