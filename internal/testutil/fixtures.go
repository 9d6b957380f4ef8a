package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NewtonAvila/oticas-avila/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing the test on bad input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a partner user with a hashed password and
// unique username.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	username := fmt.Sprintf("user%d", nextID())
	return CreateTestUserWithUsername(t, db, username)
}

// CreateTestUserWithUsername creates a partner user with the given username.
func CreateTestUserWithUsername(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:  username,
		Password:  string(hash),
		FirstName: fmt.Sprintf("Partner %d", nextID()),
		Role:      models.RolePartner,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin creates an admin user.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("admin%d", nextID()),
		Password: string(hash),
		IsAdmin:  true,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return user
}

// CreateTestProduct creates a product with the given cost, margin, and
// stock. The sale price is derived the same way the service derives it.
func CreateTestProduct(t *testing.T, db *gorm.DB, cost, margin string, quantity int) *models.Product {
	t.Helper()

	costPrice := Dec(t, cost)
	profitMargin := Dec(t, margin)
	product := &models.Product{
		Seq:          nextID(),
		Description:  fmt.Sprintf("Test Product %d", nextID()),
		CostPrice:    costPrice,
		ProfitMargin: profitMargin,
		SalePrice:    models.ComputeSalePrice(costPrice, profitMargin),
		Quantity:     quantity,
		CreatedBy:    "test",
		UpdatedBy:    "test",
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

// CreateTestInvestment creates a manual investment for the user.
func CreateTestInvestment(t *testing.T, db *gorm.DB, user *models.User, amount string) *models.Investment {
	t.Helper()

	inv := &models.Investment{
		Description: fmt.Sprintf("Test Investment %d", nextID()),
		Amount:      Dec(t, amount),
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		Date:        time.Now(),
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return inv
}

// CreateTestSession creates a completed, paid time session for the user.
func CreateTestSession(t *testing.T, db *gorm.DB, user *models.User, hours float64, rate string) *models.TimeSession {
	t.Helper()

	end := time.Now()
	start := end.Add(-time.Duration(hours * float64(time.Hour)))
	session := &models.TimeSession{
		UserID:      user.ID,
		StartTime:   start,
		EndTime:     &end,
		HourlyRate:  Dec(t, rate),
		IsPaid:      true,
		IsCompleted: true,
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}

// CreateTestDebt creates an unpaid single debt due now.
func CreateTestDebt(t *testing.T, db *gorm.DB, user *models.User, amount string) *models.Debt {
	t.Helper()

	debt := &models.Debt{
		Description: fmt.Sprintf("Test Debt %d", nextID()),
		Amount:      Dec(t, amount),
		Type:        models.DebtTypeSingle,
		DueDate:     time.Now(),
		UserID:      user.ID,
		UserName:    user.DisplayName(),
	}
	if err := db.Create(debt).Error; err != nil {
		t.Fatalf("failed to create test debt: %v", err)
	}
	return debt
}

// CreateTestMovement creates a cash movement of the given direction and amount.
func CreateTestMovement(t *testing.T, db *gorm.DB, user *models.User, movementType models.MovementType, amount string, date time.Time) *models.CashMovement {
	t.Helper()

	movement := &models.CashMovement{
		Type:        movementType,
		Amount:      Dec(t, amount),
		Description: fmt.Sprintf("Test Movement %d", nextID()),
		Date:        date,
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		Source:      models.SourceManual,
	}
	if err := db.Create(movement).Error; err != nil {
		t.Fatalf("failed to create test movement: %v", err)
	}
	return movement
}

// CreateTestEntry creates a planned entry for the user.
func CreateTestEntry(t *testing.T, db *gorm.DB, user *models.User, amount string, date time.Time) *models.Entry {
	t.Helper()

	entry := &models.Entry{
		Description: fmt.Sprintf("Test Entry %d", nextID()),
		Amount:      Dec(t, amount),
		Date:        date,
		UserID:      user.ID,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// CreateTestExpense creates an unplanned expense for the user.
func CreateTestExpense(t *testing.T, db *gorm.DB, user *models.User, amount string, date time.Time) *models.UnplannedExpense {
	t.Helper()

	expense := &models.UnplannedExpense{
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Amount:      Dec(t, amount),
		Date:        date,
		UserID:      user.ID,
		UserName:    user.DisplayName(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
