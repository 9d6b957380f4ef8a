package services

import (
	"testing"
	"time"

	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
	"github.com/NewtonAvila/oticas-avila/internal/testutil"
)

func TestCreateDebt(t *testing.T) {
	t.Run("single_debt", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		debt, err := svc.CreateDebt("Aluguel", testutil.Dec(t, "1200"), models.DebtTypeSingle, time.Now(), nil, user)
		testutil.AssertNoError(t, err)

		if debt.Paid {
			t.Error("new debt must start unpaid")
		}
		if debt.DurationMonths != nil {
			t.Error("single debt must not carry a duration")
		}
	})

	t.Run("fixed_debt_requires_duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateDebt("Financiamento", testutil.Dec(t, "800"), models.DebtTypeFixed, time.Now(), nil, user)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		months := 12
		debt, err := svc.CreateDebt("Financiamento", testutil.Dec(t, "800"), models.DebtTypeFixed, time.Now(), &months, user)
		testutil.AssertNoError(t, err)
		if debt.DurationMonths == nil || *debt.DurationMonths != 12 {
			t.Error("expected 12 month duration")
		}
	})

	t.Run("future_due_date_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)

		due := time.Now().AddDate(0, 6, 0)
		debt, err := svc.CreateDebt("Parcela futura", testutil.Dec(t, "100"), models.DebtTypeSingle, due, nil, user)
		testutil.AssertNoError(t, err)
		if !debt.DueDate.After(time.Now()) {
			t.Error("expected future due date preserved")
		}
	})
}

func TestMarkPaid(t *testing.T) {
	t.Run("toggle_and_revert", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)
		user := testutil.CreateTestUser(t, db)
		debt := testutil.CreateTestDebt(t, db, user, "150")

		paid, err := svc.MarkPaid(debt.ID)
		testutil.AssertNoError(t, err)
		if !paid.Paid {
			t.Error("expected debt marked paid")
		}

		// Marking paid twice is a no-op
		_, err = svc.MarkPaid(debt.ID)
		testutil.AssertNoError(t, err)

		unpaid, err := svc.MarkUnpaid(debt.ID)
		testutil.AssertNoError(t, err)
		if unpaid.Paid {
			t.Error("expected debt reverted to unpaid")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDebtService(db)

		_, err := svc.MarkPaid("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "DEBT_NOT_FOUND")
	})
}

func TestListDebts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDebtService(db)
	user := testutil.CreateTestUser(t, db)

	a := testutil.CreateTestDebt(t, db, user, "100")
	testutil.CreateTestDebt(t, db, user, "200")

	_, err := svc.MarkPaid(a.ID)
	testutil.AssertNoError(t, err)

	unpaid := false
	page, err := svc.ListDebts(pagination.PageRequest{}, &unpaid)
	testutil.AssertNoError(t, err)
	if page.TotalItems != 1 {
		t.Errorf("expected 1 unpaid debt, got %d", page.TotalItems)
	}
}

func TestDebtsByMonth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDebtService(db)
	user := testutil.CreateTestUser(t, db)

	now := time.Now().UTC()
	_, err := svc.CreateDebt("Aluguel", testutil.Dec(t, "100"), models.DebtTypeSingle, now, nil, user)
	testutil.AssertNoError(t, err)
	_, err = svc.CreateDebt("Condominio", testutil.Dec(t, "50"), models.DebtTypeSingle, now, nil, user)
	testutil.AssertNoError(t, err)
	_, err = svc.CreateDebt("Parcela", testutil.Dec(t, "200"), models.DebtTypeSingle, now.AddDate(0, 2, 0), nil, user)
	testutil.AssertNoError(t, err)

	groups, err := svc.DebtsByMonth()
	testutil.AssertNoError(t, err)
	if len(groups) != 2 {
		t.Fatalf("expected 2 month buckets, got %d", len(groups))
	}

	// Newest month first, with the current month's debts summed
	future := now.AddDate(0, 2, 0)
	if groups[0].Year != future.Year() || groups[0].Month != int(future.Month()) {
		t.Errorf("expected first bucket %d-%d, got %d-%d", future.Year(), future.Month(), groups[0].Year, groups[0].Month)
	}
	testutil.AssertDecimalEqual(t, "200", groups[0].Total)
	testutil.AssertDecimalEqual(t, "150", groups[1].Total)
	if len(groups[1].Items) != 2 {
		t.Errorf("expected 2 debts in the current month, got %d", len(groups[1].Items))
	}
}

func TestUpdateDebt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDebtService(db)
	user := testutil.CreateTestUser(t, db)
	debt := testutil.CreateTestDebt(t, db, user, "100")

	amount := testutil.Dec(t, "175")
	_, err := svc.UpdateDebt(debt.ID, nil, &amount, nil, nil, nil)
	testutil.AssertNoError(t, err)

	var fresh models.Debt
	testutil.AssertNoError(t, db.Where("id = ?", debt.ID).First(&fresh).Error)
	testutil.AssertDecimalEqual(t, "175", fresh.Amount)
}
