package services

import (
	"testing"
	"time"

	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/testutil"
)

func TestMonthlyCashFlow(t *testing.T) {
	t.Run("buckets_and_running_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		user := testutil.CreateTestUser(t, db)

		now := time.Now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC)
		twoMonthsAgo := monthStart.AddDate(0, -2, 0)
		lastMonth := monthStart.AddDate(0, -1, 0)
		testutil.CreateTestMovement(t, db, user, models.MovementIn, "1000", twoMonthsAgo)
		testutil.CreateTestMovement(t, db, user, models.MovementOut, "400", lastMonth)
		testutil.CreateTestMovement(t, db, user, models.MovementIn, "200", time.Now())

		flows, err := svc.MonthlyCashFlow()
		testutil.AssertNoError(t, err)
		if len(flows) != 3 {
			t.Fatalf("expected 3 month buckets, got %d", len(flows))
		}

		testutil.AssertDecimalEqual(t, "1000", flows[0].Entradas)
		testutil.AssertDecimalEqual(t, "1000", flows[0].Balance)
		testutil.AssertDecimalEqual(t, "400", flows[1].Saidas)
		testutil.AssertDecimalEqual(t, "600", flows[1].Balance)
		testutil.AssertDecimalEqual(t, "800", flows[2].Balance)
	})

	t.Run("future_debt_extends_horizon", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestMovement(t, db, user, models.MovementIn, "100", time.Now())

		debt := testutil.CreateTestDebt(t, db, user, "50")
		now := time.Now()
		due := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC).AddDate(0, 3, 0)
		testutil.AssertNoError(t, db.Model(&models.Debt{}).Where("id = ?", debt.ID).Update("due_date", due).Error)

		flows, err := svc.MonthlyCashFlow()
		testutil.AssertNoError(t, err)
		if len(flows) != 4 {
			t.Fatalf("expected horizon extended to 4 months, got %d", len(flows))
		}
		// The empty future months carry the running balance forward
		testutil.AssertDecimalEqual(t, "100", flows[3].Balance)
		testutil.AssertDecimalEqual(t, "0", flows[3].Entradas)
	})

	t.Run("empty_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)

		flows, err := svc.MonthlyCashFlow()
		testutil.AssertNoError(t, err)
		if len(flows) != 0 {
			t.Errorf("expected no buckets, got %d", len(flows))
		}
	})
}

func TestExtendedBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReportService(db)
	debtSvc := NewDebtService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestMovement(t, db, user, models.MovementIn, "1000", time.Now())
	testutil.CreateTestMovement(t, db, user, models.MovementOut, "200", time.Now())

	paid := testutil.CreateTestDebt(t, db, user, "300")
	_, err := debtSvc.MarkPaid(paid.ID)
	testutil.AssertNoError(t, err)
	// Unpaid debts do not reduce the extended balance
	testutil.CreateTestDebt(t, db, user, "999")

	testutil.CreateTestExpense(t, db, user, "100", time.Now())

	balance, err := svc.ExtendedBalance()
	testutil.AssertNoError(t, err)
	// 1000 - 200 - 300 - 100
	testutil.AssertDecimalEqual(t, "400", balance)
}

func TestRebuildMonthlySummaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReportService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestMovement(t, db, user, models.MovementIn, "500", time.Now())

	first, err := svc.RebuildMonthlySummaries()
	testutil.AssertNoError(t, err)
	if len(first) == 0 {
		t.Fatal("expected at least one summary row")
	}

	testutil.CreateTestMovement(t, db, user, models.MovementOut, "100", time.Now())

	second, err := svc.RebuildMonthlySummaries()
	testutil.AssertNoError(t, err)

	// Rebuild upserts: same month, updated figures, no duplicate rows
	var count int64
	db.Model(&models.MonthlySummary{}).Count(&count)
	if count != int64(len(second)) {
		t.Errorf("expected %d summary rows, got %d", len(second), count)
	}

	current := second[len(second)-1]
	testutil.AssertDecimalEqual(t, "500", current.Entradas)
	testutil.AssertDecimalEqual(t, "100", current.Saidas)
	testutil.AssertDecimalEqual(t, "400", current.Balance)
}

func TestRebuildPrunesStaleMonths(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReportService(db)
	user := testutil.CreateTestUser(t, db)

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC)
	old := testutil.CreateTestMovement(t, db, user, models.MovementIn, "300", monthStart.AddDate(0, -2, 0))
	testutil.CreateTestMovement(t, db, user, models.MovementIn, "500", time.Now())

	first, err := svc.RebuildMonthlySummaries()
	testutil.AssertNoError(t, err)
	if len(first) != 3 {
		t.Fatalf("expected 3 summary rows, got %d", len(first))
	}

	// Deleting the oldest movement shrinks the range; the rebuild must
	// drop the rows that no longer exist on the chart
	testutil.AssertNoError(t, db.Delete(&models.CashMovement{}, "id = ?", old.ID).Error)

	second, err := svc.RebuildMonthlySummaries()
	testutil.AssertNoError(t, err)
	if len(second) != 1 {
		t.Fatalf("expected 1 summary row after range shrink, got %d", len(second))
	}

	var count int64
	db.Model(&models.MonthlySummary{}).Count(&count)
	if count != 1 {
		t.Errorf("expected stale rows deleted, found %d", count)
	}

	// An emptied ledger leaves no snapshot behind
	testutil.AssertNoError(t, db.Where("1 = 1").Delete(&models.CashMovement{}).Error)
	third, err := svc.RebuildMonthlySummaries()
	testutil.AssertNoError(t, err)
	if len(third) != 0 {
		t.Fatalf("expected no summary rows, got %d", len(third))
	}
	db.Model(&models.MonthlySummary{}).Count(&count)
	if count != 0 {
		t.Errorf("expected empty snapshot table, found %d rows", count)
	}
}
