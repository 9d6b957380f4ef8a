package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
)

// reportService builds aggregated dashboard views on top of the cash
// ledger and debts. It never writes to the source collections.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// monthKey truncates a time to its calendar month.
func monthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyCashFlow returns one bucket per calendar month from the
// earliest cash movement through the current month, extended to the
// latest future debt due date so upcoming obligations appear on the
// chart. The balance column is the running balance up to and including
// each month.
func (s *reportService) MonthlyCashFlow() ([]MonthlyFlow, error) {
	var movements []models.CashMovement
	if err := s.db.Select("type, amount, date").Order("date ASC").Find(&movements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(movements) == 0 {
		return []MonthlyFlow{}, nil
	}

	start := monthKey(movements[0].Date)
	end := monthKey(time.Now())

	var lastDebt models.Debt
	err := s.db.Select("due_date").Order("due_date DESC").First(&lastDebt).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err == nil {
		if debtMonth := monthKey(lastDebt.DueDate); debtMonth.After(end) {
			end = debtMonth
		}
	}

	type totals struct {
		in  decimal.Decimal
		out decimal.Decimal
	}
	byMonth := map[time.Time]*totals{}
	for i := range movements {
		k := monthKey(movements[i].Date)
		t, ok := byMonth[k]
		if !ok {
			t = &totals{in: decimal.Zero, out: decimal.Zero}
			byMonth[k] = t
		}
		if movements[i].Type == models.MovementIn {
			t.in = t.in.Add(movements[i].Amount)
		} else {
			t.out = t.out.Add(movements[i].Amount)
		}
	}

	flows := []MonthlyFlow{}
	running := decimal.Zero
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		flow := MonthlyFlow{
			Year:     m.Year(),
			Month:    int(m.Month()),
			Entradas: decimal.Zero,
			Saidas:   decimal.Zero,
		}
		if t, ok := byMonth[m]; ok {
			flow.Entradas = t.in
			flow.Saidas = t.out
		}
		running = running.Add(flow.Entradas).Sub(flow.Saidas)
		flow.Balance = running
		flows = append(flows, flow)
	}
	return flows, nil
}

// ExtendedBalance is the ledger balance minus settled debts and
// unplanned expenses, the figure the dashboard shows as effectively
// available cash.
func (s *reportService) ExtendedBalance() (decimal.Decimal, error) {
	var movements []models.CashMovement
	if err := s.db.Select("type, amount").Find(&movements).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := decimal.Zero
	for i := range movements {
		if movements[i].Type == models.MovementIn {
			balance = balance.Add(movements[i].Amount)
		} else {
			balance = balance.Sub(movements[i].Amount)
		}
	}

	var debts []models.Debt
	if err := s.db.Select("amount").Where("paid = ?", true).Find(&debts).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range debts {
		balance = balance.Sub(debts[i].Amount)
	}

	var expenses []models.UnplannedExpense
	if err := s.db.Select("amount").Find(&expenses).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range expenses {
		balance = balance.Sub(expenses[i].Amount)
	}

	return balance, nil
}

// RebuildMonthlySummaries recomputes the persisted per-month snapshot
// from the cash ledger and upserts one row per month. Existing months
// are overwritten and months that fell out of the computed range are
// deleted, so the snapshot always mirrors the current chart exactly.
// The snapshot never feeds back into the ledger.
func (s *reportService) RebuildMonthlySummaries() ([]models.MonthlySummary, error) {
	flows, err := s.MonthlyCashFlow()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.MonthlySummary, 0, len(flows))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, flow := range flows {
			var summary models.MonthlySummary
			txErr := tx.Where("year = ? AND month = ?", flow.Year, flow.Month).First(&summary).Error
			switch {
			case txErr == nil:
				summary.Entradas = flow.Entradas
				summary.Saidas = flow.Saidas
				summary.Balance = flow.Balance
				if txErr := tx.Model(&summary).Updates(map[string]interface{}{
					"entradas": flow.Entradas,
					"saidas":   flow.Saidas,
					"balance":  flow.Balance,
				}).Error; txErr != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
				}
			case errors.Is(txErr, gorm.ErrRecordNotFound):
				summary = models.MonthlySummary{
					Year:     flow.Year,
					Month:    flow.Month,
					Entradas: flow.Entradas,
					Saidas:   flow.Saidas,
					Balance:  flow.Balance,
				}
				if txErr := tx.Create(&summary).Error; txErr != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
				}
			default:
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			summaries = append(summaries, summary)
		}

		if len(flows) == 0 {
			if txErr := tx.Where("1 = 1").Delete(&models.MonthlySummary{}).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			return nil
		}
		keys := make([]int, 0, len(flows))
		for _, flow := range flows {
			keys = append(keys, flow.Year*100+flow.Month)
		}
		if txErr := tx.Where("(year * 100 + month) NOT IN ?", keys).
			Delete(&models.MonthlySummary{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
