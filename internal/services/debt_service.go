package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

// debtService handles debt tracking business logic.
type debtService struct {
	db *gorm.DB
}

// NewDebtService creates a new DebtServicer.
func NewDebtService(db *gorm.DB) DebtServicer {
	return &debtService{db: db}
}

// CreateDebt records a liability. Fixed debts carry a duration in
// months; due dates in the future are allowed and extend the report
// horizon.
func (s *debtService) CreateDebt(description string, amount decimal.Decimal, debtType models.DebtType, dueDate time.Time, durationMonths *int, user *models.User) (*models.Debt, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if debtType == models.DebtTypeFixed && (durationMonths == nil || *durationMonths < 1) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "fixed debts require a duration of at least one month")
	}
	if debtType == models.DebtTypeSingle {
		durationMonths = nil
	}

	debt := &models.Debt{
		Description:    description,
		Amount:         amount,
		Type:           debtType,
		DueDate:        dueDate,
		DurationMonths: durationMonths,
		UserID:         user.ID,
		UserName:       user.DisplayName(),
	}
	if err := s.db.Create(debt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return debt, nil
}

// GetDebtByID retrieves a debt by ID.
func (s *debtService) GetDebtByID(id string) (*models.Debt, error) {
	var debt models.Debt
	if err := s.db.Where("id = ?", id).First(&debt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDebtNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &debt, nil
}

// ListDebts returns a paginated list of debts by due date, optionally
// filtered by paid state.
func (s *debtService) ListDebts(page pagination.PageRequest, paid *bool) (*pagination.PageResponse[models.Debt], error) {
	page.Defaults()

	base := s.db.Model(&models.Debt{})
	if paid != nil {
		base = base.Where("paid = ?", *paid)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var debts []models.Debt
	if err := base.Order("due_date ASC").
		Scopes(pagination.Paginate(page)).Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(debts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateDebt applies partial updates.
func (s *debtService) UpdateDebt(id string, description *string, amount *decimal.Decimal, debtType *models.DebtType, dueDate *time.Time, durationMonths *int) (*models.Debt, error) {
	debt, err := s.GetDebtByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if description != nil {
		if *description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must not be empty")
		}
		updates["description"] = *description
	}
	if amount != nil {
		if !amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
		}
		updates["amount"] = *amount
	}
	if debtType != nil {
		updates["type"] = *debtType
		if *debtType == models.DebtTypeSingle {
			updates["duration_months"] = nil
		}
	}
	if dueDate != nil {
		updates["due_date"] = *dueDate
	}
	if durationMonths != nil {
		if *durationMonths < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration must be at least one month")
		}
		updates["duration_months"] = *durationMonths
	}

	if len(updates) > 0 {
		if err := s.db.Model(debt).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return debt, nil
}

// DeleteDebt removes a debt permanently.
func (s *debtService) DeleteDebt(id string) error {
	debt, err := s.GetDebtByID(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(debt).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *debtService) setPaid(id string, paid bool) (*models.Debt, error) {
	debt, err := s.GetDebtByID(id)
	if err != nil {
		return nil, err
	}
	if debt.Paid == paid {
		return debt, nil
	}
	if err := s.db.Model(debt).Update("paid", paid).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return debt, nil
}

// MarkPaid flags a debt as settled.
func (s *debtService) MarkPaid(id string) (*models.Debt, error) {
	return s.setPaid(id, true)
}

// MarkUnpaid reverts a debt to outstanding.
func (s *debtService) MarkUnpaid(id string) (*models.Debt, error) {
	return s.setPaid(id, false)
}

// DebtsByMonth groups all debts into due-month buckets with per-month
// totals, newest month first.
func (s *debtService) DebtsByMonth() ([]MonthGroup[models.Debt], error) {
	var debts []models.Debt
	if err := s.db.Order("due_date DESC").Find(&debts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groupByMonth(debts, func(d models.Debt) (time.Time, decimal.Decimal) {
		return d.DueDate, d.Amount
	}), nil
}
