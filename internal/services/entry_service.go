package services

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

// entryService handles planned entries and unplanned expenses.
type entryService struct {
	db *gorm.DB
}

// NewEntryService creates a new EntryServicer.
func NewEntryService(db *gorm.DB) EntryServicer {
	return &entryService{db: db}
}

// CreateEntry records a planned revenue entry.
func (s *entryService) CreateEntry(description string, amount decimal.Decimal, date time.Time, userID string) (*models.Entry, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	entry := &models.Entry{
		Description: description,
		Amount:      amount,
		Date:        date,
		UserID:      userID,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// ListEntries returns a paginated list of entries, newest first.
func (s *entryService) ListEntries(page pagination.PageRequest) (*pagination.PageResponse[models.Entry], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Entry{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.Entry
	if err := s.db.Order("date DESC").
		Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateEntry applies partial updates to an entry.
func (s *entryService) UpdateEntry(id string, description *string, amount *decimal.Decimal, date *time.Time) (*models.Entry, error) {
	var entry models.Entry
	if err := s.db.Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
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
	if date != nil {
		updates["date"] = *date
	}

	if len(updates) > 0 {
		if err := s.db.Model(&entry).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &entry, nil
}

// DeleteEntry removes an entry permanently.
func (s *entryService) DeleteEntry(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.Entry{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrEntryNotFound
	}
	return nil
}

// EntriesByMonth groups all entries into calendar-month buckets with
// per-month totals, newest month first.
func (s *entryService) EntriesByMonth() ([]MonthGroup[models.Entry], error) {
	var entries []models.Entry
	if err := s.db.Order("date DESC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groupByMonth(entries, func(e models.Entry) (time.Time, decimal.Decimal) {
		return e.Date, e.Amount
	}), nil
}

// CreateExpense records an unplanned expense.
func (s *entryService) CreateExpense(description string, amount decimal.Decimal, date time.Time, user *models.User) (*models.UnplannedExpense, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	expense := &models.UnplannedExpense{
		Description: description,
		Amount:      amount,
		Date:        date,
		UserID:      user.ID,
		UserName:    user.DisplayName(),
	}
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// ListExpenses returns a paginated list of unplanned expenses, newest first.
func (s *entryService) ListExpenses(page pagination.PageRequest) (*pagination.PageResponse[models.UnplannedExpense], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.UnplannedExpense{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.UnplannedExpense
	if err := s.db.Order("date DESC").
		Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateExpense applies partial updates to an unplanned expense.
func (s *entryService) UpdateExpense(id string, description *string, amount *decimal.Decimal, date *time.Time) (*models.UnplannedExpense, error) {
	var expense models.UnplannedExpense
	if err := s.db.Where("id = ?", id).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
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
	if date != nil {
		updates["date"] = *date
	}

	if len(updates) > 0 {
		if err := s.db.Model(&expense).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &expense, nil
}

// DeleteExpense removes an unplanned expense permanently.
func (s *entryService) DeleteExpense(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.UnplannedExpense{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrExpenseNotFound
	}
	return nil
}

// ExpensesByMonth groups all unplanned expenses into calendar-month
// buckets with per-month totals, newest month first.
func (s *entryService) ExpensesByMonth() ([]MonthGroup[models.UnplannedExpense], error) {
	var expenses []models.UnplannedExpense
	if err := s.db.Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return groupByMonth(expenses, func(e models.UnplannedExpense) (time.Time, decimal.Decimal) {
		return e.Date, e.Amount
	}), nil
}

// groupByMonth partitions records into calendar-month buckets, newest
// month first.
func groupByMonth[T any](items []T, key func(T) (time.Time, decimal.Decimal)) []MonthGroup[T] {
	type bucket struct {
		group MonthGroup[T]
	}
	byMonth := map[[2]int]*bucket{}
	for _, item := range items {
		date, amount := key(item)
		k := [2]int{date.Year(), int(date.Month())}
		b, ok := byMonth[k]
		if !ok {
			b = &bucket{group: MonthGroup[T]{Year: k[0], Month: k[1], Total: decimal.Zero}}
			byMonth[k] = b
		}
		b.group.Total = b.group.Total.Add(amount)
		b.group.Items = append(b.group.Items, item)
	}

	groups := make([]MonthGroup[T], 0, len(byMonth))
	for _, b := range byMonth {
		groups = append(groups, b.group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year > groups[j].Year
		}
		return groups[i].Month > groups[j].Month
	})
	return groups
}
