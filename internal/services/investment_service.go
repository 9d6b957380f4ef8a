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

// investmentService handles partner investment business logic.
type investmentService struct {
	db *gorm.DB
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB) InvestmentServicer {
	return &investmentService{db: db}
}

// CreateInvestment records a manual capital contribution.
func (s *investmentService) CreateInvestment(description string, amount decimal.Decimal, date time.Time, user *models.User) (*models.Investment, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	investment := &models.Investment{
		Description: description,
		Amount:      amount,
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		Date:        date,
	}
	if err := s.db.Create(investment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investment, nil
}

// GetInvestmentByID retrieves an investment by ID.
func (s *investmentService) GetInvestmentByID(id string) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.Where("id = ?", id).First(&investment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &investment, nil
}

// ListInvestments returns a paginated list of investments, newest first,
// optionally filtered to one user.
func (s *investmentService) ListInvestments(page pagination.PageRequest, userID *string) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	base := s.db.Model(&models.Investment{})
	if userID != nil {
		base = base.Where("user_id = ?", *userID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Order("date DESC").
		Scopes(pagination.Paginate(page)).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateInvestment applies partial updates. Time investments are edited
// through their session, never directly.
func (s *investmentService) UpdateInvestment(id string, description *string, amount *decimal.Decimal, date *time.Time) (*models.Investment, error) {
	investment, err := s.GetInvestmentByID(id)
	if err != nil {
		return nil, err
	}
	if investment.IsTimeInvestment {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "time investments are managed through their session")
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
		if err := s.db.Model(investment).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return investment, nil
}

// DeleteInvestment removes a manual investment.
func (s *investmentService) DeleteInvestment(id string) error {
	investment, err := s.GetInvestmentByID(id)
	if err != nil {
		return err
	}
	if investment.IsTimeInvestment {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "time investments are managed through their session")
	}
	if err := s.db.Delete(investment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// sumAmounts totals the amount column for the given investment filter.
func (s *investmentService) sumAmounts(where string, args ...interface{}) (decimal.Decimal, error) {
	var investments []models.Investment
	q := s.db.Select("amount").Model(&models.Investment{})
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Find(&investments).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for i := range investments {
		total = total.Add(investments[i].Amount)
	}
	return total, nil
}

// TotalInvested returns the sum of all investments across all partners.
func (s *investmentService) TotalInvested() (decimal.Decimal, error) {
	return s.sumAmounts("")
}

// UserContribution returns the sum of one partner's investments.
func (s *investmentService) UserContribution(userID string) (decimal.Decimal, error) {
	return s.sumAmounts("user_id = ?", userID)
}

// UserPercentage returns one partner's share of the total, in percent.
// Zero total means zero percent for everyone.
func (s *investmentService) UserPercentage(userID string) (float64, error) {
	total, err := s.TotalInvested()
	if err != nil {
		return 0, err
	}
	if total.IsZero() {
		return 0, nil
	}

	contribution, err := s.UserContribution(userID)
	if err != nil {
		return 0, err
	}

	pct, _ := contribution.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return pct, nil
}

// AllUserShares returns per-partner totals and percentages for the
// partnership overview.
func (s *investmentService) AllUserShares() ([]UserShare, error) {
	var investments []models.Investment
	if err := s.db.Select("user_id, user_name, amount").Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	byUser := map[string]*UserShare{}
	order := []string{}
	for i := range investments {
		inv := &investments[i]
		total = total.Add(inv.Amount)
		share, ok := byUser[inv.UserID]
		if !ok {
			share = &UserShare{UserID: inv.UserID, UserName: inv.UserName, Amount: decimal.Zero}
			byUser[inv.UserID] = share
			order = append(order, inv.UserID)
		}
		share.Amount = share.Amount.Add(inv.Amount)
	}

	shares := make([]UserShare, 0, len(order))
	for _, id := range order {
		share := byUser[id]
		if !total.IsZero() {
			share.Percentage, _ = share.Amount.Div(total).Mul(decimal.NewFromInt(100)).Float64()
		}
		shares = append(shares, *share)
	}
	return shares, nil
}
