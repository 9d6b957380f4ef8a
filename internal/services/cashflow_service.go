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

// cashflowService handles the manual cash ledger.
type cashflowService struct {
	db *gorm.DB
}

// NewCashflowService creates a new CashflowServicer.
func NewCashflowService(db *gorm.DB) CashflowServicer {
	return &cashflowService{db: db}
}

// CreateMovement records a manual cash entry or exit.
func (s *cashflowService) CreateMovement(movementType models.MovementType, amount decimal.Decimal, description string, date time.Time, user *models.User) (*models.CashMovement, error) {
	if movementType != models.MovementIn && movementType != models.MovementOut {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be entrada or saida")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}

	movement := &models.CashMovement{
		Type:        movementType,
		Amount:      amount,
		Description: description,
		Date:        date,
		UserID:      user.ID,
		UserName:    user.DisplayName(),
		Source:      models.SourceManual,
	}
	if err := s.db.Create(movement).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return movement, nil
}

// GetMovementByID retrieves a cash movement by ID.
func (s *cashflowService) GetMovementByID(id string) (*models.CashMovement, error) {
	var movement models.CashMovement
	if err := s.db.Where("id = ?", id).First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMovementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &movement, nil
}

// ListMovements returns a paginated list of movements, newest first,
// optionally filtered by direction.
func (s *cashflowService) ListMovements(page pagination.PageRequest, movementType *models.MovementType) (*pagination.PageResponse[models.CashMovement], error) {
	page.Defaults()

	base := s.db.Model(&models.CashMovement{})
	if movementType != nil {
		base = base.Where("type = ?", *movementType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var movements []models.CashMovement
	if err := base.Order("date DESC").
		Scopes(pagination.Paginate(page)).Find(&movements).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(movements, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateMovement applies partial updates to a manual movement.
func (s *cashflowService) UpdateMovement(id string, movementType *models.MovementType, amount *decimal.Decimal, description *string, date *time.Time) (*models.CashMovement, error) {
	movement, err := s.GetMovementByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if movementType != nil {
		if *movementType != models.MovementIn && *movementType != models.MovementOut {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be entrada or saida")
		}
		updates["type"] = *movementType
	}
	if amount != nil {
		if !amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
		}
		updates["amount"] = *amount
	}
	if description != nil {
		if *description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must not be empty")
		}
		updates["description"] = *description
	}
	if date != nil {
		updates["date"] = *date
	}

	if len(updates) > 0 {
		if err := s.db.Model(movement).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return movement, nil
}

// DeleteMovement removes a cash movement permanently.
func (s *cashflowService) DeleteMovement(id string) error {
	movement, err := s.GetMovementByID(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(movement).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Balance returns total entradas minus total saidas across the whole
// ledger. The balance is always derived, never stored.
func (s *cashflowService) Balance() (decimal.Decimal, error) {
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
	return balance, nil
}
