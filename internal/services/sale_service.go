package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

// saleService handles point-of-sale business logic.
type saleService struct {
	db *gorm.DB
}

// NewSaleService creates a new SaleServicer.
func NewSaleService(db *gorm.DB) SaleServicer {
	return &saleService{db: db}
}

// CreateSale registers a sale in a single transaction: the product row
// is locked, the current sale price is snapshotted onto the sale, the
// next sale sequence number is allocated, and the product quantity is
// decremented by the quantity sold. Quantity is allowed to go negative;
// overselling is visible in the inventory rather than blocked at the
// counter.
func (s *saleService) CreateSale(productID string, quantity int, discountPercent decimal.Decimal, soldBy string) (*models.Sale, error) {
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be positive")
	}
	hundred := decimal.NewFromInt(100)
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "discount must be between 0 and 100")
	}

	var sale models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if txErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", productID).First(&product).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrProductNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		seq, txErr := nextSeq(tx, models.CounterSales)
		if txErr != nil {
			return txErr
		}

		unitPrice := product.SalePrice
		finalUnitPrice := models.ComputeFinalUnitPrice(unitPrice, discountPercent)
		sale = models.Sale{
			Seq:             seq,
			ProductID:       productID,
			Description:     product.Description,
			UnitPrice:       unitPrice,
			DiscountPercent: discountPercent,
			FinalUnitPrice:  finalUnitPrice,
			Quantity:        quantity,
			TotalPrice:      finalUnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
			SoldAt:          time.Now(),
			SoldBy:          soldBy,
		}
		if txErr := tx.Create(&sale).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if txErr := tx.Model(&product).
			Update("quantity", gorm.Expr("quantity - ?", quantity)).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &sale, nil
}

// UndoSale reverses a sale: the sale row is deleted and the sold
// quantity is credited back to the product. A missing sale is a benign
// no-op, so retrying an undo can never credit stock twice. If the
// product was deleted after the sale, a stub product is recreated from
// the sale snapshot; its cost and margin are unknown at that point and
// are stored as zero.
func (s *saleService) UndoSale(saleID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if txErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", saleID).First(&sale).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		var product models.Product
		txErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sale.ProductID).First(&product).Error
		switch {
		case txErr == nil:
			if txErr := tx.Model(&product).
				Update("quantity", gorm.Expr("quantity + ?", sale.Quantity)).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			seq, seqErr := nextSeq(tx, models.CounterProducts)
			if seqErr != nil {
				return seqErr
			}
			stub := models.Product{
				Base:        models.Base{ID: sale.ProductID},
				Seq:         seq,
				Description: sale.Description,
				SalePrice:   sale.UnitPrice,
				Quantity:    sale.Quantity,
				CreatedBy:   sale.SoldBy,
				UpdatedBy:   sale.SoldBy,
			}
			if txErr := tx.Create(&stub).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		default:
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if txErr := tx.Delete(&sale).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
}

// GetSaleByID retrieves a sale by ID.
func (s *saleService) GetSaleByID(id string) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.Where("id = ?", id).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSaleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sale, nil
}

// ListSales returns a paginated list of sales, newest sequence first.
// When since is set, only sales sold at or after that instant are
// returned, which backs the recent-sales window on the POS screen.
func (s *saleService) ListSales(page pagination.PageRequest, since *time.Time) (*pagination.PageResponse[models.Sale], error) {
	page.Defaults()

	base := s.db.Model(&models.Sale{})
	if since != nil {
		base = base.Where("sold_at >= ?", *since)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sales []models.Sale
	if err := base.Order("seq DESC").
		Scopes(pagination.Paginate(page)).Find(&sales).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(sales, page.Page, page.PageSize, totalItems)
	return &result, nil
}
