package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

// productService handles product catalog business logic.
type productService struct {
	db *gorm.DB
}

// NewProductService creates a new ProductServicer.
func NewProductService(db *gorm.DB) ProductServicer {
	return &productService{db: db}
}

// CreateProduct allocates the next product sequence number and inserts
// the product in one transaction. The sale price is derived from cost
// and margin at write time and stored.
func (s *productService) CreateProduct(description string, costPrice, profitMargin decimal.Decimal, quantity int, createdBy string) (*models.Product, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if costPrice.IsNegative() || profitMargin.IsNegative() || quantity < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cost, margin and quantity must not be negative")
	}

	product := &models.Product{
		Description:  description,
		CostPrice:    costPrice,
		ProfitMargin: profitMargin,
		SalePrice:    models.ComputeSalePrice(costPrice, profitMargin),
		Quantity:     quantity,
		CreatedBy:    createdBy,
		UpdatedBy:    createdBy,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		seq, txErr := nextSeq(tx, models.CounterProducts)
		if txErr != nil {
			return txErr
		}
		product.Seq = seq

		if txErr := tx.Create(product).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// GetProductByID retrieves a product by ID.
func (s *productService) GetProductByID(id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &product, nil
}

// ListProducts returns a paginated list of products ordered by sequence number.
func (s *productService) ListProducts(page pagination.PageRequest) (*pagination.PageResponse[models.Product], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Product{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var products []models.Product
	if err := s.db.Order("seq ASC").
		Scopes(pagination.Paginate(page)).Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(products, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SearchProducts looks up products for the POS screen. A numeric query
// matches the sequence number exactly; otherwise the query is a
// case-insensitive description prefix.
func (s *productService) SearchProducts(query string, limit int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var products []models.Product
	if seq, err := strconv.ParseInt(query, 10, 64); err == nil {
		if err := s.db.Where("seq = ?", seq).Limit(limit).Find(&products).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(products) > 0 {
			return products, nil
		}
	}

	if err := s.db.Where("LOWER(description) LIKE ?", strings.ToLower(query)+"%").
		Order("description ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return products, nil
}

// UpdateProduct applies partial updates. The sale price is recomputed
// from the effective cost and margin whenever either changes; the
// sequence number is immutable. Stock is never touched here: quantity
// is set at creation and only moves through sale create and undo
// transactions.
func (s *productService) UpdateProduct(id string, description *string, costPrice, profitMargin *decimal.Decimal, updatedBy string) (*models.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_by": updatedBy}
	if description != nil {
		if *description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description must not be empty")
		}
		updates["description"] = *description
	}

	cost := product.CostPrice
	margin := product.ProfitMargin
	if costPrice != nil {
		if costPrice.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cost must not be negative")
		}
		cost = *costPrice
		updates["cost_price"] = cost
	}
	if profitMargin != nil {
		if profitMargin.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "margin must not be negative")
		}
		margin = *profitMargin
		updates["profit_margin"] = margin
	}
	if costPrice != nil || profitMargin != nil {
		updates["sale_price"] = models.ComputeSalePrice(cost, margin)
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return product, nil
}

// DeleteProduct removes a product permanently. Past sales keep their
// stored snapshots and are not touched.
func (s *productService) DeleteProduct(id string) error {
	product, err := s.GetProductByID(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(product).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// TotalProductValue sums the sale price of every catalog product.
func (s *productService) TotalProductValue() (decimal.Decimal, error) {
	var products []models.Product
	if err := s.db.Select("sale_price").Find(&products).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for i := range products {
		total = total.Add(products[i].SalePrice)
	}
	return total, nil
}
