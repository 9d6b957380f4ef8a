package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale transaction against one product. Price fields
// are snapshots taken at transaction time and are never recomputed when
// the product's price later changes. Canceled is stored for wire
// compatibility; reversal is a physical delete plus inventory credit,
// not a flag toggle.
type Sale struct {
	Base
	Seq             int64           `gorm:"uniqueIndex;not null" json:"seq"`
	ProductID       string          `gorm:"type:uuid;not null;index" json:"product_id"`
	Description     string          `gorm:"not null" json:"description"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,2);not null;default:0" json:"discount_percent"`
	FinalUnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_unit_price"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	SoldAt          time.Time       `gorm:"not null" json:"sold_at"`
	SoldBy          string          `gorm:"type:uuid;not null" json:"sold_by"`
	Canceled        bool            `gorm:"not null;default:false" json:"canceled"`
}

// TableName keeps the collection name used by the original store layout.
func (Sale) TableName() string { return "vendas" }

// ComputeFinalUnitPrice derives the discounted unit price: unit * (1 - discount/100).
func ComputeFinalUnitPrice(unit, discount decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	return unit.Mul(one.Sub(discount.Div(hundred))).Round(2)
}
