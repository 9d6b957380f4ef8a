package models

import "github.com/shopspring/decimal"

// Product is a sellable inventory item. SalePrice is derived from
// CostPrice and ProfitMargin at every create/update; Quantity is mutated
// only inside sale-create and sale-undo transactions.
type Product struct {
	Base
	Seq          int64           `gorm:"uniqueIndex;not null" json:"seq"`
	Description  string          `gorm:"not null" json:"description"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	ProfitMargin decimal.Decimal `gorm:"type:decimal(7,2);not null" json:"profit_margin"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sale_price"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	CreatedBy    string          `gorm:"type:uuid" json:"created_by"`
	UpdatedBy    string          `gorm:"type:uuid" json:"updated_by,omitempty"`
}

// ComputeSalePrice derives the sale price: cost * (1 + margin/100).
func ComputeSalePrice(cost, margin decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	return cost.Mul(one.Add(margin.Div(hundred))).Round(2)
}
