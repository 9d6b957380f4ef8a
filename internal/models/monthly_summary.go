package models

import "github.com/shopspring/decimal"

// MonthlySummary is a persisted per-month snapshot of the cash ledger,
// rebuilt on demand by the report service. It is a cache of derived
// data, never a source of truth.
type MonthlySummary struct {
	Base
	Year     int             `gorm:"not null;uniqueIndex:idx_month_year" json:"year"`
	Month    int             `gorm:"not null;uniqueIndex:idx_month_year" json:"month"`
	Entradas decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"entradas"`
	Saidas   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"saidas"`
	Balance  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"balance"`
}

// TableName keeps the collection name used by the original store layout.
func (MonthlySummary) TableName() string { return "monthly_summaries" }
