package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtType distinguishes one-off debts from fixed monthly ones.
type DebtType string

const (
	DebtTypeSingle DebtType = "unico"
	DebtTypeFixed  DebtType = "fixo"
)

// Debt is a scheduled or incurred liability. Fixed debts repeat for
// DurationMonths months starting at DueDate.
type Debt struct {
	Base
	Description    string          `gorm:"not null" json:"description"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type           DebtType        `gorm:"not null;default:'unico'" json:"type"`
	DueDate        time.Time       `gorm:"not null" json:"due_date"`
	DurationMonths *int            `json:"duration,omitempty"`
	Paid           bool            `gorm:"not null;default:false" json:"paid"`
	UserID         string          `gorm:"type:uuid;not null" json:"user_id"`
	UserName       string          `gorm:"not null" json:"user_name"`
}
