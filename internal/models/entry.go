package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a planned revenue entry grouped by calendar month on the
// cash-flow screens.
type Entry struct {
	Base
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`
	UserID      string          `gorm:"type:uuid;not null" json:"user_id"`
}

// UnplannedExpense is an unbudgeted outgoing amount, kept apart from
// debts so the extended balance can subtract it separately.
type UnplannedExpense struct {
	Base
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`
	UserID      string          `gorm:"type:uuid;not null" json:"user_id"`
	UserName    string          `gorm:"not null" json:"user_name"`
}
