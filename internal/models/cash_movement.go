package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a cash movement.
type MovementType string

const (
	MovementIn  MovementType = "entrada"
	MovementOut MovementType = "saida"
)

// MovementSource records what produced a cash movement.
type MovementSource string

const (
	SourceManual      MovementSource = "manual"
	SourceSale        MovementSource = "sale"
	SourceDebtPayment MovementSource = "debt_payment"
)

// CashMovement is one entry in the manual cash ledger. The balance is
// never stored; it is always the sum of entradas minus saidas.
type CashMovement struct {
	Base
	Type        MovementType    `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
	Date        time.Time       `gorm:"not null" json:"date"`
	UserID      string          `gorm:"type:uuid;not null" json:"user_id"`
	UserName    string          `gorm:"not null" json:"user_name"`
	Source      MovementSource  `gorm:"not null;default:'manual'" json:"source"`
}
