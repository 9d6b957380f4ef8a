package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is a capital or time contribution by a partner. Time
// investments are derived from a completed TimeSession and carry the
// originating session id; there is never more than one investment per
// session.
type Investment struct {
	Base
	Description      string          `gorm:"not null" json:"description"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName         string          `gorm:"not null" json:"user_name"`
	Date             time.Time       `gorm:"not null" json:"date"`
	IsTimeInvestment bool            `gorm:"not null;default:false" json:"is_time_investment"`
	SessionID        *string         `gorm:"type:uuid;index" json:"session_id,omitempty"`
}
