package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeSession is a tracked work interval. EndTime is nil while the
// session is in progress. PausedMillis accumulates completed pauses;
// PausedAt is set while a pause is open so that a client reload cannot
// lose the in-progress pause delta.
type TimeSession struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	StartTime    time.Time       `gorm:"not null" json:"start_time"`
	EndTime      *time.Time      `json:"end_time"`
	PausedMillis int64           `gorm:"not null;default:0" json:"paused_time"`
	PausedAt     *time.Time      `json:"paused_at,omitempty"`
	HourlyRate   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hourly_rate"`
	IsPaid       bool            `gorm:"not null;default:false" json:"is_paid"`
	IsCompleted  bool            `gorm:"not null;default:false" json:"is_completed"`
}

// TableName keeps the collection name used by the original store layout.
func (TimeSession) TableName() string { return "time_sessions" }

// WorkedHours returns the elapsed hours between start and end, minus
// accumulated pause time. Returns 0 for sessions still in progress.
func (s *TimeSession) WorkedHours() float64 {
	if s.EndTime == nil {
		return 0
	}
	elapsed := s.EndTime.Sub(s.StartTime).Milliseconds() - s.PausedMillis
	return float64(elapsed) / 3_600_000
}

// InvestedAmount returns hours * hourly rate rounded to cents.
func (s *TimeSession) InvestedAmount() decimal.Decimal {
	return s.HourlyRate.Mul(decimal.NewFromFloat(s.WorkedHours())).Round(2)
}
