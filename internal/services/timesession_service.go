package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
	"github.com/NewtonAvila/oticas-avila/internal/pagination"
)

// timeSessionService handles time tracking business logic. A session
// that ends unpaid becomes a time investment; that investment is kept
// in sync with the session inside the same transaction on every stop,
// retroactive edit, and delete.
type timeSessionService struct {
	db *gorm.DB
}

// NewTimeSessionService creates a new TimeSessionServicer.
func NewTimeSessionService(db *gorm.DB) TimeSessionServicer {
	return &timeSessionService{db: db}
}

// timeInvestmentDescription renders the label shown on investment lists.
func timeInvestmentDescription(hours float64) string {
	return fmt.Sprintf("Investimento de Tempo (%.2fh)", hours)
}

// openSession returns the user's single non-completed session.
func (s *timeSessionService) openSession(tx *gorm.DB, userID string) (*models.TimeSession, error) {
	var session models.TimeSession
	err := tx.Where("user_id = ? AND is_completed = ?", userID, false).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotRunning
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &session, nil
}

// StartSession opens a new session for the user. At most one session
// per user may be open at a time.
func (s *timeSessionService) StartSession(userID string, hourlyRate decimal.Decimal) (*models.TimeSession, error) {
	if hourlyRate.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "hourly rate must not be negative")
	}

	var count int64
	if err := s.db.Model(&models.TimeSession{}).
		Where("user_id = ? AND is_completed = ?", userID, false).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrSessionAlreadyRunning
	}

	session := &models.TimeSession{
		UserID:     userID,
		StartTime:  time.Now(),
		HourlyRate: hourlyRate,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return session, nil
}

// PauseSession marks the open session as paused. The pause start is
// persisted so a client reload cannot lose the pause in progress.
func (s *timeSessionService) PauseSession(userID string) (*models.TimeSession, error) {
	session, err := s.openSession(s.db, userID)
	if err != nil {
		return nil, err
	}
	if session.PausedAt != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "session is already paused")
	}

	now := time.Now()
	if err := s.db.Model(session).Update("paused_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	session.PausedAt = &now
	return session, nil
}

// ResumeSession closes the open pause and folds it into the
// accumulated pause time.
func (s *timeSessionService) ResumeSession(userID string) (*models.TimeSession, error) {
	session, err := s.openSession(s.db, userID)
	if err != nil {
		return nil, err
	}
	if session.PausedAt == nil {
		return nil, apperrors.ErrSessionNotPaused
	}

	session.PausedMillis += time.Since(*session.PausedAt).Milliseconds()
	session.PausedAt = nil
	if err := s.db.Model(session).Updates(map[string]interface{}{
		"paused_millis": session.PausedMillis,
		"paused_at":     nil,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return session, nil
}

// StopSession completes the open session. When the time was not paid
// out, the worked hours become a time investment; session update and
// investment insert commit or roll back together.
func (s *timeSessionService) StopSession(userID string, isPaid bool) (*models.TimeSession, error) {
	var session *models.TimeSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		session, txErr = s.openSession(tx, userID)
		if txErr != nil {
			return txErr
		}

		now := time.Now()
		if session.PausedAt != nil {
			session.PausedMillis += now.Sub(*session.PausedAt).Milliseconds()
			session.PausedAt = nil
		}
		session.EndTime = &now
		session.IsCompleted = true
		session.IsPaid = isPaid

		if txErr := tx.Model(session).Updates(map[string]interface{}{
			"end_time":      now,
			"paused_millis": session.PausedMillis,
			"paused_at":     nil,
			"is_completed":  true,
			"is_paid":       isPaid,
		}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if isPaid {
			return nil
		}

		var user models.User
		if txErr := tx.Where("id = ?", userID).First(&user).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		hours := session.WorkedHours()
		investment := &models.Investment{
			Description:      timeInvestmentDescription(hours),
			Amount:           session.InvestedAmount(),
			UserID:           userID,
			UserName:         user.DisplayName(),
			Date:             now,
			IsTimeInvestment: true,
			SessionID:        &session.ID,
		}
		if txErr := tx.Create(investment).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSessionByID retrieves a session by ID.
func (s *timeSessionService) GetSessionByID(id string) (*models.TimeSession, error) {
	var session models.TimeSession
	if err := s.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &session, nil
}

// GetCurrentSession returns the user's open session, if any.
func (s *timeSessionService) GetCurrentSession(userID string) (*models.TimeSession, error) {
	return s.openSession(s.db, userID)
}

// ListSessions returns a paginated list of sessions, newest first.
// An empty userID lists sessions across all users.
func (s *timeSessionService) ListSessions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.TimeSession], error) {
	page.Defaults()

	base := s.db.Model(&models.TimeSession{})
	if userID != "" {
		base = base.Where("user_id = ?", userID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var sessions []models.TimeSession
	if err := base.Order("start_time DESC").
		Scopes(pagination.Paginate(page)).Find(&sessions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(sessions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateSession applies a retroactive edit to a completed session and
// reconciles the linked investment in the same transaction: an unpaid
// session ends up with exactly one investment carrying the recomputed
// amount, a paid session ends up with none.
func (s *timeSessionService) UpdateSession(sessionID string, startTime, endTime *time.Time, pausedMillis *int64, hourlyRate *decimal.Decimal, isPaid *bool) (*models.TimeSession, error) {
	var session models.TimeSession
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sessionID).First(&session).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrSessionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if !session.IsCompleted {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "only completed sessions can be edited")
		}

		if startTime != nil {
			session.StartTime = *startTime
		}
		if endTime != nil {
			session.EndTime = endTime
		}
		if pausedMillis != nil {
			if *pausedMillis < 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "paused time must not be negative")
			}
			session.PausedMillis = *pausedMillis
		}
		if hourlyRate != nil {
			if hourlyRate.IsNegative() {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "hourly rate must not be negative")
			}
			session.HourlyRate = *hourlyRate
		}
		if isPaid != nil {
			session.IsPaid = *isPaid
		}
		if session.EndTime != nil && session.EndTime.Before(session.StartTime) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "end time must not precede start time")
		}

		if txErr := tx.Model(&session).Updates(map[string]interface{}{
			"start_time":    session.StartTime,
			"end_time":      session.EndTime,
			"paused_millis": session.PausedMillis,
			"hourly_rate":   session.HourlyRate,
			"is_paid":       session.IsPaid,
		}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		var investment models.Investment
		invErr := tx.Where("session_id = ?", session.ID).First(&investment).Error
		hasInvestment := invErr == nil
		if invErr != nil && !errors.Is(invErr, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrInternalServer, invErr)
		}

		switch {
		case session.IsPaid && hasInvestment:
			if txErr := tx.Delete(&investment).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		case !session.IsPaid && hasInvestment:
			hours := session.WorkedHours()
			if txErr := tx.Model(&investment).Updates(map[string]interface{}{
				"description": timeInvestmentDescription(hours),
				"amount":      session.InvestedAmount(),
			}).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		case !session.IsPaid && !hasInvestment:
			var user models.User
			if txErr := tx.Where("id = ?", session.UserID).First(&user).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
			hours := session.WorkedHours()
			created := &models.Investment{
				Description:      timeInvestmentDescription(hours),
				Amount:           session.InvestedAmount(),
				UserID:           session.UserID,
				UserName:         user.DisplayName(),
				Date:             *session.EndTime,
				IsTimeInvestment: true,
				SessionID:        &session.ID,
			}
			if txErr := tx.Create(created).Error; txErr != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session together with its derived investment.
func (s *timeSessionService) DeleteSession(sessionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var session models.TimeSession
		if txErr := tx.Where("id = ?", sessionID).First(&session).Error; txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return apperrors.ErrSessionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}

		if txErr := tx.Where("session_id = ?", sessionID).Delete(&models.Investment{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(&session).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
}
