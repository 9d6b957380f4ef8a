package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/NewtonAvila/oticas-avila/internal/errors"
	"github.com/NewtonAvila/oticas-avila/internal/models"
)

// bootstrapCounter inserts the named counter at zero. Two transactions
// can race here on the very first allocation; the loser's insert is a
// no-op and the caller re-reads the surviving row.
func bootstrapCounter(tx *gorm.DB, name string) error {
	counter := models.Counter{Name: name, LastSeq: 0}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&counter).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// nextSeq allocates the next sequence number for the named counter.
// The counter row is locked for the remainder of the enclosing
// transaction, so two concurrent callers can never observe the same
// value. A missing counter starts at zero, making the first allocated
// number 1. Must be called inside a transaction.
func nextSeq(tx *gorm.DB, name string) (int64, error) {
	var counter models.Counter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := bootstrapCounter(tx, name); err != nil {
			return 0, err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).First(&counter).Error
	}
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	counter.LastSeq++
	if err := tx.Model(&models.Counter{}).Where("name = ?", name).
		Update("last_seq", counter.LastSeq).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return counter.LastSeq, nil
}
