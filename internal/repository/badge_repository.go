package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecotrackhq/carbon-tracker/internal/models"
)

// BadgeRepository handles badge-related database operations.
type BadgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db.DB}
}

// WithTx returns a repository bound to an open transaction.
func (r *BadgeRepository) WithTx(tx *gorm.DB) *BadgeRepository {
	return &BadgeRepository{db: tx}
}

// Award awards a badge to a user for a calendar day. The insert rides
// the (user_id, badge_name, award_date) unique index with
// insert-or-ignore, so repeated awards for the same day are silently
// dropped without a check-then-insert race. Returns true if a row was
// actually inserted.
func (r *BadgeRepository) Award(userID uint, badgeName string, day time.Time) (bool, error) {
	badge := models.Badge{
		UserID:     userID,
		BadgeName:  badgeName,
		AwardDate:  models.DayOf(day),
		DateEarned: time.Now().UTC(),
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_name"}, {Name: "award_date"}},
		DoNothing: true,
	}).Create(&badge)
	if result.Error != nil {
		return false, fmt.Errorf("failed to award badge: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// HasBadgeOnDay checks whether a user already holds a badge of the given
// name for a calendar day.
func (r *BadgeRepository) HasBadgeOnDay(userID uint, badgeName string, day time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Badge{}).
		Where("user_id = ? AND badge_name = ? AND award_date = ?", userID, badgeName, models.DayOf(day)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check badge for day: %w", err)
	}
	return count > 0, nil
}

// ListByUser retrieves all badges earned by a user, newest first.
func (r *BadgeRepository) ListByUser(userID uint) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.
		Where("user_id = ?", userID).
		Order("date_earned DESC").
		Find(&badges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// CountByUser returns the total number of badges a user has earned.
func (r *BadgeRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Badge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

