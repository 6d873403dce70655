package models

import (
	"time"
)

// Badge tier names, lowest to highest.
const (
	BadgeBronze = "Bronze Earth Friend"
	BadgeSilver = "Silver Green Champion"
	BadgeGold   = "Gold Eco Warrior"
)

// Badge represents a gamification badge awarded to a user.
// The composite unique index enforces at most one badge of a given
// name per user per calendar day; awards use insert-or-ignore against
// it rather than a check-then-insert.
type Badge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_badges_user_name_day" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BadgeName  string    `gorm:"size:100;not null;uniqueIndex:idx_badges_user_name_day" json:"badge_name"`
	AwardDate  time.Time `gorm:"type:date;not null;uniqueIndex:idx_badges_user_name_day" json:"award_date"`
	DateEarned time.Time `gorm:"not null" json:"date_earned"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}
