package models

import (
	"time"
)

// EmissionRecord is one row of the append-only emissions ledger.
// EmissionValue is signed kg CO2: negative values are offset actions
// (recycling, composting). Records are never updated or deleted.
type EmissionRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category      string    `gorm:"size:50;not null;index" json:"category"`
	Activity      string    `gorm:"size:255;not null" json:"activity"`
	EmissionValue float64   `gorm:"not null" json:"emission_value"`
	Date          time.Time `gorm:"type:date;not null;index" json:"date"` // day granularity, midnight UTC
}

// TableName specifies the table name for EmissionRecord model.
func (EmissionRecord) TableName() string {
	return "emissions"
}

// Emission categories.
const (
	CategoryTransportation = "Transportation"
	CategoryFood           = "Food"
	CategoryEnergy         = "Energy"
	CategoryWaste          = "Waste"
)

// DayOf truncates a timestamp to its calendar date at midnight UTC.
// Ledger dates are always stored normalized so day-grouping queries
// behave identically on SQLite and PostgreSQL.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
