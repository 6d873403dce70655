package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ecotrackhq/carbon-tracker/internal/models"
)

// DailyTotal is a day-grouped sum of a user's ledger entries.
type DailyTotal struct {
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

// CategoryTotal is a per-category sum of a user's ledger entries.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// LeaderboardRow is one user's aggregated footprint for ranking.
type LeaderboardRow struct {
	UserID         uint    `json:"user_id"`
	Name           string  `json:"name"`
	TotalEmissions float64 `json:"total_emissions"`
	BadgeCount     int     `json:"badge_count"`
}

// EmissionRepository handles the append-only emissions ledger.
type EmissionRepository struct {
	db *gorm.DB
}

// NewEmissionRepository creates a new emission repository.
func NewEmissionRepository(db *DB) *EmissionRepository {
	return &EmissionRepository{db: db.DB}
}

// WithTx returns a repository bound to an open transaction so a
// submission's inserts and badge award commit or roll back together.
func (r *EmissionRepository) WithTx(tx *gorm.DB) *EmissionRepository {
	return &EmissionRepository{db: tx}
}

// AppendAll appends a batch of ledger records in a single insert.
// Records are immutable once written; there is no update path.
func (r *EmissionRepository) AppendAll(records []models.EmissionRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to append emission records: %w", err)
	}
	return nil
}

// TotalByUser returns the signed sum of all of a user's ledger entries,
// zero when the ledger is empty.
func (r *EmissionRepository) TotalByUser(userID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.EmissionRecord{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(emission_value), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum emissions for user %d: %w", userID, err)
	}
	return total, nil
}

// CategoryTotals groups a user's ledger by category and sums each group.
func (r *EmissionRepository) CategoryTotals(userID uint) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	err := r.db.Model(&models.EmissionRecord{}).
		Select("category, SUM(emission_value) as total").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get category totals: %w", err)
	}
	return totals, nil
}

// DailyTotals returns all of a user's day-grouped totals, ascending by
// date. Dates are stored normalized to midnight UTC, so grouping on the
// raw column is portable across SQLite and PostgreSQL.
func (r *EmissionRepository) DailyTotals(userID uint) ([]DailyTotal, error) {
	var totals []DailyTotal
	err := r.db.Model(&models.EmissionRecord{}).
		Select("date, SUM(emission_value) as total").
		Where("user_id = ?", userID).
		Group("date").
		Order("date ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily totals: %w", err)
	}
	return totals, nil
}

// WeeklyTrend returns day-grouped totals for the trailing seven calendar
// days ending at today inclusive, ascending by date.
func (r *EmissionRepository) WeeklyTrend(userID uint, today time.Time) ([]DailyTotal, error) {
	cutoff := models.DayOf(today).AddDate(0, 0, -6)

	var totals []DailyTotal
	err := r.db.Model(&models.EmissionRecord{}).
		Select("date, SUM(emission_value) as total").
		Where("user_id = ? AND date >= ?", userID, cutoff).
		Group("date").
		Order("date ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly trend: %w", err)
	}
	return totals, nil
}

// History returns a user's most recent ledger entries, newest first.
func (r *EmissionRepository) History(userID uint, limit int) ([]models.EmissionRecord, error) {
	var records []models.EmissionRecord
	err := r.db.
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get emission history: %w", err)
	}
	return records, nil
}

// LeaderboardTotals aggregates every user's total emissions and badge
// count. Users with no ledger entries appear with a zero total. The
// per-user sums use correlated subqueries rather than a double LEFT
// JOIN, which would fan out and inflate the emission sum. Ordering by
// green score happens in the service layer so the clamped score formula
// stays in one place.
func (r *EmissionRepository) LeaderboardTotals() ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.Raw(`
		SELECT users.id as user_id,
		       users.name,
		       COALESCE((SELECT SUM(e.emission_value) FROM emissions e WHERE e.user_id = users.id), 0) as total_emissions,
		       (SELECT COUNT(DISTINCT b.badge_name) FROM badges b WHERE b.user_id = users.id) as badge_count
		FROM users
		ORDER BY users.id ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard totals: %w", err)
	}
	return rows, nil
}
