// Package tracker orchestrates a calculator submission: compute, append
// to the ledger, and evaluate badges, all inside one transaction.
package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/ecotrackhq/carbon-tracker/internal/factors"
	prommetrics "github.com/ecotrackhq/carbon-tracker/internal/metrics"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/internal/service/badges"
	"github.com/ecotrackhq/carbon-tracker/internal/service/calculator"
	"github.com/ecotrackhq/carbon-tracker/internal/service/offset"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

// Result is what a submission produced. AwardedBadge is empty when no
// new badge was earned.
type Result struct {
	TotalEmissions float64  `json:"total_emissions"`
	Activities     []string `json:"activities"`
	TreesNeeded    int      `json:"trees_needed"`
	AwardedBadge   string   `json:"awarded_badge,omitempty"`
}

// Service runs the submission pipeline.
type Service struct {
	db           *repository.DB
	emissionRepo *repository.EmissionRepository
	badgeRepo    *repository.BadgeRepository
	table        *factors.Table
	estimator    *offset.Estimator
	log          *logger.Logger
}

// NewService creates a new tracker service.
func NewService(
	db *repository.DB,
	emissionRepo *repository.EmissionRepository,
	badgeRepo *repository.BadgeRepository,
	table *factors.Table,
	estimator *offset.Estimator,
	log *logger.Logger,
) *Service {
	return &Service{
		db:           db,
		emissionRepo: emissionRepo,
		badgeRepo:    badgeRepo,
		table:        table,
		estimator:    estimator,
		log:          log,
	}
}

// LogSubmission computes the submission's emissions, appends every
// resulting record to the ledger, and evaluates badges against the
// user's baseline. The append and the badge award commit or roll back
// together.
func (s *Service) LogSubmission(ctx context.Context, userID uint, sub calculator.Submission, now time.Time) (*Result, error) {
	total, drafts, err := calculator.Compute(sub, s.table)
	if err != nil {
		prommetrics.RecordSubmission("invalid", 0)
		return nil, err
	}

	result := &Result{
		TotalEmissions: math.Round(total*100) / 100,
		Activities:     make([]string, 0, len(drafts)),
		TreesNeeded:    s.estimator.TreesNeeded(total),
	}
	for _, d := range drafts {
		result.Activities = append(result.Activities, d.Describe())
	}

	if len(drafts) == 0 {
		prommetrics.RecordSubmission("empty", 0)
		return result, nil
	}

	day := models.DayOf(now)
	records := make([]models.EmissionRecord, 0, len(drafts))
	perCategory := make(map[string]int)
	for _, d := range drafts {
		records = append(records, models.EmissionRecord{
			UserID:        userID,
			Category:      d.Category,
			Activity:      d.Activity,
			EmissionValue: d.Value,
			Date:          day,
		})
		perCategory[d.Category]++
	}

	err = s.db.DB.Transaction(func(tx *gorm.DB) error {
		ledger := s.emissionRepo.WithTx(tx)
		if err := ledger.AppendAll(records); err != nil {
			return fmt.Errorf("failed to append emission records: %w", err)
		}

		todayTotal, err := totalOn(ledger, userID, day)
		if err != nil {
			return err
		}

		badgeSvc := badges.NewService(ledger, s.badgeRepo.WithTx(tx), s.log)
		awarded, err := badgeSvc.EvaluateAndAward(ctx, userID, day, todayTotal)
		if err != nil {
			return err
		}
		result.AwardedBadge = awarded
		return nil
	})
	if err != nil {
		prommetrics.RecordSubmission("error", 0)
		return nil, err
	}

	for category, count := range perCategory {
		prommetrics.RecordLedgerAppend(category, count)
	}
	prommetrics.RecordSubmission("success", total)

	s.log.Info().
		Uint("user_id", userID).
		Float64("total_kg", total).
		Int("records", len(records)).
		Str("badge", result.AwardedBadge).
		Msg("Submission logged")

	return result, nil
}

// totalOn sums the ledger for a single day, after the current
// submission's records are visible in the transaction.
func totalOn(ledger *repository.EmissionRepository, userID uint, day time.Time) (float64, error) {
	totals, err := ledger.DailyTotals(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load daily totals: %w", err)
	}
	for _, dt := range totals {
		if dt.Date.Equal(day) {
			return dt.Total, nil
		}
	}
	return 0, nil
}
