// Package badges decides which gamification badge, if any, a calculator
// submission earns, and awards it idempotently per calendar day.
package badges

import (
	"context"
	"fmt"
	"time"

	prommetrics "github.com/ecotrackhq/carbon-tracker/internal/metrics"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

// LedgerRepository interface for ledger reads.
type LedgerRepository interface {
	DailyTotals(userID uint) ([]repository.DailyTotal, error)
}

// BadgeRepository interface for badge writes.
type BadgeRepository interface {
	Award(userID uint, badgeName string, day time.Time) (bool, error)
	ListByUser(userID uint) ([]models.Badge, error)
}

// Service evaluates and awards badges.
type Service struct {
	ledgerRepo LedgerRepository
	badgeRepo  BadgeRepository
	log        *logger.Logger
}

// NewService creates a new badge service with concrete repository types.
func NewService(ledgerRepo *repository.EmissionRepository, badgeRepo *repository.BadgeRepository, log *logger.Logger) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		badgeRepo:  badgeRepo,
		log:        log,
	}
}

// NewServiceWithInterfaces creates a new badge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(ledgerRepo LedgerRepository, badgeRepo BadgeRepository, log *logger.Logger) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		badgeRepo:  badgeRepo,
		log:        log,
	}
}

// EvaluateAndAward evaluates today's total against the user's baseline
// and awards at most one badge tier. Returns the awarded badge name, or
// the empty string when no badge applies or the same tier was already
// awarded today (no duplicate, no re-notify).
func (s *Service) EvaluateAndAward(ctx context.Context, userID uint, today time.Time, todayTotal float64) (string, error) {
	history, err := s.ledgerRepo.DailyTotals(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load daily totals: %w", err)
	}

	baseline, ok := Baseline(history, today)
	if !ok {
		// First day of tracking: no history to compare against.
		s.log.Debug().Uint("user_id", userID).Msg("No prior history, skipping badge evaluation")
		return "", nil
	}

	tier := SelectTier(baseline, todayTotal)
	if tier == "" {
		return "", nil
	}

	inserted, err := s.badgeRepo.Award(userID, tier, today)
	if err != nil {
		return "", fmt.Errorf("failed to award badge: %w", err)
	}
	if !inserted {
		// Already earned this tier today.
		return "", nil
	}

	prommetrics.RecordBadgeAwarded(tier)
	s.log.Info().
		Uint("user_id", userID).
		Str("badge", tier).
		Float64("baseline", baseline).
		Float64("today", todayTotal).
		Msg("Badge awarded")

	return tier, nil
}

// UserBadges retrieves all badges earned by a user, newest first.
func (s *Service) UserBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	return s.badgeRepo.ListByUser(userID)
}
