// Package reporting builds the derived read-only views: dashboard
// summary, category breakdown, weekly trend, and leaderboard. It owns
// no state; everything is computed from the ledger and badge tables.
package reporting

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/ecotrackhq/carbon-tracker/internal/cache"
	prommetrics "github.com/ecotrackhq/carbon-tracker/internal/metrics"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/internal/service/offset"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

const (
	leaderboardCacheKey = "views:leaderboard"
	leaderboardLimit    = 10
	historyLimit        = 20
)

// LedgerRepository interface for ledger reads.
type LedgerRepository interface {
	TotalByUser(userID uint) (float64, error)
	CategoryTotals(userID uint) ([]repository.CategoryTotal, error)
	WeeklyTrend(userID uint, today time.Time) ([]repository.DailyTotal, error)
	History(userID uint, limit int) ([]models.EmissionRecord, error)
	LeaderboardTotals() ([]repository.LeaderboardRow, error)
}

// BadgeRepository interface for badge reads.
type BadgeRepository interface {
	ListByUser(userID uint) ([]models.Badge, error)
}

// Entry is a single leaderboard row, ranked by green score.
type Entry struct {
	Rank           int     `json:"rank"`
	Name           string  `json:"name"`
	TotalEmissions float64 `json:"total_emissions"`
	GreenScore     int     `json:"green_score"`
	BadgeCount     int     `json:"badge_count"`
}

// Dashboard is the per-user summary view.
type Dashboard struct {
	TotalEmissions float64                    `json:"total_emissions"`
	GreenScore     int                        `json:"green_score"`
	Categories     []repository.CategoryTotal `json:"category_emissions"`
	WeeklyTrend    []repository.DailyTotal    `json:"weekly_trend"`
	Badges         []models.Badge             `json:"badges"`
	DailyTip       string                     `json:"daily_tip"`
	TreesNeeded    int                        `json:"trees_needed"`
	TreeAbsorption float64                    `json:"tree_absorption"`
}

// Service computes reporting views.
type Service struct {
	ledgerRepo LedgerRepository
	badgeRepo  BadgeRepository
	estimator  *offset.Estimator
	cache      cache.Cache // nil disables caching
	cacheTTL   time.Duration
	log        *logger.Logger
}

// NewService creates a new reporting service with concrete repository types.
func NewService(
	ledgerRepo *repository.EmissionRepository,
	badgeRepo *repository.BadgeRepository,
	estimator *offset.Estimator,
	c cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		badgeRepo:  badgeRepo,
		estimator:  estimator,
		cache:      c,
		cacheTTL:   cacheTTL,
		log:        log,
	}
}

// NewServiceWithInterfaces creates a new reporting service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	ledgerRepo LedgerRepository,
	badgeRepo BadgeRepository,
	estimator *offset.Estimator,
	c cache.Cache,
	cacheTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		badgeRepo:  badgeRepo,
		estimator:  estimator,
		cache:      c,
		cacheTTL:   cacheTTL,
		log:        log,
	}
}

// GreenScore derives the gamification score from a total: lower
// emissions mean a higher score, floor-clamped at zero.
func GreenScore(totalEmissions float64) int {
	return int(math.Max(0, 1000-totalEmissions*10))
}

// Dashboard builds the per-user summary view.
func (s *Service) Dashboard(ctx context.Context, userID uint, now time.Time) (*Dashboard, error) {
	total, err := s.ledgerRepo.TotalByUser(userID)
	if err != nil {
		return nil, err
	}

	categories, err := s.ledgerRepo.CategoryTotals(userID)
	if err != nil {
		return nil, err
	}

	trend, err := s.ledgerRepo.WeeklyTrend(userID, now)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalEmissions: math.Round(total*100) / 100,
		GreenScore:     GreenScore(total),
		Categories:     categories,
		WeeklyTrend:    trend,
		Badges:         badges,
		DailyTip:       DailyTip(now),
		TreesNeeded:    s.estimator.TreesNeeded(total),
		TreeAbsorption: s.estimator.Rate(),
	}, nil
}

// History returns a user's most recent ledger entries.
func (s *Service) History(ctx context.Context, userID uint) ([]models.EmissionRecord, error) {
	return s.ledgerRepo.History(userID, historyLimit)
}

// Leaderboard returns the top users by green score, served from the
// cache when fresh. Ties keep the underlying storage order (stable sort
// over rows ordered by user id).
func (s *Service) Leaderboard(ctx context.Context) ([]Entry, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, leaderboardCacheKey); err == nil && cached != "" {
			var entries []Entry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				prommetrics.LeaderboardCacheHitsTotal.Inc()
				return entries, nil
			}
		}
		prommetrics.LeaderboardCacheMissesTotal.Inc()
	}

	rows, err := s.ledgerRepo.LeaderboardTotals()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			Name:           row.Name,
			TotalEmissions: math.Round(row.TotalEmissions*100) / 100,
			GreenScore:     GreenScore(row.TotalEmissions),
			BadgeCount:     row.BadgeCount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].GreenScore > entries[j].GreenScore
	})

	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, leaderboardCacheKey, string(payload), s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("Failed to cache leaderboard")
			}
		}
	}

	return entries, nil
}

// InvalidateLeaderboard drops the cached leaderboard after a write.
func (s *Service) InvalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, leaderboardCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}

// ecoTips shown one per day on the dashboard.
var ecoTips = []string{
	"Use public transport to reduce your carbon footprint!",
	"Try eating more plant-based meals this week.",
	"Unplug electronics when not in use to save energy.",
	"Consider carpooling or biking for short trips.",
	"Reduce, reuse, and recycle to minimize waste.",
}

// DailyTip returns the eco tip for a calendar day.
func DailyTip(now time.Time) string {
	return ecoTips[now.YearDay()%len(ecoTips)]
}
