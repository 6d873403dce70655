package reporting

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ecotrackhq/carbon-tracker/internal/cache"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
	"github.com/ecotrackhq/carbon-tracker/internal/service/offset"
	"github.com/ecotrackhq/carbon-tracker/pkg/logger"
)

type mockLedgerRepository struct {
	total      float64
	categories []repository.CategoryTotal
	trend      []repository.DailyTotal
	history    []models.EmissionRecord
	rows       []repository.LeaderboardRow
	rowsCalls  int
}

func (m *mockLedgerRepository) TotalByUser(userID uint) (float64, error) {
	return m.total, nil
}

func (m *mockLedgerRepository) CategoryTotals(userID uint) ([]repository.CategoryTotal, error) {
	return m.categories, nil
}

func (m *mockLedgerRepository) WeeklyTrend(userID uint, today time.Time) ([]repository.DailyTotal, error) {
	return m.trend, nil
}

func (m *mockLedgerRepository) History(userID uint, limit int) ([]models.EmissionRecord, error) {
	if limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockLedgerRepository) LeaderboardTotals() ([]repository.LeaderboardRow, error) {
	m.rowsCalls++
	return m.rows, nil
}

type mockBadgeRepository struct {
	badges []models.Badge
}

func (m *mockBadgeRepository) ListByUser(userID uint) ([]models.Badge, error) {
	return m.badges, nil
}

type mockCache struct {
	data map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockCache) Health(ctx context.Context) error { return nil }

func (m *mockCache) Close() error { return nil }

var _ cache.Cache = (*mockCache)(nil)

func newTestService(ledger *mockLedgerRepository, badges *mockBadgeRepository, c cache.Cache) *Service {
	log := logger.New("error", "json", "stdout")
	return NewServiceWithInterfaces(ledger, badges, offset.NewEstimator(offset.DefaultTreeKgPerYear), c, time.Minute, log)
}

func TestGreenScore(t *testing.T) {
	tests := []struct {
		total float64
		want  int
	}{
		{0, 1000},
		{10, 900},
		{99.75, 2},
		{100, 0},
		{250, 0},
		{-5, 1050},
	}

	for _, tt := range tests {
		if got := GreenScore(tt.total); got != tt.want {
			t.Errorf("GreenScore(%v) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestService_Dashboard(t *testing.T) {
	ledger := &mockLedgerRepository{
		total: 42.005,
		categories: []repository.CategoryTotal{
			{Category: models.CategoryTransportation, Total: 40.0},
			{Category: models.CategoryWaste, Total: 2.005},
		},
		trend: []repository.DailyTotal{
			{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Total: 12.0},
			{Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), Total: 30.005},
		},
	}
	badges := &mockBadgeRepository{
		badges: []models.Badge{{UserID: 1, BadgeName: models.BadgeGold}},
	}
	svc := newTestService(ledger, badges, nil)

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	dash, err := svc.Dashboard(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	if dash.TotalEmissions != 42.01 {
		t.Errorf("TotalEmissions = %v, want 42.01", dash.TotalEmissions)
	}
	if dash.GreenScore != 579 {
		t.Errorf("GreenScore = %d, want 579", dash.GreenScore)
	}
	if len(dash.Categories) != 2 {
		t.Errorf("Categories length = %d, want 2", len(dash.Categories))
	}
	if len(dash.WeeklyTrend) != 2 {
		t.Errorf("WeeklyTrend length = %d, want 2", len(dash.WeeklyTrend))
	}
	if len(dash.Badges) != 1 {
		t.Errorf("Badges length = %d, want 1", len(dash.Badges))
	}
	// ceil(42.005 / 21) = 3
	if dash.TreesNeeded != 3 {
		t.Errorf("TreesNeeded = %d, want 3", dash.TreesNeeded)
	}
	if dash.TreeAbsorption != offset.DefaultTreeKgPerYear {
		t.Errorf("TreeAbsorption = %v, want %v", dash.TreeAbsorption, offset.DefaultTreeKgPerYear)
	}
	if dash.DailyTip == "" {
		t.Error("DailyTip should not be empty")
	}
}

func TestDailyTip_DeterministicPerDay(t *testing.T) {
	day := time.Date(2026, 7, 4, 3, 0, 0, 0, time.UTC)
	later := time.Date(2026, 7, 4, 22, 0, 0, 0, time.UTC)
	if DailyTip(day) != DailyTip(later) {
		t.Error("DailyTip should not change within a day")
	}

	seen := make(map[string]bool)
	for i := 0; i < len(ecoTips); i++ {
		seen[DailyTip(day.AddDate(0, 0, i))] = true
	}
	if len(seen) != len(ecoTips) {
		t.Errorf("expected %d distinct tips over %d days, got %d", len(ecoTips), len(ecoTips), len(seen))
	}
}

func TestService_Leaderboard_RanksByGreenScore(t *testing.T) {
	ledger := &mockLedgerRepository{
		rows: []repository.LeaderboardRow{
			{UserID: 1, Name: "Alice", TotalEmissions: 50.0, BadgeCount: 2},
			{UserID: 2, Name: "Bob", TotalEmissions: 5.0, BadgeCount: 0},
			{UserID: 3, Name: "Carol", TotalEmissions: 200.0, BadgeCount: 1},
		},
	}
	svc := newTestService(ledger, &mockBadgeRepository{}, nil)

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("entries length = %d, want 3", len(entries))
	}
	if entries[0].Name != "Bob" || entries[0].GreenScore != 950 {
		t.Errorf("rank 1 = %s (%d), want Bob (950)", entries[0].Name, entries[0].GreenScore)
	}
	if entries[1].Name != "Alice" || entries[1].GreenScore != 500 {
		t.Errorf("rank 2 = %s (%d), want Alice (500)", entries[1].Name, entries[1].GreenScore)
	}
	if entries[2].Name != "Carol" || entries[2].GreenScore != 0 {
		t.Errorf("rank 3 = %s (%d), want Carol (0)", entries[2].Name, entries[2].GreenScore)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d Rank = %d, want %d", i, e.Rank, i+1)
		}
	}
	if entries[0].BadgeCount != 0 || entries[1].BadgeCount != 2 {
		t.Error("badge counts should follow their rows through the sort")
	}
}

func TestService_Leaderboard_TiesKeepStorageOrder(t *testing.T) {
	ledger := &mockLedgerRepository{
		rows: []repository.LeaderboardRow{
			{UserID: 1, Name: "Alice", TotalEmissions: 10.0},
			{UserID: 2, Name: "Bob", TotalEmissions: 10.0},
		},
	}
	svc := newTestService(ledger, &mockBadgeRepository{}, nil)

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if entries[0].Name != "Alice" || entries[1].Name != "Bob" {
		t.Errorf("tied entries reordered: got %s, %s", entries[0].Name, entries[1].Name)
	}
}

func TestService_Leaderboard_TopTenOnly(t *testing.T) {
	ledger := &mockLedgerRepository{}
	for i := 1; i <= 15; i++ {
		ledger.rows = append(ledger.rows, repository.LeaderboardRow{
			UserID:         uint(i),
			Name:           fmt.Sprintf("user-%d", i),
			TotalEmissions: float64(i),
		})
	}
	svc := newTestService(ledger, &mockBadgeRepository{}, nil)

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("entries length = %d, want 10", len(entries))
	}
	if entries[0].Name != "user-1" {
		t.Errorf("rank 1 = %s, want user-1", entries[0].Name)
	}
}

func TestService_Leaderboard_UsesCache(t *testing.T) {
	ledger := &mockLedgerRepository{
		rows: []repository.LeaderboardRow{
			{UserID: 1, Name: "Alice", TotalEmissions: 10.0},
		},
	}
	c := newMockCache()
	svc := newTestService(ledger, &mockBadgeRepository{}, c)

	ctx := context.Background()
	first, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	second, err := svc.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard() second call error = %v", err)
	}

	if ledger.rowsCalls != 1 {
		t.Errorf("LeaderboardTotals calls = %d, want 1 (second read served from cache)", ledger.rowsCalls)
	}
	if len(first) != len(second) || first[0].Name != second[0].Name {
		t.Error("cached leaderboard differs from computed one")
	}

	svc.InvalidateLeaderboard(ctx)
	if _, err := svc.Leaderboard(ctx); err != nil {
		t.Fatalf("Leaderboard() after invalidation error = %v", err)
	}
	if ledger.rowsCalls != 2 {
		t.Errorf("LeaderboardTotals calls = %d, want 2 after invalidation", ledger.rowsCalls)
	}
}
