package badges

import (
	"time"

	"github.com/ecotrackhq/carbon-tracker/internal/models"
	"github.com/ecotrackhq/carbon-tracker/internal/repository"
)

// Tier thresholds against the baseline daily average, evaluated in
// precedence order: the first match wins.
const (
	goldThreshold   = 0.5
	silverThreshold = 0.7
	bronzeThreshold = 0.9
)

// Baseline computes the arithmetic mean of historical daily totals
// strictly prior to the given day. The second return is false when no
// prior history exists.
//
// A zero or negative baseline (possible after heavy offset days) makes
// every threshold non-positive, so no non-negative today value can earn
// a badge.
func Baseline(history []repository.DailyTotal, today time.Time) (float64, bool) {
	day := models.DayOf(today)

	var sum float64
	var count int
	for _, dt := range history {
		if models.DayOf(dt.Date).Before(day) {
			sum += dt.Total
			count++
		}
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// SelectTier picks the badge tier for today's total against the
// baseline. Returns the empty string when no tier matches.
func SelectTier(baseline, today float64) string {
	switch {
	case today < baseline*goldThreshold:
		return models.BadgeGold
	case today < baseline*silverThreshold:
		return models.BadgeSilver
	case today < baseline*bronzeThreshold:
		return models.BadgeBronze
	default:
		return ""
	}
}
