// Package offset estimates how many trees would sequester a given
// amount of CO2 over one year.
package offset

import (
	"math"
)

// DefaultTreeKgPerYear is the assumed annual sequestration of one
// mature tree, a conservative figure.
const DefaultTreeKgPerYear = 21.0

// Estimator converts emission totals to whole-tree counts.
type Estimator struct {
	kgPerTreePerYear float64
}

// NewEstimator creates an estimator with the configured per-tree rate.
func NewEstimator(kgPerTreePerYear float64) *Estimator {
	return &Estimator{kgPerTreePerYear: kgPerTreePerYear}
}

// Rate returns the configured per-tree annual sequestration in kg.
func (e *Estimator) Rate() float64 {
	return e.kgPerTreePerYear
}

// TreesNeeded returns the whole number of trees needed to offset the
// emissions over one year, rounded up. Non-positive emissions need no
// trees; a non-positive rate is a configuration error answered with 0
// rather than a division by zero.
func (e *Estimator) TreesNeeded(totalKg float64) int {
	if e.kgPerTreePerYear <= 0 {
		return 0
	}
	emissions := math.Max(0, totalKg)
	return int(math.Ceil(emissions / e.kgPerTreePerYear))
}
