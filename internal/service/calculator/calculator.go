// Package calculator turns a calculator form submission into a signed
// emission total and ledger record drafts. It is pure: persistence is
// the caller's responsibility.
package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ecotrackhq/carbon-tracker/internal/factors"
	"github.com/ecotrackhq/carbon-tracker/internal/models"
)

// Submission is one calculator form submission. Quantity fields arrive
// as free-form text; blank or unparseable input counts as zero.
type Submission struct {
	TransportMode     string `json:"transport_mode"`
	TransportDistance string `json:"transport_distance"`
	FoodType          string `json:"food_type"`
	FoodServings      string `json:"food_servings"`
	Electricity       string `json:"electricity"`
	Gas               string `json:"gas"`
	Landfill          string `json:"landfill"`
	Recycling         bool   `json:"recycling"`
	Composting        bool   `json:"composting"`
}

// RecordDraft is one ledger entry to be appended, in submission order.
type RecordDraft struct {
	Category string
	Activity string
	Value    float64
}

// ParseQuantity parses a free-form quantity field. Blank or non-numeric
// input is exactly 0.0, never an error: users leave fields empty or
// type garbage all the time, and a submission must not fail for it.
// This leniency is deliberately asymmetric with factor-table lookups,
// which fail hard on missing keys.
func ParseQuantity(value string) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	quantity, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return quantity
}

// Compute evaluates a submission against the factor table. It returns
// the signed emission total and one draft per activated input, in a
// fixed order (transport, food, electricity, gas, landfill, recycling,
// composting). A missing factor key aborts the whole submission before
// any draft is produced.
func Compute(sub Submission, table *factors.Table) (float64, []RecordDraft, error) {
	var total float64
	var drafts []RecordDraft

	// Transportation: requires a mode and a strictly positive distance.
	if sub.TransportMode != "" {
		if distance := ParseQuantity(sub.TransportDistance); distance > 0 {
			rate, err := table.Rate(models.CategoryTransportation, sub.TransportMode)
			if err != nil {
				return 0, nil, err
			}
			emission := distance * rate
			total += emission
			drafts = append(drafts, RecordDraft{
				Category: models.CategoryTransportation,
				Activity: fmt.Sprintf("%s - %skm", sub.TransportMode, formatQuantity(distance)),
				Value:    emission,
			})
		}
	}

	// Food: requires a type and strictly positive servings.
	if sub.FoodType != "" {
		if servings := ParseQuantity(sub.FoodServings); servings > 0 {
			rate, err := table.Rate(models.CategoryFood, sub.FoodType)
			if err != nil {
				return 0, nil, err
			}
			emission := servings * rate
			total += emission
			drafts = append(drafts, RecordDraft{
				Category: models.CategoryFood,
				Activity: fmt.Sprintf("%s - %s servings", sub.FoodType, formatQuantity(servings)),
				Value:    emission,
			})
		}
	}

	// Energy.
	if electricity := ParseQuantity(sub.Electricity); electricity > 0 {
		rate, err := table.Rate(models.CategoryEnergy, factors.KeyElectricity)
		if err != nil {
			return 0, nil, err
		}
		emission := electricity * rate
		total += emission
		drafts = append(drafts, RecordDraft{
			Category: models.CategoryEnergy,
			Activity: fmt.Sprintf("Electricity - %skWh", formatQuantity(electricity)),
			Value:    emission,
		})
	}

	if gas := ParseQuantity(sub.Gas); gas > 0 {
		rate, err := table.Rate(models.CategoryEnergy, factors.KeyGas)
		if err != nil {
			return 0, nil, err
		}
		emission := gas * rate
		total += emission
		drafts = append(drafts, RecordDraft{
			Category: models.CategoryEnergy,
			Activity: fmt.Sprintf("Natural Gas - %skg", formatQuantity(gas)),
			Value:    emission,
		})
	}

	// Waste.
	if landfill := ParseQuantity(sub.Landfill); landfill > 0 {
		rate, err := table.Rate(models.CategoryWaste, factors.KeyLandfill)
		if err != nil {
			return 0, nil, err
		}
		emission := landfill * rate
		total += emission
		drafts = append(drafts, RecordDraft{
			Category: models.CategoryWaste,
			Activity: fmt.Sprintf("Landfill - %skg", formatQuantity(landfill)),
			Value:    emission,
		})
	}

	// Offset actions use a fixed 1 kg basis per action; the factor's
	// magnitude is the reduction regardless of its configured sign.
	if sub.Recycling {
		rate, err := table.Rate(models.CategoryWaste, factors.KeyRecycling)
		if err != nil {
			return 0, nil, err
		}
		reduction := 1.0 * math.Abs(rate)
		total -= reduction
		drafts = append(drafts, RecordDraft{
			Category: models.CategoryWaste,
			Activity: "Recycling - 1kg",
			Value:    -reduction,
		})
	}

	if sub.Composting {
		rate, err := table.Rate(models.CategoryWaste, factors.KeyComposting)
		if err != nil {
			return 0, nil, err
		}
		reduction := 1.0 * math.Abs(rate)
		total -= reduction
		drafts = append(drafts, RecordDraft{
			Category: models.CategoryWaste,
			Activity: "Composting - 1kg",
			Value:    -reduction,
		})
	}

	return total, drafts, nil
}

// Describe renders a draft as a user-facing activity summary line.
func (d RecordDraft) Describe() string {
	return fmt.Sprintf("%s = %.2f kg CO2", d.Activity, d.Value)
}

// formatQuantity renders a quantity without trailing zeros (10, 2.5).
func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
