// Package factors loads the static emission factor table mapping
// (category, activity) pairs to emission rates in kg CO2 per unit.
package factors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ecotrackhq/carbon-tracker/internal/models"
)

// Fixed activity keys within the energy and waste categories.
const (
	KeyElectricity = "electricity"
	KeyGas         = "gas"
	KeyLandfill    = "landfill"
	KeyRecycling   = "recycling"
	KeyComposting  = "composting"
)

// Table is the emission factor table, loaded fully into memory at
// startup and read-only afterwards. Units vary by category: kg CO2
// per km (transportation), per serving (food), per kWh or kg (energy),
// per kg (waste). Waste reduction rates carry a negative sign.
type Table struct {
	Transportation map[string]float64 `yaml:"transportation"`
	Food           map[string]float64 `yaml:"food"`
	Energy         map[string]float64 `yaml:"energy"`
	Waste          map[string]float64 `yaml:"waste"`
}

// Load reads and validates the factor table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emission factors file: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse emission factors file: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid emission factors: %w", err)
	}

	return &table, nil
}

// Validate checks that every category section is present and the fixed
// energy and waste keys exist. A table missing whole sections would make
// every submission in that category fail.
func (t *Table) Validate() error {
	if len(t.Transportation) == 0 {
		return fmt.Errorf("transportation section is empty")
	}
	if len(t.Food) == 0 {
		return fmt.Errorf("food section is empty")
	}
	for _, key := range []string{KeyElectricity, KeyGas} {
		if _, ok := t.Energy[key]; !ok {
			return fmt.Errorf("energy.%s is missing", key)
		}
	}
	for _, key := range []string{KeyLandfill, KeyRecycling, KeyComposting} {
		if _, ok := t.Waste[key]; !ok {
			return fmt.Errorf("waste.%s is missing", key)
		}
	}
	return nil
}

// Rate returns the emission rate for an activity key within a category.
// A missing key is a configuration error and must fail the request:
// silently defaulting to a zero rate would corrupt the ledger by
// under-reporting emissions.
func (t *Table) Rate(category, key string) (float64, error) {
	var section map[string]float64
	switch category {
	case models.CategoryTransportation:
		section = t.Transportation
	case models.CategoryFood:
		section = t.Food
	case models.CategoryEnergy:
		section = t.Energy
	case models.CategoryWaste:
		section = t.Waste
	default:
		return 0, fmt.Errorf("unknown emission category: %s", category)
	}

	rate, ok := section[key]
	if !ok {
		return 0, fmt.Errorf("no emission factor for %s/%s", category, key)
	}
	return rate, nil
}
