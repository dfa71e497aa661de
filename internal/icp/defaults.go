// internal/icp/defaults.go
package icp

import "leadgen-workers/internal/models"

// DefaultConfigs returns the two canned ICP configurations. Each call
// returns fresh copies so callers can mutate theirs without sharing state.
// Enabled weights sum to 10 in both.
func DefaultConfigs() []models.ICPConfig {
	return []models.ICPConfig{
		{
			ID:   "icp-midmarket-default",
			Name: "MidMarket Brands",
			Type: models.ICPTypeMidMarket,
			Factors: map[models.FactorName]models.FactorSpec{
				models.FactorNumLocations:      {Enabled: true, Weight: 4, MinIdeal: f(10)},
				models.FactorGeography:         {Enabled: true, Weight: 2},
				models.FactorDeliveryCategory:  {Enabled: true, Weight: 2},
				models.FactorBookingCategory:   {Enabled: true, Weight: 1},
				models.FactorPoorSEO:           {Enabled: true, Weight: 1},
				models.FactorNoWebsite:         {Enabled: false, Weight: 0},
				models.FactorHasWhatsApp:       {Enabled: false, Weight: 0},
				models.FactorHasReservation:    {Enabled: false, Weight: 0},
				models.FactorHasDirectOrdering: {Enabled: false, Weight: 0},
			},
			TargetCountries: []string{"Argentina", "Uruguay", "Chile"},
		},
		{
			ID:   "icp-independent-default",
			Name: "Independent Restaurants",
			Type: models.ICPTypeIndependent,
			Factors: map[models.FactorName]models.FactorSpec{
				models.FactorNumLocations:      {Enabled: true, Weight: 2, MinIdeal: f(1), MaxIdeal: f(4)},
				models.FactorNoWebsite:         {Enabled: true, Weight: 2},
				models.FactorGeography:         {Enabled: true, Weight: 2},
				models.FactorDeliveryCategory:  {Enabled: true, Weight: 1},
				models.FactorPoorSEO:           {Enabled: true, Weight: 1},
				models.FactorHasWhatsApp:       {Enabled: true, Weight: 1},
				models.FactorHasDirectOrdering: {Enabled: true, Weight: 1},
				models.FactorHasReservation:    {Enabled: false, Weight: 0},
				models.FactorBookingCategory:   {Enabled: false, Weight: 0},
			},
			TargetCountries: []string{"Argentina", "Uruguay", "Chile"},
		},
	}
}

// DefaultConfigFor returns the canned config matching the given type, or
// nil when the type is unknown.
func DefaultConfigFor(icpType models.ICPType) *models.ICPConfig {
	for _, cfg := range DefaultConfigs() {
		if cfg.Type == icpType {
			c := cfg
			return &c
		}
	}
	return nil
}

func f(v float64) *float64 { return &v }
