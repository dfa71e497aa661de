// internal/icp/scorer_test.go
package icp

import (
	"testing"

	"leadgen-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func boolPtr(v bool) *bool       { return &v }
func floatPtr(v float64) *float64 { return &v }

func singleFactorConfig(icpType models.ICPType, name models.FactorName, spec models.FactorSpec) *models.ICPConfig {
	spec.Enabled = true
	return &models.ICPConfig{
		Name:    "test",
		Type:    icpType,
		Factors: map[models.FactorName]models.FactorSpec{name: spec},
	}
}

// ==========================
// Degraded Input
// ==========================

func TestCalculateScore_NilInputs(t *testing.T) {
	config := DefaultConfigFor(models.ICPTypeIndependent)
	business := &models.Business{Name: "Test"}

	for _, tc := range []struct {
		name     string
		business *models.Business
		config   *models.ICPConfig
	}{
		{"nil business", nil, config},
		{"nil config", business, nil},
		{"both nil", nil, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			result := CalculateScore(tc.business, tc.config)
			assert.Nil(t, result.Score)
			assert.Empty(t, result.Breakdown)
			assert.Equal(t, models.MaxScore, result.MaxScore)
			assert.False(t, result.CalculatedAt.IsZero())
		})
	}
}

// ==========================
// numLocations Factor
// ==========================

func TestCalculateScore_NumLocations_Independent(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorNumLocations,
		models.FactorSpec{Weight: 10, MinIdeal: floatPtr(2), MaxIdeal: floatPtr(9)})

	tests := []struct {
		count           int
		expectedPercent float64
	}{
		{1, 70},
		{5, 100},
		{2, 100},
		{9, 100},
		{12, 70},  // 100 - (12-9)*10
		{19, 0},   // decay floors at 0
		{25, 0},
		{0, 0},
	}

	for _, tt := range tests {
		business := &models.Business{Name: "Test", NumLocations: intPtr(tt.count)}
		result := CalculateScore(business, config)

		require.NotNil(t, result.Score)
		entry, ok := result.Breakdown[models.FactorNumLocations]
		require.True(t, ok, "count=%d", tt.count)
		assert.Equal(t, tt.expectedPercent, entry.ScorePercent, "count=%d", tt.count)
		assert.Equal(t, tt.count, entry.Value)
	}
}

func TestCalculateScore_NumLocations_MidMarket(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeMidMarket, models.FactorNumLocations,
		models.FactorSpec{Weight: 10, MinIdeal: floatPtr(10)})

	tests := []struct {
		count           int
		expectedPercent float64
	}{
		{10, 100},
		{25, 100},
		{7, 70},  // >= minIdeal/2: round(7/10*100)
		{5, 50},
		{3, 15},  // below half: round(3/10*50)
		{0, 0},
	}

	for _, tt := range tests {
		business := &models.Business{Name: "Test", NumLocations: intPtr(tt.count)}
		result := CalculateScore(business, config)

		entry, ok := result.Breakdown[models.FactorNumLocations]
		require.True(t, ok, "count=%d", tt.count)
		assert.Equal(t, tt.expectedPercent, entry.ScorePercent, "count=%d", tt.count)
	}
}

func TestCalculateScore_NumLocations_UnknownType(t *testing.T) {
	config := singleFactorConfig(models.ICPType("enterprise"), models.FactorNumLocations,
		models.FactorSpec{Weight: 10, MinIdeal: floatPtr(10)})
	business := &models.Business{Name: "Test", NumLocations: intPtr(3)}

	result := CalculateScore(business, config)
	assert.Equal(t, 50.0, result.Breakdown[models.FactorNumLocations].ScorePercent)
}

func TestCalculateScore_NumLocations_Absent(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeMidMarket, models.FactorNumLocations,
		models.FactorSpec{Weight: 10, MinIdeal: floatPtr(10)})
	business := &models.Business{Name: "Test"}

	result := CalculateScore(business, config)
	require.NotNil(t, result.Score)
	assert.Equal(t, 0.0, *result.Score)
	assert.NotContains(t, result.Breakdown, models.FactorNumLocations)
}

// ==========================
// Website Factors
// ==========================

func TestCalculateScore_NoWebsite(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorNoWebsite,
		models.FactorSpec{Weight: 10})

	noSite := &models.Business{Name: "Test"}
	result := CalculateScore(noSite, config)
	assert.Equal(t, 100.0, result.Breakdown[models.FactorNoWebsite].ScorePercent)

	withSite := &models.Business{Name: "Test", Website: strPtr("https://example.com")}
	result = CalculateScore(withSite, config)
	assert.Equal(t, 0.0, result.Breakdown[models.FactorNoWebsite].ScorePercent)
}

func TestCalculateScore_NoWebsite_MidMarketSkipped(t *testing.T) {
	// noWebsite only applies to independent configs.
	config := singleFactorConfig(models.ICPTypeMidMarket, models.FactorNoWebsite,
		models.FactorSpec{Weight: 10})
	business := &models.Business{Name: "Test"}

	result := CalculateScore(business, config)
	assert.NotContains(t, result.Breakdown, models.FactorNoWebsite)
	assert.Equal(t, 0.0, *result.Score)
}

func TestCalculateScore_PoorSEO_TriState(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorPoorSEO,
		models.FactorSpec{Weight: 10})

	tests := []struct {
		name            string
		hasSEO          *bool
		expectedPercent float64
	}{
		{"seo present", boolPtr(true), 100},
		{"seo absent", boolPtr(false), 0},
		{"seo unknown", nil, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			business := &models.Business{
				Name:            "Test",
				WebsiteAnalysis: &models.WebsiteAnalysis{HasSEO: tt.hasSEO},
			}
			result := CalculateScore(business, config)
			assert.Equal(t, tt.expectedPercent, result.Breakdown[models.FactorPoorSEO].ScorePercent)
		})
	}
}

func TestCalculateScore_AnalysisFactorsSkippedWithoutAnalysis(t *testing.T) {
	config := &models.ICPConfig{
		Name: "test",
		Type: models.ICPTypeIndependent,
		Factors: map[models.FactorName]models.FactorSpec{
			models.FactorPoorSEO:           {Enabled: true, Weight: 3},
			models.FactorHasWhatsApp:       {Enabled: true, Weight: 3},
			models.FactorHasReservation:    {Enabled: true, Weight: 2},
			models.FactorHasDirectOrdering: {Enabled: true, Weight: 2},
		},
	}
	business := &models.Business{Name: "Test"} // no WebsiteAnalysis

	result := CalculateScore(business, config)
	require.NotNil(t, result.Score)
	assert.Equal(t, 0.0, *result.Score)
	assert.Empty(t, result.Breakdown)
}

func TestCalculateScore_DirectOrdering_ThirdPartyDoesNotReduce(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorHasDirectOrdering,
		models.FactorSpec{Weight: 10})
	business := &models.Business{
		Name: "Test",
		WebsiteAnalysis: &models.WebsiteAnalysis{
			HasDirectOrdering:     true,
			HasThirdPartyDelivery: true,
		},
	}

	result := CalculateScore(business, config)
	assert.Equal(t, 100.0, result.Breakdown[models.FactorHasDirectOrdering].ScorePercent)
}

// ==========================
// Geography Factor
// ==========================

func TestCalculateScore_Geography(t *testing.T) {
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorGeography,
		models.FactorSpec{Weight: 10})
	config.TargetCountries = []string{"Argentina"}

	tests := []struct {
		name            string
		business        *models.Business
		expectedPercent float64
	}{
		{
			name:            "exact country match",
			business:        &models.Business{Name: "Test", Country: strPtr("Argentina")},
			expectedPercent: 100,
		},
		{
			name: "address substring match",
			business: &models.Business{
				Name:    "Test",
				Address: strPtr("Av. Corrientes, Buenos Aires, Argentina"),
			},
			expectedPercent: 100,
		},
		{
			name: "location name substring match",
			business: &models.Business{
				Name:          "Test",
				LocationNames: []string{"Palermo, ARGENTINA"},
			},
			expectedPercent: 100,
		},
		{
			name: "no match anywhere",
			business: &models.Business{
				Name:          "Test",
				Country:       strPtr("Brazil"),
				Address:       strPtr("Av. Paulista, São Paulo"),
				LocationNames: []string{"Pinheiros"},
			},
			expectedPercent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateScore(tt.business, config)
			assert.Equal(t, tt.expectedPercent, result.Breakdown[models.FactorGeography].ScorePercent)
		})
	}
}

// ==========================
// Category Factors
// ==========================

func TestCalculateScore_CategoryFactors(t *testing.T) {
	config := &models.ICPConfig{
		Name: "test",
		Type: models.ICPTypeIndependent,
		Factors: map[models.FactorName]models.FactorSpec{
			models.FactorDeliveryCategory: {Enabled: true, Weight: 5},
			models.FactorBookingCategory:  {Enabled: true, Weight: 5},
		},
	}

	pizza := &models.Business{Name: "Test", Category: "Pizza Place"}
	result := CalculateScore(pizza, config)
	assert.Equal(t, 100.0, result.Breakdown[models.FactorDeliveryCategory].ScorePercent)

	fineDiningBar := &models.Business{Name: "Test", Category: "Fine Dining Bar"}
	result = CalculateScore(fineDiningBar, config)
	assert.Equal(t, 33.33, result.Breakdown[models.FactorDeliveryCategory].ScorePercent)
	assert.Equal(t, 100.0, result.Breakdown[models.FactorBookingCategory].ScorePercent)

	coffee := &models.Business{Name: "Test", Category: "Coffee Shop"}
	result = CalculateScore(coffee, config)
	assert.Equal(t, 0.0, result.Breakdown[models.FactorBookingCategory].ScorePercent)

	unknown := &models.Business{Name: "Test"}
	result = CalculateScore(unknown, config)
	assert.Equal(t, 0.0, result.Breakdown[models.FactorDeliveryCategory].ScorePercent)
	assert.Equal(t, 50.0, result.Breakdown[models.FactorBookingCategory].ScorePercent)
}

// ==========================
// Aggregate Behavior
// ==========================

func TestCalculateScore_BoundedForDefaultConfigs(t *testing.T) {
	businesses := []*models.Business{
		{
			Name:         "Perfect Fit",
			Category:     "Pizza Place",
			NumLocations: intPtr(2),
			Country:      strPtr("Argentina"),
			WebsiteAnalysis: &models.WebsiteAnalysis{
				HasSEO:            boolPtr(true),
				HasWhatsApp:       true,
				HasDirectOrdering: true,
			},
		},
		{Name: "Empty"},
		{
			Name:         "Partial",
			Category:     "Bar",
			NumLocations: intPtr(40),
			Website:      strPtr("https://example.com"),
			Address:      strPtr("Montevideo, Uruguay"),
		},
	}

	for _, cfg := range DefaultConfigs() {
		cfg := cfg
		for _, b := range businesses {
			result := CalculateScore(b, &cfg)
			require.NotNil(t, result.Score)
			assert.GreaterOrEqual(t, *result.Score, 0.0)
			assert.LessOrEqual(t, *result.Score, models.MaxScore)
		}
	}
}

func TestCalculateScore_NoClampingWhenWeightsUnderSum(t *testing.T) {
	// Weights summing to 5 halve the ceiling; the scorer must not scale
	// or clamp the result back to the nominal range.
	business := &models.Business{
		Name:         "Test",
		NumLocations: intPtr(3),
		Country:      strPtr("Argentina"),
	}
	config := &models.ICPConfig{
		Name: "misconfigured",
		Type: models.ICPTypeIndependent,
		Factors: map[models.FactorName]models.FactorSpec{
			models.FactorNumLocations: {Enabled: true, Weight: 2.5, MinIdeal: floatPtr(1), MaxIdeal: floatPtr(4)},
			models.FactorGeography:    {Enabled: true, Weight: 2.5},
		},
		TargetCountries: []string{"Argentina"},
	}

	result := CalculateScore(business, config)
	require.NotNil(t, result.Score)
	assert.Equal(t, 5.0, *result.Score)
}

func TestCalculateScore_NoClampingWhenWeightsOverSum(t *testing.T) {
	business := &models.Business{Name: "Test", Country: strPtr("Argentina")}
	config := &models.ICPConfig{
		Name: "misconfigured",
		Type: models.ICPTypeIndependent,
		Factors: map[models.FactorName]models.FactorSpec{
			models.FactorGeography: {Enabled: true, Weight: 14},
		},
		TargetCountries: []string{"Argentina"},
	}

	result := CalculateScore(business, config)
	require.NotNil(t, result.Score)
	assert.Equal(t, 14.0, *result.Score)
}

func TestCalculateScore_DisabledFactorsExcluded(t *testing.T) {
	business := &models.Business{Name: "Test", Country: strPtr("Argentina"), NumLocations: intPtr(2)}
	config := &models.ICPConfig{
		Name: "test",
		Type: models.ICPTypeIndependent,
		Factors: map[models.FactorName]models.FactorSpec{
			models.FactorGeography:    {Enabled: true, Weight: 10},
			models.FactorNumLocations: {Enabled: false, Weight: 5},
		},
		TargetCountries: []string{"Argentina"},
	}

	result := CalculateScore(business, config)
	assert.Contains(t, result.Breakdown, models.FactorGeography)
	assert.NotContains(t, result.Breakdown, models.FactorNumLocations)
	assert.Equal(t, 10.0, *result.Score)
}

func TestCalculateScore_RoundsToOneDecimal(t *testing.T) {
	business := &models.Business{Name: "Test", Category: "Bar"}
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorDeliveryCategory,
		models.FactorSpec{Weight: 10})

	// moderate: 33.33% of 10 = 3.333 -> 3.3
	result := CalculateScore(business, config)
	require.NotNil(t, result.Score)
	assert.Equal(t, 3.3, *result.Score)
}

func TestCalculateScore_Idempotent(t *testing.T) {
	business := &models.Business{
		Name:         "Test",
		Category:     "Sushi",
		NumLocations: intPtr(3),
		Country:      strPtr("Argentina"),
		WebsiteAnalysis: &models.WebsiteAnalysis{
			HasSEO:      boolPtr(false),
			HasWhatsApp: true,
		},
	}
	config := DefaultConfigFor(models.ICPTypeIndependent)

	first := CalculateScore(business, config)
	second := CalculateScore(business, config)

	require.NotNil(t, first.Score)
	require.NotNil(t, second.Score)
	assert.Equal(t, *first.Score, *second.Score)
	assert.Equal(t, first.Breakdown, second.Breakdown)
}

func TestCalculateScore_ContributionArithmetic(t *testing.T) {
	business := &models.Business{Name: "Test", Country: strPtr("Argentina")}
	config := singleFactorConfig(models.ICPTypeIndependent, models.FactorGeography,
		models.FactorSpec{Weight: 3})
	config.TargetCountries = []string{"Argentina"}

	result := CalculateScore(business, config)
	entry := result.Breakdown[models.FactorGeography]
	assert.Equal(t, 100.0, entry.ScorePercent)
	assert.Equal(t, 3.0, entry.Weight)
	assert.Equal(t, 3.0, entry.Contribution)
	assert.Equal(t, 3.0, *result.Score)
}

// ==========================
// Default Configs
// ==========================

func TestDefaultConfigs(t *testing.T) {
	configs := DefaultConfigs()
	require.Len(t, configs, 2)

	byName := map[string]models.ICPConfig{}
	for _, cfg := range configs {
		byName[cfg.Name] = cfg
	}
	require.Contains(t, byName, "MidMarket Brands")
	require.Contains(t, byName, "Independent Restaurants")
	assert.Equal(t, models.ICPTypeMidMarket, byName["MidMarket Brands"].Type)
	assert.Equal(t, models.ICPTypeIndependent, byName["Independent Restaurants"].Type)

	for name, cfg := range byName {
		var sum float64
		for _, spec := range cfg.Factors {
			if spec.Enabled {
				sum += spec.Weight
			}
		}
		assert.Equal(t, 10.0, sum, "enabled weights for %s", name)
	}
}

func TestDefaultConfigs_NoSharedState(t *testing.T) {
	first := DefaultConfigs()
	first[0].Factors[models.FactorGeography] = models.FactorSpec{Enabled: true, Weight: 99}
	first[0].TargetCountries[0] = "Elsewhere"

	second := DefaultConfigs()
	assert.NotEqual(t, 99.0, second[0].Factors[models.FactorGeography].Weight)
	assert.Equal(t, "Argentina", second[0].TargetCountries[0])
}
