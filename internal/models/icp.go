// internal/models/icp.go
package models

import "time"

// ICPType selects which rule set the scorer applies to the numLocations
// and noWebsite factors.
type ICPType string

const (
	ICPTypeMidMarket   ICPType = "midmarket"
	ICPTypeIndependent ICPType = "independent"
)

// FactorName is a closed set of scoring dimensions. Keeping this a named
// type instead of free-form strings means a typo in a config key is a
// visible unknown factor, not a silent zero-weight no-op.
type FactorName string

const (
	FactorNumLocations      FactorName = "numLocations"
	FactorNoWebsite         FactorName = "noWebsite"
	FactorPoorSEO           FactorName = "poorSEO"
	FactorHasWhatsApp       FactorName = "hasWhatsApp"
	FactorHasReservation    FactorName = "hasReservation"
	FactorHasDirectOrdering FactorName = "hasDirectOrdering"
	FactorGeography         FactorName = "geography"
	FactorDeliveryCategory  FactorName = "deliveryIntensiveCategory"
	FactorBookingCategory   FactorName = "bookingIntensiveCategory"
)

// FactorSpec configures one scoring dimension. MinIdeal/MaxIdeal are only
// meaningful for the numLocations factor.
type FactorSpec struct {
	Enabled  bool     `json:"enabled"`
	Weight   float64  `json:"weight"`
	MinIdeal *float64 `json:"minIdeal,omitempty"`
	MaxIdeal *float64 `json:"maxIdeal,omitempty"`
}

// ICPConfig is a weighted scoring rubric. The caller is expected to keep
// enabled weights summing to 10 so scores land in [0, 10]; the scorer does
// not enforce this.
type ICPConfig struct {
	ID              string                    `json:"id,omitempty"`
	Name            string                    `json:"name"`
	Type            ICPType                   `json:"type"`
	Factors         map[FactorName]FactorSpec `json:"factors"`
	TargetCountries []string                  `json:"targetCountries"`
}

// MaxScore is the nominal upper bound of an ICP score when the config's
// enabled weights sum to 10.
const MaxScore = 10.0

// FactorBreakdown records how one enabled factor contributed to the total.
// Value is the factor's raw input (location count, matched country, the
// classified category, ...).
type FactorBreakdown struct {
	ScorePercent float64     `json:"scorePercent"`
	Weight       float64     `json:"weight"`
	Contribution float64     `json:"contribution"`
	Value        interface{} `json:"value"`
}

// ScoreResult is the outcome of scoring one business against one config.
// Score is nil when either input was absent. Results are created fresh per
// call and never mutated.
type ScoreResult struct {
	Score        *float64                       `json:"score"`
	Breakdown    map[FactorName]FactorBreakdown `json:"breakdown"`
	MaxScore     float64                        `json:"maxScore"`
	CalculatedAt time.Time                      `json:"calculatedAt"`
}

// ScoreBand buckets a score for template selection and campaign stats.
type ScoreBand string

const (
	BandHot  ScoreBand = "hot"
	BandWarm ScoreBand = "warm"
	BandCold ScoreBand = "cold"
)

// BandFor maps a score to its outreach band: hot >= 8, warm >= 5, cold
// below.
func BandFor(score float64) ScoreBand {
	switch {
	case score >= 8:
		return BandHot
	case score >= 5:
		return BandWarm
	default:
		return BandCold
	}
}
