// internal/icp/scorer.go
package icp

import (
	"math"
	"strings"
	"time"

	"leadgen-workers/internal/models"
)

// factorOrder is the fixed evaluation order. Breakdown entries only exist
// for factors that are enabled and had usable input.
var factorOrder = []models.FactorName{
	models.FactorNumLocations,
	models.FactorNoWebsite,
	models.FactorPoorSEO,
	models.FactorHasWhatsApp,
	models.FactorHasReservation,
	models.FactorHasDirectOrdering,
	models.FactorGeography,
	models.FactorDeliveryCategory,
	models.FactorBookingCategory,
}

// CalculateScore scores a business against an ICP config. A nil business
// or config yields a nil-score result rather than an error. The function
// is pure apart from CalculatedAt and safe for concurrent use.
//
// The final score is the sum of (percent/100 * weight) over enabled
// factors, rounded to one decimal. It is NOT clamped: if the enabled
// weights do not sum to 10 the score can leave [0, 10]. That invariant
// belongs to whoever writes the config.
func CalculateScore(business *models.Business, config *models.ICPConfig) models.ScoreResult {
	result := models.ScoreResult{
		Breakdown:    map[models.FactorName]models.FactorBreakdown{},
		MaxScore:     models.MaxScore,
		CalculatedAt: time.Now().UTC(),
	}

	if business == nil || config == nil {
		return result
	}

	var total float64
	for _, name := range factorOrder {
		spec, ok := config.Factors[name]
		if !ok || !spec.Enabled {
			continue
		}

		percent, value, ok := factorPercent(name, business, config, spec)
		if !ok {
			// Required input missing: factor skipped, contributes nothing.
			continue
		}

		contribution := percent / 100 * spec.Weight
		total += contribution
		result.Breakdown[name] = models.FactorBreakdown{
			ScorePercent: percent,
			Weight:       spec.Weight,
			Contribution: contribution,
			Value:        value,
		}
	}

	score := math.Round(total*10) / 10
	result.Score = &score
	return result
}

// factorPercent computes one factor's 0-100 fit percent. The third return
// is false when the factor does not apply to this business/config pair.
func factorPercent(name models.FactorName, business *models.Business, config *models.ICPConfig, spec models.FactorSpec) (float64, interface{}, bool) {
	switch name {
	case models.FactorNumLocations:
		if business.NumLocations == nil {
			return 0, nil, false
		}
		count := *business.NumLocations
		return locationCountPercent(count, config.Type, spec), count, true

	case models.FactorNoWebsite:
		if config.Type != models.ICPTypeIndependent {
			return 0, nil, false
		}
		hasWebsite := business.Website != nil && *business.Website != ""
		if hasWebsite {
			return 0, hasWebsite, true
		}
		return 100, hasWebsite, true

	case models.FactorPoorSEO:
		wa := business.WebsiteAnalysis
		if wa == nil {
			return 0, nil, false
		}
		switch {
		case wa.HasSEO == nil:
			return 50, "unknown", true
		case *wa.HasSEO:
			return 100, true, true
		default:
			return 0, false, true
		}

	case models.FactorHasWhatsApp:
		wa := business.WebsiteAnalysis
		if wa == nil {
			return 0, nil, false
		}
		return boolPercent(wa.HasWhatsApp), wa.HasWhatsApp, true

	case models.FactorHasReservation:
		wa := business.WebsiteAnalysis
		if wa == nil {
			return 0, nil, false
		}
		return boolPercent(wa.HasReservation), wa.HasReservation, true

	case models.FactorHasDirectOrdering:
		wa := business.WebsiteAnalysis
		if wa == nil {
			return 0, nil, false
		}
		// Third-party delivery presence does not reduce the score.
		return boolPercent(wa.HasDirectOrdering), wa.HasDirectOrdering, true

	case models.FactorGeography:
		matched, where := matchGeography(business, config.TargetCountries)
		if matched {
			return 100, where, true
		}
		return 0, nil, true

	case models.FactorDeliveryCategory:
		cat := ClassifyDelivery(business)
		switch cat {
		case DeliveryIntensive:
			return 100, string(cat), true
		case DeliveryModerate:
			return 33.33, string(cat), true
		default:
			return 0, string(cat), true
		}

	case models.FactorBookingCategory:
		cat := ClassifyBooking(business)
		switch cat {
		case NoBooking:
			return 0, string(cat), true
		case BookingIntensive:
			return 100, string(cat), true
		default:
			return 50, string(cat), true
		}
	}

	return 0, nil, false
}

// locationCountPercent applies the per-type location rules. Zero or
// negative counts floor to 0 for both known types; unknown config types
// get a flat 50.
func locationCountPercent(count int, icpType models.ICPType, spec models.FactorSpec) float64 {
	switch icpType {
	case models.ICPTypeMidMarket:
		if count < 1 {
			return 0
		}
		minIdeal := specMin(spec, 10)
		c := float64(count)
		switch {
		case c >= minIdeal:
			return 100
		case c >= minIdeal/2:
			return math.Round(c / minIdeal * 100)
		default:
			return math.Round(c / minIdeal * 50)
		}

	case models.ICPTypeIndependent:
		if count < 1 {
			return 0
		}
		minIdeal := specMin(spec, 2)
		maxIdeal := specMax(spec, 5)
		c := float64(count)
		switch {
		case c >= minIdeal && c <= maxIdeal:
			return 100
		case count == 1:
			return 70
		case c > maxIdeal:
			return math.Max(0, 100-(c-maxIdeal)*10)
		default:
			return 30
		}

	default:
		return 50
	}
}

// matchGeography reports whether the business sits in any target country.
// Rule order: exact country match, then case-insensitive substring in the
// address, then in any location name. First hit wins.
func matchGeography(business *models.Business, targets []string) (bool, string) {
	if business.Country != nil {
		for _, target := range targets {
			if *business.Country == target {
				return true, target
			}
		}
	}

	if business.Address != nil {
		address := strings.ToLower(*business.Address)
		for _, target := range targets {
			if strings.Contains(address, strings.ToLower(target)) {
				return true, target
			}
		}
	}

	for _, loc := range business.LocationNames {
		lower := strings.ToLower(loc)
		for _, target := range targets {
			if strings.Contains(lower, strings.ToLower(target)) {
				return true, target
			}
		}
	}

	return false, ""
}

func boolPercent(b bool) float64 {
	if b {
		return 100
	}
	return 0
}

func specMin(spec models.FactorSpec, fallback float64) float64 {
	if spec.MinIdeal != nil {
		return *spec.MinIdeal
	}
	return fallback
}

func specMax(spec models.FactorSpec, fallback float64) float64 {
	if spec.MaxIdeal != nil {
		return *spec.MaxIdeal
	}
	return fallback
}
