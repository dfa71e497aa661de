// internal/icp/category.go
package icp

import (
	"strings"

	"leadgen-workers/internal/models"
)

// DeliveryCategory and BookingCategory are the outputs of the two category
// classifiers. Both return "unknown" when the business carries no category
// data at all.
type DeliveryCategory string

const (
	DeliveryIntensive DeliveryCategory = "delivery-intensive"
	DeliveryModerate  DeliveryCategory = "moderate"
	DeliveryOther     DeliveryCategory = "other"
	DeliveryUnknown   DeliveryCategory = "unknown"
)

type BookingCategory string

const (
	BookingIntensive BookingCategory = "booking-intensive"
	NoBooking        BookingCategory = "no-booking"
	BookingOther     BookingCategory = "other"
	BookingUnknown   BookingCategory = "unknown"
)

// Keyword lists are matched by substring containment in either direction
// against the lowercased category/type strings, so "Pizza Place" hits
// "pizza" and a bare "bar" type hits "craft beer bar" style categories.
var (
	deliveryIntensiveKeywords = []string{
		"pizza", "hamburguesas", "sushi", "comida mexicana",
		"comida healthy", "milanesas", "empanadas",
	}
	deliveryModerateKeywords = []string{
		"bar", "fine dining", "coffee", "café", "coffee shop", "cafetería",
	}
	bookingIntensiveKeywords = []string{
		"bar", "craft beer", "cerveza artesanal", "fine dining",
		"restaurante gourmet",
	}
	noBookingKeywords = []string{
		"coffee", "café", "coffee shop", "cafetería",
		"ice cream", "heladería", "gelato",
	}
)

// ClassifyDelivery buckets a business by how delivery-heavy its category
// is: pizza/sushi style places score full, bars and cafés moderate.
func ClassifyDelivery(business *models.Business) DeliveryCategory {
	terms := categoryTerms(business)
	if len(terms) == 0 {
		return DeliveryUnknown
	}
	if matchesAny(terms, deliveryIntensiveKeywords) {
		return DeliveryIntensive
	}
	if matchesAny(terms, deliveryModerateKeywords) {
		return DeliveryModerate
	}
	return DeliveryOther
}

// ClassifyBooking buckets a business by reservation intensity. The
// no-booking check runs first: a "coffee bar" is no-booking even though
// "bar" alone would read booking-intensive.
func ClassifyBooking(business *models.Business) BookingCategory {
	terms := categoryTerms(business)
	if len(terms) == 0 {
		return BookingUnknown
	}
	if matchesAny(terms, noBookingKeywords) {
		return NoBooking
	}
	if matchesAny(terms, bookingIntensiveKeywords) {
		return BookingIntensive
	}
	return BookingOther
}

// categoryTerms gathers the lowercase category strings for a business.
func categoryTerms(business *models.Business) []string {
	var terms []string
	if business.Category != "" {
		terms = append(terms, strings.ToLower(business.Category))
	}
	for _, t := range business.Types {
		if t != "" {
			terms = append(terms, strings.ToLower(t))
		}
	}
	return terms
}

func matchesAny(terms, keywords []string) bool {
	for _, term := range terms {
		for _, kw := range keywords {
			if strings.Contains(term, kw) || strings.Contains(kw, term) {
				return true
			}
		}
	}
	return false
}
