// internal/models/business.go
package models

import "time"

// Business is a discovered local business, as returned by the places
// provider and enriched by the pipeline. Optional provider fields are
// pointers so that "absent" is distinguishable from zero values.
type Business struct {
	ID            string    `json:"id"`
	PlaceID       string    `json:"placeId,omitempty"`
	Name          string    `json:"name"`
	Category      string    `json:"category,omitempty"`
	Types         []string  `json:"types,omitempty"`
	NumLocations  *int      `json:"numLocations,omitempty"`
	Website       *string   `json:"website,omitempty"`
	Country       *string   `json:"country,omitempty"`
	Address       *string   `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	LocationNames []string  `json:"locationNames,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	ReviewCount   int       `json:"reviewCount,omitempty"`
	CampaignID    string    `json:"campaignId,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`

	WebsiteAnalysis *WebsiteAnalysis `json:"websiteAnalysis,omitempty"`
}

// WebsiteAnalysis holds the signals extracted from a business website.
// HasSEO is tri-state: true, false, or nil when the site could not be
// inspected.
type WebsiteAnalysis struct {
	HasSEO                *bool     `json:"hasSEO"`
	HasWhatsApp           bool      `json:"hasWhatsApp"`
	HasReservation        bool      `json:"hasReservation"`
	HasDirectOrdering     bool      `json:"hasDirectOrdering"`
	HasThirdPartyDelivery bool      `json:"hasThirdPartyDelivery"`
	AnalyzedAt            time.Time `json:"analyzedAt,omitempty"`
}
