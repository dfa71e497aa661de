// internal/workers/discovery/search-businesses/models.go
package searchbusinesses

import "leadgen-workers/internal/models"

type Input struct {
	CampaignID string `json:"campaignId"`
	Query      string `json:"query"`
	Location   string `json:"location"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type Output struct {
	Businesses []models.Business `json:"businesses"`
	Total      int               `json:"total"`
	FromCache  bool              `json:"fromCache"`
}

// placesResponse mirrors the provider's search payload.
type placesResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string   `json:"place_id"`
		Name             string   `json:"name"`
		Types            []string `json:"types"`
		FormattedAddress string   `json:"formatted_address"`
		Website          string   `json:"website"`
		Phone            string   `json:"formatted_phone_number"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
	} `json:"results"`
}
