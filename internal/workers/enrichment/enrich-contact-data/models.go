// internal/workers/enrichment/enrich-contact-data/models.go
package enrichcontactdata

import "leadgen-workers/internal/models"

type Input struct {
	BusinessID string `json:"businessId"`
	Website    string `json:"website,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

type Output struct {
	Contacts  []models.Contact `json:"contacts"`
	Total     int              `json:"total"`
	FromCache bool             `json:"fromCache"`
}

// enrichmentResponse mirrors the provider's domain-search payload.
type enrichmentResponse struct {
	Domain  string `json:"domain"`
	People  []struct {
		FullName string `json:"full_name"`
		Role     string `json:"role"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		LinkedIn string `json:"linkedin_url"`
	} `json:"people"`
}
