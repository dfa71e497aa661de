// internal/workers/crm/sync-lead/models.go
package synclead

import "leadgen-workers/internal/models"

type Input struct {
	Business     *models.Business `json:"business"`
	Contact      *models.Contact  `json:"contact,omitempty"`
	Score        *float64         `json:"icpScore"`
	Band         models.ScoreBand `json:"scoreBand,omitempty"`
	CampaignName string           `json:"campaignName,omitempty"`
}

type Output struct {
	Synced bool `json:"synced"`
	// Skipped is true when the score was below the sync threshold.
	Skipped bool   `json:"skipped"`
	LeadID  string `json:"crmLeadId,omitempty"`
}
