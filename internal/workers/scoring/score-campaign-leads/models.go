// internal/workers/scoring/score-campaign-leads/models.go
package scorecampaignleads

import "leadgen-workers/internal/models"

type Input struct {
	CampaignID  string         `json:"campaignId"`
	ICPConfigID string         `json:"icpConfigId,omitempty"`
	ICPType     models.ICPType `json:"icpType,omitempty"`
}

type Output struct {
	Stats       models.CampaignStats `json:"campaignStats"`
	UsedDefault bool                 `json:"usedDefaultConfig"`
}
