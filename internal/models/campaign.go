// internal/models/campaign.go
package models

import "time"

// CampaignStatus tracks the lifecycle of an outreach campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusSearching CampaignStatus = "searching"
	CampaignStatusScoring   CampaignStatus = "scoring"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
)

// Campaign is one lead-generation run: a search query plus the ICP config
// used to score its results.
type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	OwnerEmail  string         `json:"ownerEmail"`
	OwnerPhone  string         `json:"ownerPhone,omitempty"`
	Query       string         `json:"query"`
	Location    string         `json:"location"`
	ICPConfigID string         `json:"icpConfigId"`
	Status      CampaignStatus `json:"status"`
	Priority    string         `json:"priority,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
}

// CampaignStats aggregates the bulk-scoring result for a campaign.
type CampaignStats struct {
	CampaignID   string            `json:"campaignId"`
	ScoredCount  int               `json:"scoredCount"`
	SkippedCount int               `json:"skippedCount"`
	MeanScore    float64           `json:"meanScore"`
	Bands        map[ScoreBand]int `json:"bands"`
}
