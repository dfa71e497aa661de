// internal/workers/campaign/notify-campaign-status/models.go
package notifycampaignstatus

import "leadgen-workers/internal/models"

type Input struct {
	Campaign *models.Campaign      `json:"campaign"`
	Status   models.CampaignStatus `json:"status"`
	Stats    *models.CampaignStats `json:"campaignStats,omitempty"`
	Detail   string                `json:"detail,omitempty"`
}

type Output struct {
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	SMSMessageID   string `json:"smsMessageId,omitempty"`
}
