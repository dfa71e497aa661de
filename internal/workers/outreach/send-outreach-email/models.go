// internal/workers/outreach/send-outreach-email/models.go
package sendoutreachemail

import (
	"time"

	"leadgen-workers/internal/models"
)

type Input struct {
	CampaignID string               `json:"campaignId"`
	BusinessID string               `json:"businessId"`
	To         string               `json:"to"`
	Template   models.EmailTemplate `json:"emailTemplate"`
	Vars       models.TemplateVars  `json:"templateVars"`
}

type Output struct {
	Sent      bool      `json:"sent"`
	Duplicate bool      `json:"duplicate"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}
