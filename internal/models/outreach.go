// internal/models/outreach.go
package models

import "time"

// EmailTemplate is a stored outreach template. Subject and Body use Go
// text/template syntax over TemplateVars.
type EmailTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	IsHTML  bool   `json:"isHtml"`
}

// TemplateVars is the variable set available to outreach templates.
type TemplateVars struct {
	BusinessName string   `json:"businessName"`
	ContactName  string   `json:"contactName"`
	Score        *float64 `json:"score,omitempty"`
	Band         string   `json:"band,omitempty"`
	Angle        string   `json:"angle,omitempty"`
	SenderName   string   `json:"senderName"`
}

// OutreachMessage records a sent (or attempted) outreach email.
type OutreachMessage struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	BusinessID string    `json:"businessId"`
	TemplateID string    `json:"templateId"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Provider   string    `json:"provider"`
	MessageID  string    `json:"messageId,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}
