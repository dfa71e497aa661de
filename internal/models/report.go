// internal/models/report.go
package models

import "time"

// AuditReport is the customer-facing summary built for a scored business:
// what we found on their web presence and where the outreach angle is.
type AuditReport struct {
	ID           string           `json:"id"`
	BusinessID   string           `json:"businessId"`
	BusinessName string           `json:"businessName"`
	CampaignID   string           `json:"campaignId,omitempty"`
	Score        *float64         `json:"score"`
	Band         ScoreBand        `json:"band,omitempty"`
	Findings     []AuditFinding   `json:"findings"`
	Angle        string           `json:"angle,omitempty"`
	Analysis     *WebsiteAnalysis `json:"analysis,omitempty"`
	GeneratedAt  time.Time        `json:"generatedAt"`
}

// AuditFinding is one observation about the business, tagged by the factor
// that produced it.
type AuditFinding struct {
	Factor   FactorName `json:"factor"`
	Severity string     `json:"severity"`
	Summary  string     `json:"summary"`
}
