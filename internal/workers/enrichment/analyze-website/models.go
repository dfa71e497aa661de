// internal/workers/enrichment/analyze-website/models.go
package analyzewebsite

import "leadgen-workers/internal/models"

type Input struct {
	BusinessID string `json:"businessId"`
	Website    string `json:"website"`
}

type Output struct {
	Analysis  models.WebsiteAnalysis `json:"websiteAnalysis"`
	Reachable bool                   `json:"reachable"`
}
