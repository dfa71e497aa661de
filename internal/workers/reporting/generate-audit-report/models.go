// internal/workers/reporting/generate-audit-report/models.go
package generateauditreport

import "leadgen-workers/internal/models"

type Input struct {
	Business  *models.Business                             `json:"business"`
	Score     *float64                                     `json:"icpScore"`
	Band      models.ScoreBand                             `json:"scoreBand,omitempty"`
	Breakdown map[models.FactorName]models.FactorBreakdown `json:"breakdown,omitempty"`
}

type Output struct {
	Report models.AuditReport `json:"auditReport"`
}
