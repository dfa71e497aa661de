// internal/workers/outreach/select-template/models.go
package selecttemplate

import "leadgen-workers/internal/models"

type Input struct {
	ICPType     models.ICPType      `json:"icpType"`
	Band        models.ScoreBand    `json:"scoreBand"`
	AngleFactor models.FactorName   `json:"angleFactor,omitempty"`
	Report      *models.AuditReport `json:"auditReport,omitempty"`
}

type Output struct {
	Template    models.EmailTemplate `json:"emailTemplate"`
	UsedDefault bool                 `json:"usedDefaultTemplate"`
}
