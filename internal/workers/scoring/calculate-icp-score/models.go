// internal/workers/scoring/calculate-icp-score/models.go
package calculateicpscore

import "leadgen-workers/internal/models"

// Input carries the business to score plus the config selection. When
// ICPConfigID is empty, or names a config that no longer exists, the
// default config for ICPType is used instead.
type Input struct {
	Business    *models.Business `json:"business"`
	ICPConfigID string           `json:"icpConfigId,omitempty"`
	ICPType     models.ICPType   `json:"icpType,omitempty"`
}

type Output struct {
	Score       *float64                                     `json:"icpScore"`
	Band        models.ScoreBand                             `json:"scoreBand,omitempty"`
	Breakdown   map[models.FactorName]models.FactorBreakdown `json:"breakdown"`
	MaxScore    float64                                      `json:"maxScore"`
	ConfigID    string                                       `json:"configId,omitempty"`
	UsedDefault bool                                         `json:"usedDefaultConfig"`
}
