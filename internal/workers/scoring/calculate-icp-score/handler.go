// internal/workers/scoring/calculate-icp-score/handler.go
package calculateicpscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/icp"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-icp-score"
)

type Handler struct {
	config  *Config
	db      *sql.DB
	configs *icp.ConfigStore
	logger  logger.Logger
}

func NewHandler(config *Config, db *sql.DB, configs *icp.ConfigStore, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		db:      db,
		configs: configs,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, string(stderrors.ErrCodeParseError), fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := string(stderrors.ErrCodeScoreWriteFailed)
		if stdErr, ok := err.(*stderrors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.failJob(client, job, code, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	cfg, usedDefault := h.resolveConfig(ctx, input)

	result := icp.CalculateScore(input.Business, cfg)

	for name, fb := range result.Breakdown {
		h.logger.Debug("factor scored", map[string]interface{}{
			"businessId":   businessID(input.Business),
			"factor":       string(name),
			"percent":      fb.ScorePercent,
			"weight":       fb.Weight,
			"contribution": fb.Contribution,
		})
	}

	output := &Output{
		Score:       result.Score,
		Breakdown:   result.Breakdown,
		MaxScore:    result.MaxScore,
		UsedDefault: usedDefault,
	}
	if cfg != nil {
		output.ConfigID = cfg.ID
	}

	if result.Score != nil {
		output.Band = models.BandFor(*result.Score)
		metrics.LeadsScored.WithLabelValues(string(output.Band)).Inc()

		if err := h.persist(ctx, input.Business, result, output.Band); err != nil {
			return nil, stderrors.NewScoreWriteFailedError(err)
		}
	}

	h.logger.Info("business scored", map[string]interface{}{
		"businessId":  businessID(input.Business),
		"score":       scoreValue(result.Score),
		"band":        string(output.Band),
		"usedDefault": usedDefault,
	})

	return output, nil
}

// resolveConfig loads the requested config, falling back to the built-in
// default for the input's ICP type when the id is absent or unknown.
func (h *Handler) resolveConfig(ctx context.Context, input *Input) (*models.ICPConfig, bool) {
	if input.ICPConfigID != "" && h.configs != nil {
		cfg, err := h.configs.Load(ctx, input.ICPConfigID)
		if err == nil {
			return cfg, false
		}
		h.logger.Warn("icp config unavailable, using default", map[string]interface{}{
			"configId": input.ICPConfigID,
			"icpType":  string(input.ICPType),
			"error":    err.Error(),
		})
	}
	return icp.DefaultConfigFor(input.ICPType), true
}

func (h *Handler) persist(ctx context.Context, business *models.Business, result models.ScoreResult, band models.ScoreBand) error {
	if h.db == nil || business == nil || business.ID == "" {
		return nil
	}

	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return err
	}

	_, err = h.db.ExecContext(ctx,
		`UPDATE businesses
		 SET icp_score = $1, score_band = $2, score_breakdown = $3, scored_at = $4
		 WHERE id = $5`,
		*result.Score, string(band), breakdown, time.Now().UTC(), business.ID)
	return err
}

func businessID(b *models.Business) string {
	if b == nil {
		return ""
	}
	return b.ID
}

func scoreValue(score *float64) interface{} {
	if score == nil {
		return nil
	}
	return *score
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute exposes the core logic for tests and tooling.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
