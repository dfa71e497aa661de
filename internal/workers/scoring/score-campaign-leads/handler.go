// internal/workers/scoring/score-campaign-leads/handler.go
package scorecampaignleads

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/icp"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
)

const (
	TaskType = "score-campaign-leads"
)

type Handler struct {
	config  *Config
	db      *sql.DB
	configs *icp.ConfigStore
	logger  logger.Logger
	errs    *stderrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, configs *icp.ConfigStore, log logger.Logger) *Handler {
	wlog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		db:      db,
		configs: configs,
		logger:  wlog,
		errs:    stderrors.NewErrorHandler(wlog),
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
		code := string(stderrors.ErrCodeBulkScoreFailed)
		if stdErr, ok := err.(*stderrors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		// Bulk failures are usually transient writes, so let the
		// error handler decide between engine retries and a BPMN error.
		h.errs.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CampaignID == "" {
		return nil, stderrors.NewInternalError(fmt.Errorf("campaignId is required"))
	}

	cfg, usedDefault := h.resolveConfig(ctx, input)

	businesses, err := h.loadBusinesses(ctx, input.CampaignID)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(err)
	}

	stats := models.CampaignStats{
		CampaignID: input.CampaignID,
		Bands:      map[models.ScoreBand]int{},
	}
	var total float64

	for i := range businesses {
		result := icp.CalculateScore(&businesses[i], cfg)
		if result.Score == nil {
			stats.SkippedCount++
			continue
		}

		band := models.BandFor(*result.Score)
		if err := h.persistScore(ctx, businesses[i].ID, result, band); err != nil {
			return nil, stderrors.NewScoreWriteFailedError(err)
		}

		stats.ScoredCount++
		stats.Bands[band]++
		total += *result.Score
		metrics.LeadsScored.WithLabelValues(string(band)).Inc()
	}

	if stats.ScoredCount > 0 {
		stats.MeanScore = math.Round(total/float64(stats.ScoredCount)*10) / 10
	}

	if err := h.persistStats(ctx, &stats); err != nil {
		return nil, stderrors.NewScoreWriteFailedError(err)
	}

	h.logger.Info("campaign scored", map[string]interface{}{
		"campaignId":  input.CampaignID,
		"scoredCount": stats.ScoredCount,
		"skipped":     stats.SkippedCount,
		"meanScore":   stats.MeanScore,
	})

	return &Output{Stats: stats, UsedDefault: usedDefault}, nil
}

func (h *Handler) resolveConfig(ctx context.Context, input *Input) (*models.ICPConfig, bool) {
	if input.ICPConfigID != "" && h.configs != nil {
		cfg, err := h.configs.Load(ctx, input.ICPConfigID)
		if err == nil {
			return cfg, false
		}
		h.logger.Warn("icp config unavailable, using default", map[string]interface{}{
			"configId": input.ICPConfigID,
			"error":    err.Error(),
		})
	}
	return icp.DefaultConfigFor(input.ICPType), true
}

func (h *Handler) loadBusinesses(ctx context.Context, campaignID string) ([]models.Business, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, name, category, types, num_locations, website, country, address,
		        location_names, website_analysis
		 FROM businesses WHERE campaign_id = $1 ORDER BY id LIMIT $2`,
		campaignID, h.config.BatchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []models.Business
	for rows.Next() {
		var (
			b            models.Business
			types        pq.StringArray
			locations    pq.StringArray
			analysisJSON []byte
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &types, &b.NumLocations,
			&b.Website, &b.Country, &b.Address, &locations, &analysisJSON); err != nil {
			return nil, err
		}
		b.Types = []string(types)
		b.LocationNames = []string(locations)
		b.CampaignID = campaignID
		if len(analysisJSON) > 0 {
			var analysis models.WebsiteAnalysis
			if err := json.Unmarshal(analysisJSON, &analysis); err == nil {
				b.WebsiteAnalysis = &analysis
			}
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

func (h *Handler) persistScore(ctx context.Context, businessID string, result models.ScoreResult, band models.ScoreBand) error {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx,
		`UPDATE businesses
		 SET icp_score = $1, score_band = $2, score_breakdown = $3, scored_at = $4
		 WHERE id = $5`,
		*result.Score, string(band), breakdown, time.Now().UTC(), businessID)
	return err
}

func (h *Handler) persistStats(ctx context.Context, stats *models.CampaignStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx,
		`UPDATE campaigns SET stats = $1, status = $2 WHERE id = $3`,
		data, string(models.CampaignStatusSending), stats.CampaignID)
	return err
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
