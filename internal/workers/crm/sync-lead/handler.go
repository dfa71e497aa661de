// internal/workers/crm/sync-lead/handler.go
package synclead

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"leadgen-workers/internal/common/crm"
	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-lead"
)

// LeadCreator is the slice of the CRM client this worker needs.
type LeadCreator interface {
	CreateLead(ctx context.Context, lead *crm.Lead) (string, error)
}

type Handler struct {
	config *Config
	crm    LeadCreator
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, crmClient LeadCreator, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		crm:    crmClient,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		code := string(stderrors.ErrCodeCRMSyncFailed)
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
	if input.Business == nil || input.Business.Name == "" {
		return nil, stderrors.NewInternalError(fmt.Errorf("business is required"))
	}

	// Below-threshold leads are a normal outcome, not an error.
	if input.Score == nil || *input.Score < h.config.SyncThreshold {
		h.logger.Info("lead below sync threshold, skipping", map[string]interface{}{
			"businessId": input.Business.ID,
			"score":      scoreValue(input.Score),
			"threshold":  h.config.SyncThreshold,
		})
		return &Output{Skipped: true}, nil
	}

	lead := h.buildLead(input)

	leadID, err := h.crm.CreateLead(ctx, lead)
	if err != nil {
		return nil, stderrors.NewCRMSyncFailedError(err)
	}

	h.recordLeadID(ctx, input.Business.ID, leadID)

	h.logger.Info("lead synced to crm", map[string]interface{}{
		"businessId": input.Business.ID,
		"crmLeadId":  leadID,
		"score":      *input.Score,
	})

	return &Output{Synced: true, LeadID: leadID}, nil
}

func (h *Handler) buildLead(input *Input) *crm.Lead {
	biz := input.Business

	lead := &crm.Lead{
		Company:      biz.Name,
		Phone:        biz.Phone,
		Score:        input.Score,
		Band:         string(input.Band),
		Source:       h.config.LeadSource,
		CampaignName: input.CampaignName,
	}
	if biz.Website != nil {
		lead.Website = *biz.Website
	}
	if contact := input.Contact; contact != nil {
		lead.ContactName = contact.Name
		lead.Email = contact.Email
		if contact.Phone != "" {
			lead.Phone = contact.Phone
		}
	}
	return lead
}

func (h *Handler) recordLeadID(ctx context.Context, businessID, leadID string) {
	if h.db == nil || businessID == "" {
		return
	}
	if _, err := h.db.ExecContext(ctx,
		`UPDATE businesses SET crm_lead_id = $1 WHERE id = $2`,
		leadID, businessID); err != nil {
		h.logger.Warn("failed to record crm lead id", map[string]interface{}{
			"businessId": businessID,
			"error":      err.Error(),
		})
	}
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
