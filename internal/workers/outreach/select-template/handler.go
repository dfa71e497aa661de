// internal/workers/outreach/select-template/handler.go
package selecttemplate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "select-template"
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		code := string(stderrors.ErrCodeTemplateNotFound)
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
	angle := input.AngleFactor
	if angle == "" && input.Report != nil {
		angle = strongestFinding(input.Report.Findings)
	}

	// Most specific match first, then without the angle, then the
	// configured default.
	if angle != "" {
		if tmpl, err := h.lookup(ctx,
			`SELECT id, name, subject, body, is_html FROM email_templates
			 WHERE icp_type = $1 AND band = $2 AND angle_factor = $3 AND active`,
			string(input.ICPType), string(input.Band), string(angle)); err == nil {
			return h.selected(tmpl, false), nil
		}
	}

	if tmpl, err := h.lookup(ctx,
		`SELECT id, name, subject, body, is_html FROM email_templates
		 WHERE icp_type = $1 AND band = $2 AND angle_factor IS NULL AND active`,
		string(input.ICPType), string(input.Band)); err == nil {
		return h.selected(tmpl, false), nil
	}

	tmpl, err := h.lookup(ctx,
		`SELECT id, name, subject, body, is_html FROM email_templates
		 WHERE id = $1`, h.config.DefaultTemplateID)
	if err != nil {
		return nil, stderrors.NewTemplateNotFoundError(h.config.DefaultTemplateID)
	}
	return h.selected(tmpl, true), nil
}

func (h *Handler) lookup(ctx context.Context, query string, args ...interface{}) (*models.EmailTemplate, error) {
	var tmpl models.EmailTemplate
	err := h.db.QueryRowContext(ctx, query, args...).
		Scan(&tmpl.ID, &tmpl.Name, &tmpl.Subject, &tmpl.Body, &tmpl.IsHTML)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (h *Handler) selected(tmpl *models.EmailTemplate, usedDefault bool) *Output {
	h.logger.Info("template selected", map[string]interface{}{
		"templateId":  tmpl.ID,
		"usedDefault": usedDefault,
	})
	return &Output{Template: *tmpl, UsedDefault: usedDefault}
}

// strongestFinding returns the factor of the most severe finding, the
// same ordering the report uses to pick its angle.
func strongestFinding(findings []models.AuditFinding) models.FactorName {
	for _, severity := range []string{"high", "medium", "low"} {
		for _, f := range findings {
			if f.Severity == severity {
				return f.Factor
			}
		}
	}
	return ""
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
