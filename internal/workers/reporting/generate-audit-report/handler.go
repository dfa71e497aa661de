// internal/workers/reporting/generate-audit-report/handler.go
package generateauditreport

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "generate-audit-report"
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
		code := string(stderrors.ErrCodeReportBuildFailed)
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
	if input.Business == nil || input.Business.ID == "" {
		return nil, stderrors.NewInternalError(fmt.Errorf("business is required"))
	}

	biz := input.Business
	findings := buildFindings(biz, input.Breakdown)

	report := models.AuditReport{
		ID:           uuid.New().String(),
		BusinessID:   biz.ID,
		BusinessName: biz.Name,
		CampaignID:   biz.CampaignID,
		Score:        input.Score,
		Band:         input.Band,
		Findings:     findings,
		Angle:        pickAngle(findings),
		Analysis:     biz.WebsiteAnalysis,
		GeneratedAt:  time.Now().UTC(),
	}

	if err := validateReport(report); err != nil {
		return nil, stderrors.NewReportValidationFailedError(err.Error())
	}

	if err := h.persist(ctx, &report); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError(err)
	}

	h.logger.Info("audit report generated", map[string]interface{}{
		"reportId":     report.ID,
		"businessId":   biz.ID,
		"findingCount": len(findings),
		"angle":        report.Angle,
	})

	return &Output{Report: report}, nil
}

// buildFindings turns website signals and score contributions into
// customer-facing observations, strongest gaps first.
func buildFindings(biz *models.Business, breakdown map[models.FactorName]models.FactorBreakdown) []models.AuditFinding {
	findings := []models.AuditFinding{}

	if biz.Website == nil || *biz.Website == "" {
		findings = append(findings, models.AuditFinding{
			Factor:   models.FactorNoWebsite,
			Severity: "high",
			Summary:  fmt.Sprintf("%s has no website; customers searching online cannot find a menu or order.", biz.Name),
		})
	}

	if analysis := biz.WebsiteAnalysis; analysis != nil {
		switch {
		case analysis.HasSEO == nil:
			if biz.Website != nil && *biz.Website != "" {
				findings = append(findings, models.AuditFinding{
					Factor:   models.FactorPoorSEO,
					Severity: "info",
					Summary:  "The website could not be reached during the audit.",
				})
			}
		case !*analysis.HasSEO:
			findings = append(findings, models.AuditFinding{
				Factor:   models.FactorPoorSEO,
				Severity: "high",
				Summary:  "The website is missing basic SEO metadata, so it ranks poorly in local search.",
			})
		}

		if analysis.HasThirdPartyDelivery && !analysis.HasDirectOrdering {
			findings = append(findings, models.AuditFinding{
				Factor:   models.FactorHasDirectOrdering,
				Severity: "high",
				Summary:  "Orders go through third-party delivery apps only; every sale pays a marketplace commission.",
			})
		} else if !analysis.HasDirectOrdering {
			findings = append(findings, models.AuditFinding{
				Factor:   models.FactorHasDirectOrdering,
				Severity: "medium",
				Summary:  "There is no way to order directly from the website.",
			})
		}

		if !analysis.HasWhatsApp {
			findings = append(findings, models.AuditFinding{
				Factor:   models.FactorHasWhatsApp,
				Severity: "medium",
				Summary:  "No WhatsApp contact is offered, which local customers expect.",
			})
		}

		if !analysis.HasReservation {
			findings = append(findings, models.AuditFinding{
				Factor:   models.FactorHasReservation,
				Severity: "low",
				Summary:  "Tables cannot be booked online.",
			})
		}
	}

	if geo, ok := breakdown[models.FactorGeography]; ok && geo.ScorePercent == 0 {
		findings = append(findings, models.AuditFinding{
			Factor:   models.FactorGeography,
			Severity: "info",
			Summary:  "The business is outside the campaign's target markets.",
		})
	}

	return findings
}

// pickAngle selects the opening pitch from the most severe finding.
func pickAngle(findings []models.AuditFinding) string {
	angles := map[models.FactorName]string{
		models.FactorNoWebsite:         "get found online with a simple website",
		models.FactorHasDirectOrdering: "stop paying delivery-app commissions with direct ordering",
		models.FactorPoorSEO:           "show up in local search results",
		models.FactorHasWhatsApp:       "let customers reach you on WhatsApp",
		models.FactorHasReservation:    "take table bookings online",
	}

	for _, severity := range []string{"high", "medium", "low"} {
		for _, f := range findings {
			if f.Severity != severity {
				continue
			}
			if angle, ok := angles[f.Factor]; ok {
				return angle
			}
		}
	}
	return ""
}

func (h *Handler) persist(ctx context.Context, report *models.AuditReport) error {
	if h.db == nil {
		return nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT INTO audit_reports (id, business_id, campaign_id, report, generated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		report.ID, report.BusinessID, report.CampaignID, data, report.GeneratedAt)
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
