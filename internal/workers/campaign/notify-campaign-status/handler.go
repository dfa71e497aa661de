// internal/workers/campaign/notify-campaign-status/handler.go
package notifycampaignstatus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-campaign-status"
)

type Handler struct {
	config *Config
	email  EmailNotifier
	sms    SMSNotifier
	logger logger.Logger
}

func NewHandler(config *Config, email EmailNotifier, sms SMSNotifier, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
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
		code := string(stderrors.ErrCodeNotificationSendFailed)
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
	if input.Campaign == nil || input.Campaign.OwnerEmail == "" {
		return nil, stderrors.NewInternalError(fmt.Errorf("campaign with ownerEmail is required"))
	}

	campaign := input.Campaign
	subject, body := h.compose(input)

	emailID, err := h.email.Send(ctx, h.config.FromAddress, campaign.OwnerEmail, subject, body)
	if err != nil {
		return nil, stderrors.NewNotificationSendFailedError(err)
	}

	output := &Output{EmailSent: true, EmailMessageID: emailID}

	if h.shouldSendSMS(input) {
		smsID, err := h.sms.Publish(ctx, campaign.OwnerPhone, smsText(input))
		if err != nil {
			// The email already went out; an SMS failure is logged,
			// not retried.
			h.logger.Warn("failed to send status SMS", map[string]interface{}{
				"campaignId": campaign.ID,
				"error":      err.Error(),
			})
		} else {
			output.SMSSent = true
			output.SMSMessageID = smsID
		}
	}

	h.logger.Info("campaign status notified", map[string]interface{}{
		"campaignId": campaign.ID,
		"status":     string(input.Status),
		"smsSent":    output.SMSSent,
	})

	return output, nil
}

func (h *Handler) shouldSendSMS(input *Input) bool {
	return h.config.SMSEnabled &&
		h.sms != nil &&
		input.Campaign.OwnerPhone != "" &&
		strings.EqualFold(input.Campaign.Priority, "high")
}

func (h *Handler) compose(input *Input) (string, string) {
	campaign := input.Campaign
	subject := fmt.Sprintf("Campaign %q is now %s", campaign.Name, input.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "Campaign: %s\nStatus: %s\n", campaign.Name, input.Status)
	if input.Detail != "" {
		fmt.Fprintf(&b, "Detail: %s\n", input.Detail)
	}
	if stats := input.Stats; stats != nil {
		fmt.Fprintf(&b, "\nLeads scored: %d (skipped %d)\nMean score: %.1f\n",
			stats.ScoredCount, stats.SkippedCount, stats.MeanScore)
		for _, band := range []models.ScoreBand{models.BandHot, models.BandWarm, models.BandCold} {
			if n, ok := stats.Bands[band]; ok {
				fmt.Fprintf(&b, "  %s: %d\n", band, n)
			}
		}
	}

	return subject, b.String()
}

func smsText(input *Input) string {
	msg := fmt.Sprintf("Campaign %q: %s", input.Campaign.Name, input.Status)
	if stats := input.Stats; stats != nil {
		msg += fmt.Sprintf(" (%d leads scored, %d hot)", stats.ScoredCount, stats.Bands[models.BandHot])
	}
	return msg
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
