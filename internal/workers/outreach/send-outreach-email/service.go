// internal/workers/outreach/send-outreach-email/service.go
package sendoutreachemail

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"text/template"
	"time"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EmailSender delivers one rendered message and returns the provider's
// message id.
type EmailSender interface {
	Send(ctx context.Context, from, to, subject, body string, isHTML bool) (string, error)
	Provider() string
}

type Service struct {
	config *Config
	sender EmailSender
	redis  *redis.Client
	db     *sql.DB
	logger logger.Logger
}

func NewService(config *Config, sender EmailSender, rdb *redis.Client, db *sql.DB, log logger.Logger) *Service {
	return &Service{
		config: config,
		sender: sender,
		redis:  rdb,
		db:     db,
		logger: log,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("sending outreach email", map[string]interface{}{
		"campaignId": input.CampaignID,
		"businessId": input.BusinessID,
		"to":         input.To,
		"templateId": input.Template.ID,
	})

	if err := validateInput(input); err != nil {
		return nil, stderrors.NewEmailValidationFailedError(err.Error())
	}

	subject, body, err := s.render(input)
	if err != nil {
		return nil, &stderrors.StandardError{
			Code:      stderrors.ErrCodeTemplateRenderFailed,
			Message:   "failed to render outreach template",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now(),
		}
	}

	dedupKey := fmt.Sprintf("outreach:sent:%s:%s:%s", input.CampaignID, input.BusinessID, input.Template.ID)
	if s.redis != nil {
		acquired, err := s.redis.SetNX(ctx, dedupKey, time.Now().UTC().Format(time.RFC3339), s.config.DedupTTL).Result()
		if err == nil && !acquired {
			s.logger.Info("duplicate send suppressed", map[string]interface{}{
				"dedupKey": dedupKey,
			})
			return &Output{Duplicate: true}, nil
		}
	}

	messageID, err := s.sender.Send(ctx, s.config.FromAddress, input.To, subject, body, input.Template.IsHTML)
	if err != nil {
		// Release the dedup slot so a retry can send.
		if s.redis != nil {
			s.redis.Del(ctx, dedupKey)
		}
		return nil, stderrors.NewEmailSendFailedError(err)
	}

	sentAt := time.Now().UTC()
	s.record(ctx, input, subject, messageID, sentAt)
	metrics.OutreachEmailsSent.WithLabelValues(s.sender.Provider()).Inc()

	s.logger.Info("outreach email sent", map[string]interface{}{
		"to":        input.To,
		"messageId": messageID,
		"provider":  s.sender.Provider(),
	})

	return &Output{
		Sent:      true,
		MessageID: messageID,
		Provider:  s.sender.Provider(),
		SentAt:    sentAt,
	}, nil
}

func (s *Service) render(input *Input) (string, string, error) {
	vars := input.Vars
	if vars.SenderName == "" {
		vars.SenderName = s.config.SenderName
	}

	subject, err := renderTemplate("subject", input.Template.Subject, vars)
	if err != nil {
		return "", "", err
	}
	body, err := renderTemplate("body", input.Template.Body, vars)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func renderTemplate(name, text string, vars interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

// record stores the send in the outreach log; failures are logged, not
// returned, since the email is already out.
func (s *Service) record(ctx context.Context, input *Input, subject, messageID string, sentAt time.Time) {
	if s.db == nil {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outreach_messages (id, campaign_id, business_id, template_id, recipient, subject, provider, message_id, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), input.CampaignID, input.BusinessID, input.Template.ID,
		input.To, subject, s.sender.Provider(), messageID, sentAt)
	if err != nil {
		s.logger.Warn("failed to record outreach message", map[string]interface{}{
			"businessId": input.BusinessID,
			"error":      err.Error(),
		})
	}
}
