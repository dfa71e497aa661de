// internal/workers/enrichment/enrich-contact-data/handler.go
package enrichcontactdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/httpclient"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "enrich-contact-data"
)

type Handler struct {
	config *Config
	client *httpclient.Client
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		db:     db,
		redis:  rdb,
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout+5*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := string(stderrors.ErrCodeEnrichmentFailed)
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
	domain := input.Domain
	if domain == "" {
		domain = domainFromWebsite(input.Website)
	}
	if domain == "" {
		// Nothing to look up: a business with no web presence simply has
		// no enrichable contacts.
		return &Output{Contacts: []models.Contact{}}, nil
	}

	cacheKey := "enrich:domain:" + domain
	if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var contacts []models.Contact
		if err := json.Unmarshal([]byte(cached), &contacts); err == nil {
			contacts = h.bind(ctx, contacts, input.BusinessID)
			return &Output{Contacts: contacts, Total: len(contacts), FromCache: true}, nil
		}
	}

	contacts, err := h.fetchContacts(ctx, domain)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(contacts); err == nil {
		h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	contacts = h.bind(ctx, contacts, input.BusinessID)

	h.logger.Info("enrichment completed", map[string]interface{}{
		"domain":       domain,
		"contactCount": len(contacts),
	})

	return &Output{Contacts: contacts, Total: len(contacts)}, nil
}

func (h *Handler) fetchContacts(ctx context.Context, domain string) ([]models.Contact, error) {
	params := url.Values{}
	params.Set("domain", domain)
	params.Set("api_key", h.config.APIKey)

	reqURL := fmt.Sprintf("%s/domain-search?%s", strings.TrimRight(h.config.BaseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, stderrors.NewEnrichmentFailedError(err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, &stderrors.StandardError{
				Code:      stderrors.ErrCodeEnrichmentTimeout,
				Message:   "Enrichment provider timed out",
				Details:   fmt.Sprintf("domain: %s", domain),
				Retryable: true,
				Timestamp: time.Now().UTC(),
			}
		}
		return nil, stderrors.NewEnrichmentFailedError(err)
	}
	defer resp.Body.Close()

	// Unknown domains are an empty result, not a failure.
	if resp.StatusCode == http.StatusNotFound {
		return []models.Contact{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, stderrors.NewEnrichmentFailedError(fmt.Errorf("provider returned %d", resp.StatusCode))
	}

	var apiResp enrichmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, stderrors.NewEnrichmentFailedError(err)
	}

	contacts := make([]models.Contact, 0, len(apiResp.People))
	for _, p := range apiResp.People {
		if p.FullName == "" && p.Email == "" {
			continue
		}
		contacts = append(contacts, models.Contact{
			ID:        uuid.NewString(),
			Name:      p.FullName,
			Role:      p.Role,
			Email:     p.Email,
			Phone:     p.Phone,
			LinkedIn:  p.LinkedIn,
			Source:    "enrichment-provider",
			CreatedAt: time.Now().UTC(),
		})
	}

	return contacts, nil
}

// bind stamps the business id and persists contacts. Store failures are
// logged, not fatal.
func (h *Handler) bind(ctx context.Context, contacts []models.Contact, businessID string) []models.Contact {
	for i := range contacts {
		contacts[i].BusinessID = businessID

		if h.db == nil {
			continue
		}
		_, err := h.db.ExecContext(ctx, `
			INSERT INTO contacts (id, business_id, name, role, email, phone, linkedin, source, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (business_id, email) DO NOTHING`,
			contacts[i].ID, businessID, contacts[i].Name, contacts[i].Role,
			contacts[i].Email, contacts[i].Phone, contacts[i].LinkedIn,
			contacts[i].Source, contacts[i].CreatedAt)
		if err != nil {
			h.logger.Warn("failed to persist contact", map[string]interface{}{
				"businessId": businessID,
				"error":      err.Error(),
			})
		}
	}
	return contacts
}

// domainFromWebsite strips scheme, path, and www prefix.
func domainFromWebsite(website string) string {
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
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
