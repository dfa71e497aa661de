// internal/workers/enrichment/analyze-website/handler.go
package analyzewebsite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/httpclient"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-website"
)

var (
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>\s*\S`)
	metaDescRe = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]+content=["'][^"']+`)
)

// Signal keyword sets, scanned over lowercased HTML.
var (
	whatsappMarkers = []string{"wa.me/", "api.whatsapp.com", "whatsapp"}
	reservationMarkers = []string{
		"opentable", "resy.com", "thefork", "reservation", "reserva", "book a table",
	}
	directOrderingMarkers = []string{
		"order online", "add to cart", "carrito", "pedí online", "checkout",
	}
	thirdPartyMarkers = []string{
		"pedidosya", "rappi", "ubereats", "uber eats", "doordash", "deliveroo",
	}
)

type Handler struct {
	config *Config
	client *httpclient.Client
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout+5*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stderrors.ErrCodeWebsiteFetchFailed)).Inc()
		h.failJob(client, job, string(stderrors.ErrCodeWebsiteFetchFailed), err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	analysis := models.WebsiteAnalysis{AnalyzedAt: time.Now().UTC()}

	if input.Website == "" {
		// No site to inspect: every signal stays at its unknown/false zero.
		h.persist(ctx, input.BusinessID, &analysis)
		return &Output{Analysis: analysis}, nil
	}

	body, err := h.fetch(ctx, input.Website)
	if err != nil {
		// Unreachable sites are a finding (SEO unknown), not a job failure.
		h.logger.Warn("website unreachable", map[string]interface{}{
			"website": input.Website,
			"error":   err.Error(),
		})
		h.persist(ctx, input.BusinessID, &analysis)
		return &Output{Analysis: analysis}, nil
	}

	lower := strings.ToLower(body)

	hasSEO := titleRe.MatchString(body) && metaDescRe.MatchString(body)
	analysis.HasSEO = &hasSEO
	analysis.HasWhatsApp = containsAny(lower, whatsappMarkers)
	analysis.HasReservation = containsAny(lower, reservationMarkers)
	analysis.HasDirectOrdering = containsAny(lower, directOrderingMarkers)
	analysis.HasThirdPartyDelivery = containsAny(lower, thirdPartyMarkers)

	h.persist(ctx, input.BusinessID, &analysis)

	h.logger.Info("website analyzed", map[string]interface{}{
		"website":           input.Website,
		"hasSEO":            hasSEO,
		"hasWhatsApp":       analysis.HasWhatsApp,
		"hasDirectOrdering": analysis.HasDirectOrdering,
	})

	return &Output{Analysis: analysis, Reachable: true}, nil
}

func (h *Handler) fetch(ctx context.Context, website string) (string, error) {
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, website, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "leadgen-workers/1.0 (site audit)")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("site returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.config.MaxBodyBytes))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// persist stores the analysis on the business row; failures are logged.
func (h *Handler) persist(ctx context.Context, businessID string, analysis *models.WebsiteAnalysis) {
	if h.db == nil || businessID == "" {
		return
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if _, err := h.db.ExecContext(ctx,
		`UPDATE businesses SET website_analysis = $1 WHERE id = $2`,
		data, businessID); err != nil {
		h.logger.Warn("failed to persist website analysis", map[string]interface{}{
			"businessId": businessID,
			"error":      err.Error(),
		})
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
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
