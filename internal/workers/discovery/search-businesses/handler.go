// internal/workers/discovery/search-businesses/handler.go
package searchbusinesses

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadgen-workers/internal/common/database"
	stderrors "leadgen-workers/internal/common/errors"
	"leadgen-workers/internal/common/httpclient"
	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/common/metrics"
	"leadgen-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "search-businesses"
)

type Handler struct {
	config *Config
	client *httpclient.Client
	db     *sql.DB
	redis  *redis.Client
	es     *database.ElasticsearchClient
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, es *database.ElasticsearchClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		db:     db,
		redis:  rdb,
		es:     es,
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
		code := string(stderrors.ErrCodePlacesSearchFailed)
		if stdErr, ok := err.(*stderrors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.failJob(client, job, code, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.BusinessesDiscovered.Add(float64(output.Total))
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Query == "" {
		return nil, stderrors.NewPlacesSearchFailedError(fmt.Errorf("query is required"))
	}

	maxResults := input.MaxResults
	if maxResults <= 0 || maxResults > h.config.MaxResults {
		maxResults = h.config.MaxResults
	}

	cacheKey := h.cacheKey(input.Query, input.Location)
	if cached, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var businesses []models.Business
		if err := json.Unmarshal([]byte(cached), &businesses); err == nil {
			h.logger.Debug("search cache hit", map[string]interface{}{"key": cacheKey})
			businesses = h.attach(ctx, businesses, input.CampaignID)
			return &Output{Businesses: businesses, Total: len(businesses), FromCache: true}, nil
		}
	}

	businesses, err := h.searchProvider(ctx, input.Query, input.Location, maxResults)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(businesses); err == nil {
		h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	businesses = h.attach(ctx, businesses, input.CampaignID)

	h.logger.Info("search completed", map[string]interface{}{
		"query":       input.Query,
		"location":    input.Location,
		"resultCount": len(businesses),
	})

	return &Output{Businesses: businesses, Total: len(businesses)}, nil
}

// searchProvider queries the Places-style API and maps its payload onto
// our Business model.
func (h *Handler) searchProvider(ctx context.Context, query, location string, maxResults int) ([]models.Business, error) {
	params := url.Values{}
	params.Set("query", strings.TrimSpace(query+" "+location))
	params.Set("key", h.config.APIKey)

	searchURL := fmt.Sprintf("%s/textsearch/json?%s", strings.TrimRight(h.config.BaseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, stderrors.NewPlacesSearchFailedError(err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, stderrors.NewPlacesSearchTimeoutError(query)
		}
		return nil, stderrors.NewPlacesSearchFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, stderrors.NewPlacesSearchFailedError(fmt.Errorf("provider returned %d", resp.StatusCode))
	}

	var apiResp placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, stderrors.NewPlacesSearchFailedError(err)
	}

	if apiResp.Status != "" && apiResp.Status != "OK" && apiResp.Status != "ZERO_RESULTS" {
		return nil, stderrors.NewPlacesSearchFailedError(fmt.Errorf("provider status %s", apiResp.Status))
	}

	businesses := make([]models.Business, 0, len(apiResp.Results))
	for i, r := range apiResp.Results {
		if i >= maxResults {
			break
		}
		b := models.Business{
			ID:          uuid.NewString(),
			PlaceID:     r.PlaceID,
			Name:        r.Name,
			Types:       r.Types,
			Phone:       r.Phone,
			Rating:      r.Rating,
			ReviewCount: r.UserRatingsTotal,
			CreatedAt:   time.Now().UTC(),
		}
		if len(r.Types) > 0 {
			b.Category = r.Types[0]
		}
		if r.FormattedAddress != "" {
			addr := r.FormattedAddress
			b.Address = &addr
			if country := countryFromAddress(addr); country != "" {
				b.Country = &country
			}
		}
		if r.Website != "" {
			site := r.Website
			b.Website = &site
		}
		businesses = append(businesses, b)
	}

	return businesses, nil
}

// attach stamps the campaign, upserts rows, and indexes documents. Store
// failures are logged, not fatal: the search result is still useful to
// the workflow.
func (h *Handler) attach(ctx context.Context, businesses []models.Business, campaignID string) []models.Business {
	for i := range businesses {
		businesses[i].CampaignID = campaignID

		if h.db != nil {
			if err := h.upsertBusiness(ctx, &businesses[i]); err != nil {
				h.logger.Warn("failed to persist business", map[string]interface{}{
					"businessId": businesses[i].ID,
					"error":      err.Error(),
				})
			}
		}

		if h.es != nil {
			if doc, err := json.Marshal(businesses[i]); err == nil {
				if err := h.es.IndexDocument(ctx, businesses[i].ID, doc); err != nil {
					h.logger.Warn("failed to index business", map[string]interface{}{
						"businessId": businesses[i].ID,
						"error":      err.Error(),
					})
				}
			}
		}
	}
	return businesses
}

func (h *Handler) upsertBusiness(ctx context.Context, b *models.Business) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO businesses (id, place_id, campaign_id, name, category, types, website, country, address, phone, rating, review_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (place_id) DO UPDATE SET
			campaign_id = EXCLUDED.campaign_id,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			types = EXCLUDED.types,
			website = EXCLUDED.website,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count`,
		b.ID, b.PlaceID, b.CampaignID, b.Name, b.Category, pq.Array(b.Types),
		b.Website, b.Country, b.Address, b.Phone, b.Rating, b.ReviewCount, b.CreatedAt)
	return err
}

func (h *Handler) cacheKey(query, location string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query) + "|" + strings.ToLower(location)))
	return "places:search:" + hex.EncodeToString(sum[:16])
}

// countryFromAddress takes the last comma-separated component, which is
// where the provider puts the country in formatted addresses.
func countryFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	// Trailing postal codes ("Argentina B1638") are not a country.
	if _, err := strconv.Atoi(last); err == nil {
		return ""
	}
	return last
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
