// internal/workers/enrichment/enrich-contact-data/handler_test.go
package enrichcontactdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadgen-workers/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func providerPayload() map[string]interface{} {
	return map[string]interface{}{
		"domain": "pizzeria.example.com",
		"people": []map[string]interface{}{
			{
				"full_name":    "María González",
				"role":         "Owner",
				"email":        "maria@pizzeria.example.com",
				"phone":        "+54 11 5555-1234",
				"linkedin_url": "https://linkedin.com/in/mariagonzalez",
			},
			{
				"full_name": "",
				"email":     "",
			},
		},
	}
}

func newTestHandler(t *testing.T, providerURL string) *Handler {
	cfg := DefaultConfig()
	cfg.BaseURL = providerURL
	cfg.APIKey = "test-key"
	return NewHandler(cfg, nil, setupRedis(t), logger.NewTestLogger(t))
}

func TestExecute_EnrichesContacts(t *testing.T) {
	var gotDomain string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDomain = r.URL.Query().Get("domain")
		json.NewEncoder(w).Encode(providerPayload())
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	output, err := h.Execute(context.Background(), &Input{
		BusinessID: "biz-1",
		Website:    "https://www.pizzeria.example.com/menu",
	})
	require.NoError(t, err)
	assert.Equal(t, "pizzeria.example.com", gotDomain)

	// Empty provider rows are dropped.
	require.Len(t, output.Contacts, 1)
	contact := output.Contacts[0]
	assert.Equal(t, "biz-1", contact.BusinessID)
	assert.Equal(t, "María González", contact.Name)
	assert.Equal(t, "Owner", contact.Role)
	assert.Equal(t, "maria@pizzeria.example.com", contact.Email)
	assert.NotEmpty(t, contact.ID)
}

func TestExecute_CachesByDomain(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(providerPayload())
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	_, err := h.Execute(context.Background(), &Input{BusinessID: "biz-1", Domain: "pizzeria.example.com"})
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), &Input{BusinessID: "biz-2", Domain: "pizzeria.example.com"})
	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, 1, calls)
	// Cached contacts are rebound to the requesting business.
	require.Len(t, output.Contacts, 1)
	assert.Equal(t, "biz-2", output.Contacts[0].BusinessID)
}

func TestExecute_NoDomain(t *testing.T) {
	h := newTestHandler(t, "http://localhost:0")

	output, err := h.Execute(context.Background(), &Input{BusinessID: "biz-1"})
	require.NoError(t, err)
	assert.Empty(t, output.Contacts)
}

func TestExecute_UnknownDomainIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	output, err := h.Execute(context.Background(), &Input{BusinessID: "biz-1", Domain: "unknown.example.com"})
	require.NoError(t, err)
	assert.Empty(t, output.Contacts)
	assert.Equal(t, 0, output.Total)
}

func TestExecute_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	_, err := h.Execute(context.Background(), &Input{BusinessID: "biz-1", Domain: "pizzeria.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENRICHMENT_FAILED")
}

func TestDomainFromWebsite(t *testing.T) {
	tests := []struct {
		website  string
		expected string
	}{
		{"https://www.pizzeria.example.com/menu", "pizzeria.example.com"},
		{"http://example.com", "example.com"},
		{"example.com", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, domainFromWebsite(tt.website), tt.website)
	}
}
