// internal/workers/discovery/search-businesses/handler_test.go
package searchbusinesses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadgen-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
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

func providerResponse() map[string]interface{} {
	return map[string]interface{}{
		"status": "OK",
		"results": []map[string]interface{}{
			{
				"place_id":          "place-1",
				"name":              "La Pizzería del Barrio",
				"types":             []string{"Pizza Place", "restaurant"},
				"formatted_address": "Av. Corrientes 1234, Buenos Aires, Argentina",
				"website":           "https://pizzeria.example.com",
				"rating":            4.5,
			},
			{
				"place_id":          "place-2",
				"name":              "Café Central",
				"types":             []string{"Coffee Shop"},
				"formatted_address": "San Martín 500, Montevideo, Uruguay",
			},
		},
	}
}

func newTestHandler(t *testing.T, providerURL string) *Handler {
	cfg := DefaultConfig()
	cfg.BaseURL = providerURL
	cfg.APIKey = "test-key"
	return NewHandler(cfg, nil, setupRedis(t), nil, logger.NewTestLogger(t))
}

func TestExecute_SearchAndMap(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(providerResponse())
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	output, err := h.Execute(context.Background(), &Input{
		CampaignID: "camp-1",
		Query:      "pizza",
		Location:   "Buenos Aires",
	})
	require.NoError(t, err)
	assert.Equal(t, "pizza Buenos Aires", gotQuery)
	require.Len(t, output.Businesses, 2)
	assert.False(t, output.FromCache)

	first := output.Businesses[0]
	assert.Equal(t, "La Pizzería del Barrio", first.Name)
	assert.Equal(t, "Pizza Place", first.Category)
	assert.Equal(t, "camp-1", first.CampaignID)
	require.NotNil(t, first.Website)
	require.NotNil(t, first.Country)
	assert.Equal(t, "Argentina", *first.Country)
	assert.NotEmpty(t, first.ID)

	second := output.Businesses[1]
	assert.Nil(t, second.Website)
	require.NotNil(t, second.Country)
	assert.Equal(t, "Uruguay", *second.Country)
}

func TestExecute_PersistsBusinessesAsArrayColumns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse())
	}))
	defer server.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// types must land as a Postgres array literal, not JSON text, or the
	// TEXT[] column rejects the row and scoring later reads nothing.
	mock.ExpectExec("INSERT INTO businesses").
		WithArgs(sqlmock.AnyArg(), "place-1", "camp-1", "La Pizzería del Barrio", "Pizza Place",
			`{"Pizza Place","restaurant"}`, "https://pizzeria.example.com", "Argentina",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO businesses").
		WithArgs(sqlmock.AnyArg(), "place-2", "camp-1", "Café Central", "Coffee Shop",
			`{"Coffee Shop"}`, nil, "Uruguay",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.APIKey = "test-key"
	h := NewHandler(cfg, db, setupRedis(t), nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{
		CampaignID: "camp-1",
		Query:      "pizza",
		Location:   "Buenos Aires",
	})
	require.NoError(t, err)
	assert.Len(t, output.Businesses, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CachesResults(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(providerResponse())
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)
	input := &Input{CampaignID: "camp-1", Query: "pizza", Location: "Buenos Aires"}

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, 1, calls)
	assert.Len(t, output.Businesses, 2)
}

func TestExecute_MaxResultsCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse())
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	output, err := h.Execute(context.Background(), &Input{Query: "pizza", MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, output.Businesses, 1)
}

func TestExecute_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	_, err := h.Execute(context.Background(), &Input{Query: "pizza"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLACES_SEARCH_FAILED")
}

func TestExecute_ProviderStatusRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "REQUEST_DENIED"})
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	_, err := h.Execute(context.Background(), &Input{Query: "pizza"})
	require.Error(t, err)
}

func TestExecute_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ZERO_RESULTS"})
	}))
	defer server.Close()

	h := newTestHandler(t, server.URL)

	output, err := h.Execute(context.Background(), &Input{Query: "nothing here"})
	require.NoError(t, err)
	assert.Empty(t, output.Businesses)
	assert.Equal(t, 0, output.Total)
}

func TestExecute_MissingQuery(t *testing.T) {
	h := newTestHandler(t, "http://localhost:0")

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
}

func TestExecute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(providerResponse())
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.Timeout = 50 * time.Millisecond
	h := NewHandler(cfg, nil, setupRedis(t), nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Query: "pizza"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLACES_SEARCH_TIMEOUT")
}

func TestCountryFromAddress(t *testing.T) {
	tests := []struct {
		address  string
		expected string
	}{
		{"Av. Corrientes 1234, Buenos Aires, Argentina", "Argentina"},
		{"Single line", ""},
		{"Street 1, 1638", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, countryFromAddress(tt.address), tt.address)
	}
}
