// internal/icp/store_test.go
package icp

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/models"
)

func storeTestConfig() *models.ICPConfig {
	return &models.ICPConfig{
		ID:   "cfg-store",
		Name: "Store Test",
		Type: models.ICPTypeIndependent,
		Factors: map[models.FactorName]models.FactorSpec{
			models.FactorNumLocations: {Enabled: true, Weight: 5, MinIdeal: fptr(1), MaxIdeal: fptr(4)},
			models.FactorGeography:    {Enabled: true, Weight: 5},
		},
		TargetCountries: []string{"Argentina"},
	}
}

func fptr(v float64) *float64 { return &v }

func TestConfigStore_Load_CacheMiss(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	cfg := storeTestConfig()
	cacheKey := "icp:config:" + cfg.ID
	redisMock.ExpectGet(cacheKey).RedisNil()

	factorsJSON, _ := json.Marshal(cfg.Factors)
	rows := sqlmock.NewRows([]string{"id", "name", "type", "factors", "target_countries"}).
		AddRow(cfg.ID, cfg.Name, string(cfg.Type), factorsJSON, `{Argentina}`)
	dbMock.ExpectQuery(`SELECT id, name, type, factors, target_countries`).
		WithArgs(cfg.ID).
		WillReturnRows(rows)

	cached, _ := json.Marshal(cfg)
	redisMock.ExpectSet(cacheKey, cached, time.Minute).SetVal("OK")

	store := NewConfigStore(db, redisClient, time.Minute, logger.NewNoOpLogger())
	got, err := store.Load(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.Equal(t, cfg.Name, got.Name)
	assert.Equal(t, models.ICPTypeIndependent, got.Type)
	assert.Equal(t, []string{"Argentina"}, got.TargetCountries)
	assert.Equal(t, 5.0, got.Factors[models.FactorGeography].Weight)

	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestConfigStore_Load_CacheHit(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	cfg := storeTestConfig()
	cached, _ := json.Marshal(cfg)
	redisMock.ExpectGet("icp:config:" + cfg.ID).SetVal(string(cached))

	store := NewConfigStore(db, redisClient, time.Minute, logger.NewNoOpLogger())
	got, err := store.Load(context.Background(), cfg.ID)

	require.NoError(t, err)
	assert.Equal(t, cfg.ID, got.ID)

	// No database query on a cache hit.
	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestConfigStore_Load_NotFound(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("icp:config:missing").RedisNil()

	dbMock.ExpectQuery(`SELECT id, name, type, factors, target_countries`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	store := NewConfigStore(db, redisClient, time.Minute, logger.NewNoOpLogger())
	_, err = store.Load(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfigStore_Load_EmptyID(t *testing.T) {
	store := NewConfigStore(nil, nil, time.Minute, logger.NewNoOpLogger())
	_, err := store.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestConfigStore_Invalidate(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("icp:config:cfg-store").SetVal(1)

	store := NewConfigStore(nil, redisClient, time.Minute, logger.NewNoOpLogger())
	store.Invalidate(context.Background(), "cfg-store")

	assert.NoError(t, redisMock.ExpectationsWereMet())
}
