// internal/icp/store.go
package icp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"leadgen-workers/internal/common/logger"
	"leadgen-workers/internal/models"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const configCachePrefix = "icp:config:"

// ErrConfigNotFound is returned when no config row exists for the
// requested id. Callers typically fall back to DefaultConfigFor.
var ErrConfigNotFound = fmt.Errorf("icp config not found")

// ConfigStore loads scoring configs through a Redis cache backed by
// Postgres. Cached entries expire after ttl so weight edits in the
// database take effect without a restart.
type ConfigStore struct {
	db     *sql.DB
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewConfigStore(db *sql.DB, rdb *redis.Client, ttl time.Duration, log logger.Logger) *ConfigStore {
	return &ConfigStore{db: db, redis: rdb, ttl: ttl, logger: log}
}

// Load fetches the config with the given id, preferring the cache.
func (s *ConfigStore) Load(ctx context.Context, configID string) (*models.ICPConfig, error) {
	if configID == "" {
		return nil, ErrConfigNotFound
	}

	cacheKey := configCachePrefix + configID
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cfg models.ICPConfig
			if err := json.Unmarshal([]byte(cached), &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	cfg, err := s.loadFromDB(ctx, configID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(cfg); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
				s.logger.Warn("failed to cache icp config", map[string]interface{}{
					"configId": configID,
					"error":    err.Error(),
				})
			}
		}
	}

	return cfg, nil
}

func (s *ConfigStore) loadFromDB(ctx context.Context, configID string) (*models.ICPConfig, error) {
	var (
		cfg         models.ICPConfig
		factorsJSON []byte
		countries   pq.StringArray
	)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, factors, target_countries
		 FROM icp_configs WHERE id = $1`, configID)
	if err := row.Scan(&cfg.ID, &cfg.Name, &cfg.Type, &factorsJSON, &countries); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("load icp config %s: %w", configID, err)
	}

	if err := json.Unmarshal(factorsJSON, &cfg.Factors); err != nil {
		return nil, fmt.Errorf("parse factors for config %s: %w", configID, err)
	}
	cfg.TargetCountries = []string(countries)

	return &cfg, nil
}

// Invalidate drops the cached entry for a config id.
func (s *ConfigStore) Invalidate(ctx context.Context, configID string) {
	if s.redis == nil || configID == "" {
		return
	}
	s.redis.Del(ctx, configCachePrefix+configID)
}
