// internal/workers/scoring/calculate-icp-score/config.go
package calculateicpscore

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxJobsActive  int           `mapstructure:"max_jobs_active"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ConfigCacheTTL time.Duration `mapstructure:"config_cache_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  10,
		Timeout:        10 * time.Second,
		ConfigCacheTTL: 5 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ConfigCacheTTL <= 0 {
		return fmt.Errorf("config_cache_ttl must be positive")
	}
	return nil
}
