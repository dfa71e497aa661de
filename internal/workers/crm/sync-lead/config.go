// internal/workers/crm/sync-lead/config.go
package synclead

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`

	// SyncThreshold is the minimum ICP score a business needs before it
	// is pushed to the CRM.
	SyncThreshold float64 `mapstructure:"sync_threshold"`
	LeadSource    string  `mapstructure:"lead_source"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		SyncThreshold: 5.0,
		LeadSource:    "Lead Gen Pipeline",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.SyncThreshold < 0 {
		return fmt.Errorf("sync_threshold cannot be negative")
	}
	return nil
}
