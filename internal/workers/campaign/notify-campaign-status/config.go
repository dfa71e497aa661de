// internal/workers/campaign/notify-campaign-status/config.go
package notifycampaignstatus

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FromAddress   string        `mapstructure:"from_address"`
	SMSEnabled    bool          `mapstructure:"sms_enabled"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       15 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FromAddress == "" {
		return fmt.Errorf("from_address is required")
	}
	return nil
}
