// internal/workers/outreach/send-outreach-email/config.go
package sendoutreachemail

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`

	FromAddress string `mapstructure:"from_address"`
	SenderName  string `mapstructure:"sender_name"`

	UseSES bool `mapstructure:"use_ses"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	UseTLS       bool   `mapstructure:"use_tls"`

	// DedupTTL bounds how long a campaign/business/template triple is
	// remembered to suppress duplicate sends.
	DedupTTL time.Duration `mapstructure:"dedup_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		SMTPPort:      587,
		UseTLS:        true,
		DedupTTL:      30 * 24 * time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.FromAddress == "" {
		return fmt.Errorf("from_address is required")
	}
	if !c.UseSES {
		if c.SMTPHost == "" {
			return fmt.Errorf("smtp_host is required when SES is disabled")
		}
		if c.SMTPPort <= 0 {
			return fmt.Errorf("smtp_port must be positive")
		}
	}
	if c.DedupTTL <= 0 {
		return fmt.Errorf("dedup_ttl must be positive")
	}
	return nil
}
