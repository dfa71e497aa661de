// internal/workers/outreach/select-template/config.go
package selecttemplate

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	MaxJobsActive     int           `mapstructure:"max_jobs_active"`
	Timeout           time.Duration `mapstructure:"timeout"`
	DefaultTemplateID string        `mapstructure:"default_template_id"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		MaxJobsActive:     10,
		Timeout:           5 * time.Second,
		DefaultTemplateID: "generic-intro",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DefaultTemplateID == "" {
		return fmt.Errorf("default_template_id is required")
	}
	return nil
}
