// Package config loads and validates service configuration.
package config

import (
	"fmt"
	"strings"
)

// ValidateCore ensures critical configuration is present.
func (c *Config) ValidateCore() error {
	var missing []string

	if strings.TrimSpace(c.Server.Port) == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if strings.TrimSpace(c.Redis.URL) == "" {
		missing = append(missing, "REDIS_URL")
	}
	if strings.TrimSpace(c.Email.SMTPHost) == "" {
		missing = append(missing, "SMTP_HOST")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.RateLimit.GlobalPerWindow <= 0 || c.RateLimit.APIPerWindow <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.Summary.MaxInFlight <= 0 {
		return fmt.Errorf("SUMMARY_MAX_IN_FLIGHT must be positive")
	}

	return nil
}
