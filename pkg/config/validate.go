package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Validate ensures the configuration is usable. Credentials are not checked
// here because several commands (mcp, config) run without them.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Anthropic.MaxTokens <= 0 {
		return errors.New("anthropic.max_tokens must be positive")
	}
	if err := c.validateEnrich(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateEnrich() error {
	if c.Enrich.RequestsPerSecond <= 0 {
		return errors.New("enrich.requests_per_second must be positive")
	}
	if c.Enrich.Concurrency <= 0 {
		return errors.New("enrich.concurrency must be positive")
	}
	return nil
}
