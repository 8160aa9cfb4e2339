package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownloads(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDownloads() error {
	if c.Downloads.PollIntervalMS < 0 {
		return errors.New("downloads.poll_interval_ms must be positive")
	}
	if c.Downloads.QueueCapacity < 0 {
		return errors.New("downloads.queue_capacity must be positive")
	}
	if c.Downloads.SearchLimit < 0 {
		return errors.New("downloads.search_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days cannot be negative")
	}
	return nil
}
