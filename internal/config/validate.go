package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	if _, err := htmlindex.Get(c.Conversion.PluginEncoding); err != nil {
		return fmt.Errorf("conversion.plugin_encoding: unsupported encoding %q", c.Conversion.PluginEncoding)
	}
	if c.Conversion.Workers < 1 || c.Conversion.Workers > maxWorkers {
		return fmt.Errorf("conversion.workers must be between 1 and %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be zero or positive")
	}
	if c.History.Enabled && c.Paths.HistoryDB == "" {
		return errors.New("paths.history_db must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
