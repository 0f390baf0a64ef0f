package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	if value, ok := os.LookupEnv(envPluginEncoding); ok && strings.TrimSpace(value) != "" {
		c.Conversion.PluginEncoding = value
	}
	name := strings.ToLower(strings.TrimSpace(c.Conversion.PluginEncoding))
	if name == "" {
		name = defaultPluginEncoding
	}
	// Canonicalize aliases such as "cp1251" so logs and the journal agree.
	if enc, err := htmlindex.Get(name); err == nil {
		if canonical, err := htmlindex.Name(enc); err == nil {
			name = canonical
		}
	}
	c.Conversion.PluginEncoding = name
	if c.Conversion.Workers == 0 {
		c.Conversion.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	if level == "warning" {
		level = "warn"
	}
	c.Logging.Level = level
}
