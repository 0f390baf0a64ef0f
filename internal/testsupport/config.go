// Package testsupport provides fixtures shared by package tests: isolated
// configs, sample plugins, and history stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"tes3conv/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithHistoryDisabled turns the conversion journal off.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithWorkers sets the batch worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Workers = n
	}
}

// WithPluginEncoding overrides the plugin string encoding.
func WithPluginEncoding(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.PluginEncoding = name
	}
}

// WithLocalize sets the localization default.
func WithLocalize(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Localize = enabled
	}
}
