package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tes3conv/internal/config"
	"tes3conv/internal/convert"
	"tes3conv/internal/history"
	"tes3conv/internal/logging"
	"tes3conv/internal/plugin"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	historyOnce sync.Once
	history     *history.Store
	historyErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				if level == "warning" {
					level = "warn"
				}
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the command logger and prunes expired log files once
// per invocation.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		current := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
		if removed := logging.PruneLogs(logger, cfg.Paths.LogDir, "*.log", cfg.Logging.RetentionDays, current); removed > 0 {
			logger.Debug("pruned expired log files", logging.Int("removed", removed))
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// ensureHistory opens the conversion journal, or returns nil when it is
// disabled. Entries past the retention window are pruned on open.
func (c *commandContext) ensureHistory(ctx context.Context) (*history.Store, error) {
	c.historyOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.historyErr = err
			return
		}
		if !cfg.History.Enabled {
			return
		}
		store, err := history.Open(cfg)
		if err != nil {
			c.historyErr = fmt.Errorf("open history: %w", err)
			return
		}
		if cfg.History.RetentionDays > 0 {
			removed, err := store.PruneOlderThan(ctx, cfg.History.RetentionDays)
			if logger, _ := c.ensureLogger(); logger != nil {
				if err != nil {
					logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "run `tes3conv history prune` manually"),
						logging.String(logging.FieldImpact, "old journal entries are kept"),
					)
				} else if removed > 0 {
					logger.Debug("pruned expired history entries", logging.Int64("removed", removed))
				}
			}
		}
		c.history = store
	})
	return c.history, c.historyErr
}

// newPipeline wires a conversion pipeline from config and per-command
// overrides.
func (c *commandContext) newPipeline(cmd *cobra.Command, encoding string, backup bool) (*convert.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(encoding) == "" {
		encoding = cfg.Conversion.PluginEncoding
	}
	codec, err := plugin.NewCodec(encoding)
	if err != nil {
		return nil, fmt.Errorf("--encoding: %w", err)
	}
	opts := convert.Options{
		Logger:         logger,
		Plugins:        codec,
		BackupExisting: backup,
	}
	store, err := c.ensureHistory(cmd.Context())
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts.Recorder = store
	}
	return convert.NewPipeline(opts)
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) close() error {
	if c.history == nil {
		return nil
	}
	err := c.history.Close()
	c.history = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
