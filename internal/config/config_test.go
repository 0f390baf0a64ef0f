package config_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tes3conv/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TES3CONV_PLUGIN_ENCODING", "")
	t.Setenv("TES3CONV_LOG_LEVEL", "")
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "tes3conv", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".local", "share", "tes3conv", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "tes3conv", "history.db"); cfg.Paths.HistoryDB != want {
		t.Fatalf("unexpected history db: got %q want %q", cfg.Paths.HistoryDB, want)
	}
	if !cfg.Conversion.Localize {
		t.Fatal("expected localization enabled by default")
	}
	if cfg.Conversion.Compact || cfg.Conversion.Overwrite || cfg.Conversion.BackupExisting {
		t.Fatalf("unexpected conversion defaults: %+v", cfg.Conversion)
	}
	if cfg.Conversion.PluginEncoding != "windows-1251" {
		t.Fatalf("unexpected plugin encoding %q", cfg.Conversion.PluginEncoding)
	}
	if cfg.Conversion.Workers != 4 {
		t.Fatalf("unexpected workers %d", cfg.Conversion.Workers)
	}
	if !cfg.History.Enabled || cfg.History.RetentionDays != 90 {
		t.Fatalf("unexpected history defaults: %+v", cfg.History)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tes3conv.toml")

	type payload struct {
		Paths struct {
			LogDir string `toml:"log_dir"`
		} `toml:"paths"`
		Conversion struct {
			Localize       bool   `toml:"localize"`
			Compact        bool   `toml:"compact"`
			PluginEncoding string `toml:"plugin_encoding"`
			Workers        int    `toml:"workers"`
		} `toml:"conversion"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.LogDir = filepath.Join(tempDir, "logs")
	custom.Conversion.Localize = false
	custom.Conversion.Compact = true
	custom.Conversion.PluginEncoding = "CP1251"
	custom.Conversion.Workers = 8
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Warning"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.LogDir != custom.Paths.LogDir {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Conversion.Localize {
		t.Fatal("expected localization disabled from file")
	}
	if !cfg.Conversion.Compact {
		t.Fatal("expected compact from file")
	}
	if cfg.Conversion.PluginEncoding != "windows-1251" {
		t.Fatalf("expected canonical encoding name, got %q", cfg.Conversion.PluginEncoding)
	}
	if cfg.Conversion.Workers != 8 {
		t.Fatalf("unexpected workers %d", cfg.Conversion.Workers)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "warn" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history default to survive a partial file")
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tes3conv.toml")
	content := "[conversion]\nplugin_encoding = \"windows-1251\"\n\n[logging]\nlevel = \"info\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TES3CONV_PLUGIN_ENCODING", "windows-1252")
	t.Setenv("TES3CONV_LOG_LEVEL", "debug")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Conversion.PluginEncoding != "windows-1252" {
		t.Errorf("expected encoding from env, got %q", cfg.Conversion.PluginEncoding)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level from env, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "tes3conv.toml")
	if err := os.WriteFile(configPath, []byte("[conversion]\nlocalise = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "localise") {
		t.Fatalf("expected unknown key error naming the key, got %v", err)
	}
}

func TestLoadReportsSyntaxPosition(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "tes3conv.toml")
	if err := os.WriteFile(configPath, []byte("[conversion]\nworkers = = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected syntax error with line number, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "plugin_encoding") {
		t.Fatalf("sample config missing plugin_encoding: %s", contents)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}

	if err := config.CreateSample(path, false); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist without overwrite, got %v", err)
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Fatalf("CreateSample with overwrite failed: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown encoding", func(c *config.Config) { c.Conversion.PluginEncoding = "klingon-1" }, "plugin_encoding"},
		{"zero workers", func(c *config.Config) { c.Conversion.Workers = 0 }, "workers"},
		{"too many workers", func(c *config.Config) { c.Conversion.Workers = 1000 }, "workers"},
		{"negative history retention", func(c *config.Config) { c.History.RetentionDays = -1 }, "history.retention_days"},
		{"missing history db", func(c *config.Config) { c.Paths.HistoryDB = "" }, "history_db"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative log retention", func(c *config.Config) { c.Logging.RetentionDays = -5 }, "logging.retention_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "state", "history.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.HistoryDB)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/mods/x.esp")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "mods", "x.esp") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
