package config

const (
	defaultConfigPath       = "~/.config/tes3conv/config.toml"
	projectConfigName       = "tes3conv.toml"
	defaultLogDir           = "~/.local/share/tes3conv/logs"
	defaultHistoryDB        = "~/.local/share/tes3conv/history.db"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultPluginEncoding   = "windows-1251"
	defaultWorkers          = 4
	maxWorkers              = 64
	defaultHistoryRetention = 90
	envPluginEncoding       = "TES3CONV_PLUGIN_ENCODING"
	envLogLevel             = "TES3CONV_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Conversion: Conversion{
			Localize:       true,
			PluginEncoding: defaultPluginEncoding,
			Workers:        defaultWorkers,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
