package config

import "signalgen/internal/signal"

const (
	defaultConfigPath      = "~/.config/signalgen/config.toml"
	projectConfigName      = "signalgen.toml"
	defaultBaseURL         = "http://localhost:5000/api"
	defaultAssetBaseURL    = "http://localhost:5000"
	defaultUserAgent       = "signalgen/dev"
	defaultHealthTimeout   = 5
	defaultCatalogTimeout  = 10
	defaultGenerateTimeout = 120
	defaultDownloadTimeout = 60
	defaultDownloadDir     = "~/Downloads/signalgen"
	defaultStateDir        = "~/.local/share/signalgen"
	defaultLogDir          = "~/.local/share/signalgen/logs"
	defaultInstanceID      = "default"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
)

// Environment overrides applied during normalization.
const (
	EnvAPIURL      = "SIGNALGEN_API_URL"
	EnvAssetURL    = "SIGNALGEN_ASSET_URL"
	EnvDownloadDir = "SIGNALGEN_DOWNLOAD_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL:         defaultBaseURL,
			AssetBaseURL:    defaultAssetBaseURL,
			UserAgent:       defaultUserAgent,
			HealthTimeout:   defaultHealthTimeout,
			CatalogTimeout:  defaultCatalogTimeout,
			GenerateTimeout: defaultGenerateTimeout,
			DownloadTimeout: defaultDownloadTimeout,
		},
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Generation: Generation{
			DefaultDuration:     signal.DefaultDurationSeconds,
			DefaultSamplingRate: signal.DefaultSamplingRateHz,
		},
		Session: Session{
			InstanceID: defaultInstanceID,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}

// DefaultSettings returns the configured starting generation settings.
func (c *Config) DefaultSettings() signal.GenerationSettings {
	return signal.GenerationSettings{
		DurationSeconds: c.Generation.DefaultDuration,
		SamplingRateHz:  c.Generation.DefaultSamplingRate,
	}
}
