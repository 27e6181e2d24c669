package watchdog

import (
	"os"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type TelemetryConfig struct {
	LegacyBaseURL  string `yaml:"legacy_base_url"`
	CurrentBaseURL string `yaml:"current_base_url"`
}

// LegacyAssetConfig lets deployments override the built-in legacy roster.
type LegacyAssetConfig struct {
	StationID string `yaml:"station_id"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Zone      string `yaml:"zone"`
	Scheme    string `yaml:"scheme"`
}

type FileConfig struct {
	Database  DatabaseConfig  `yaml:"database"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	Job   string `yaml:"job"`
	Debug bool   `yaml:"debug"`

	// Timezone the ledger's calendar day is reckoned in. Defaults to
	// Asia/Kolkata, where the monitored fleet operates.
	Timezone string `yaml:"timezone"`

	// Pacing between assets and the per-asset fetch bound, in seconds.
	// Zero means the built-in defaults.
	PaceDelaySeconds    int `yaml:"pace_delay_seconds"`
	AssetTimeoutSeconds int `yaml:"asset_timeout_seconds"`

	SyslogAddr  string `yaml:"syslog_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	LegacyAssets []LegacyAssetConfig `yaml:"legacy_assets"`
}

func LoadConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
