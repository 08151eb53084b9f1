// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/framewatch/framewatch/internal/core"
)

// Config is the top-level agent configuration. Maps to the root keys of
// the YAML config file.
type Config struct {
	Capture  CaptureConfig  `mapstructure:"capture" yaml:"capture"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer" yaml:"analyzer"`
}

// CaptureConfig selects and tunes the capture source.
type CaptureConfig struct {
	Source    string `mapstructure:"source" yaml:"source"`         // pcap | afpacket | file
	Device    string `mapstructure:"device" yaml:"device"`         // interface name for live sources
	SnapLen   int    `mapstructure:"snap_len" yaml:"snap_len"`     // bytes captured per frame
	Promisc   bool   `mapstructure:"promisc" yaml:"promisc"`       // promiscuous mode
	TimeoutMs int    `mapstructure:"timeout_ms" yaml:"timeout_ms"` // poll timeout
	BPFFilter string `mapstructure:"bpf_filter" yaml:"bpf_filter"` // optional BPF expression
	// Source-specific options (e.g. afpacket buffer_size_mb/fanout_id,
	// file file_path), decoded by the source factory.
	Options map[string]interface{} `mapstructure:"options" yaml:"options,omitempty"`
}

// LogConfig controls process logging.
type LogConfig struct {
	Level  string        `mapstructure:"level" yaml:"level"`   // trace|debug|info|warn|error
	Format string        `mapstructure:"format" yaml:"format"` // text | json
	File   FileLogConfig `mapstructure:"file" yaml:"file"`
}

// FileLogConfig enables a rotating file output in addition to stdout.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// AnalyzerConfig controls the remote AI security analysis collaborator.
// The API key is read from the environment (FRAMEWATCH_ANALYZER_API_KEY)
// via viper's env binding so it never lives in the config file.
type AnalyzerConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"`
	Model      string `mapstructure:"model" yaml:"model"`
	APIKey     string `mapstructure:"api_key" yaml:"-"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	// Analyze one packet out of every SampleEvery captured (0 disables).
	SampleEvery int `mapstructure:"sample_every" yaml:"sample_every"`
}

// Load reads the config file at path, applies defaults and env bindings,
// and validates the result. An empty path loads pure defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FRAMEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Secrets never live in the config file.
	_ = v.BindEnv("analyzer.api_key")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("capture.source", "pcap")
	v.SetDefault("capture.device", "lo")
	v.SetDefault("capture.snap_len", 65535)
	v.SetDefault("capture.promisc", true)
	v.SetDefault("capture.timeout_ms", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 7)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9143")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("analyzer.enabled", false)
	v.SetDefault("analyzer.endpoint", "https://api.deepseek.com/v1/completions")
	v.SetDefault("analyzer.model", "deepseek-coder")
	v.SetDefault("analyzer.timeout_sec", 30)
	v.SetDefault("analyzer.sample_every", 100)
}

// Validate checks cross-field constraints not expressible as defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", core.ErrConfigInvalid, c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q (must be text or json)", core.ErrConfigInvalid, c.Log.Format)
	}

	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return fmt.Errorf("%w: log.file.path is required when file output is enabled", core.ErrConfigInvalid)
	}

	if c.Capture.SnapLen <= 0 {
		return fmt.Errorf("%w: capture.snap_len must be positive", core.ErrConfigInvalid)
	}

	if c.Analyzer.Enabled {
		if c.Analyzer.Endpoint == "" {
			return fmt.Errorf("%w: analyzer.endpoint is required when analyzer is enabled", core.ErrConfigInvalid)
		}
		if c.Analyzer.APIKey == "" {
			return fmt.Errorf("%w: analyzer api key is required when analyzer is enabled (set FRAMEWATCH_ANALYZER_API_KEY)", core.ErrConfigInvalid)
		}
	}

	return nil
}
