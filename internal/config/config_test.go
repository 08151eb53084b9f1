package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/framewatch/framewatch/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
capture:
  source: "afpacket"
  device: "eth0"
  snap_len: 2048
  promisc: false
  bpf_filter: "ip or ip6"
  options:
    buffer_size_mb: 16
log:
  level: "debug"
  format: "json"
  file:
    enabled: true
    path: "/tmp/framewatch.log"
metrics:
  enabled: true
  listen: "0.0.0.0:9143"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Capture.Source != "afpacket" {
		t.Errorf("Expected source afpacket, got %s", cfg.Capture.Source)
	}
	if cfg.Capture.Device != "eth0" {
		t.Errorf("Expected device eth0, got %s", cfg.Capture.Device)
	}
	if cfg.Capture.SnapLen != 2048 {
		t.Errorf("Expected snap_len 2048, got %d", cfg.Capture.SnapLen)
	}
	if cfg.Capture.Promisc {
		t.Error("Expected promisc false")
	}
	if cfg.Capture.BPFFilter != "ip or ip6" {
		t.Errorf("Expected bpf_filter 'ip or ip6', got %q", cfg.Capture.BPFFilter)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config: %+v", cfg.Log)
	}
	if !cfg.Log.File.Enabled || cfg.Log.File.Path != "/tmp/framewatch.log" {
		t.Errorf("Unexpected file log config: %+v", cfg.Log.File)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen != "0.0.0.0:9143" {
		t.Errorf("Unexpected metrics config: %+v", cfg.Metrics)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Capture.Source != "pcap" {
		t.Errorf("Expected default source pcap, got %s", cfg.Capture.Source)
	}
	if cfg.Capture.SnapLen != 65535 {
		t.Errorf("Expected default snap_len 65535, got %d", cfg.Capture.SnapLen)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Unexpected default log config: %+v", cfg.Log)
	}
	if cfg.Analyzer.Enabled {
		t.Error("Expected analyzer disabled by default")
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
log:
  level: "verbose"
`)
	_, err := Load(path)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadInvalidLogFormat(t *testing.T) {
	path := writeConfig(t, `
log:
  format: "xml"
`)
	_, err := Load(path)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadFileOutputRequiresPath(t *testing.T) {
	path := writeConfig(t, `
log:
  file:
    enabled: true
`)
	_, err := Load(path)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid, got %v", err)
	}
}

func TestAnalyzerAPIKeyFromEnv(t *testing.T) {
	t.Setenv("FRAMEWATCH_ANALYZER_API_KEY", "sk-test")

	path := writeConfig(t, `
analyzer:
  enabled: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Analyzer.APIKey != "sk-test" {
		t.Errorf("Expected API key from env, got %q", cfg.Analyzer.APIKey)
	}
}

func TestAnalyzerEnabledWithoutKey(t *testing.T) {
	path := writeConfig(t, `
analyzer:
  enabled: true
`)
	_, err := Load(path)
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid without api key, got %v", err)
	}
}
