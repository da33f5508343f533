package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setRequiredEnv sets the two required variables for the test's duration.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvClientToken, "token-123")
	t.Setenv(EnvApplicationID, "app-456")
}

func TestLoadMissingClientTokenIsFatal(t *testing.T) {
	t.Setenv(EnvClientToken, "")
	t.Setenv(EnvApplicationID, "app-456")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for missing client token")
	}
	if !strings.Contains(err.Error(), EnvClientToken) {
		t.Errorf("error %q does not name %s", err, EnvClientToken)
	}
}

func TestLoadMissingApplicationIDIsFatal(t *testing.T) {
	t.Setenv(EnvClientToken, "token-123")
	t.Setenv(EnvApplicationID, "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for missing application id")
	}
	if !strings.Contains(err.Error(), EnvApplicationID) {
		t.Errorf("error %q does not name %s", err, EnvApplicationID)
	}
}

func TestLoadMissingBothNamesBoth(t *testing.T) {
	t.Setenv(EnvClientToken, "")
	t.Setenv(EnvApplicationID, "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, env := range []string{EnvClientToken, EnvApplicationID} {
		if !strings.Contains(err.Error(), env) {
			t.Errorf("error %q does not name %s", err, env)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvEnvironment, "")
	t.Setenv(EnvService, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Environment != DefaultEnvironment {
		t.Errorf("environment = %q, want %q", cfg.Environment, DefaultEnvironment)
	}
	if cfg.Service != DefaultService {
		t.Errorf("service = %q, want %q", cfg.Service, DefaultService)
	}
	if cfg.ClientToken != "token-123" || cfg.ApplicationID != "app-456" {
		t.Errorf("credentials not resolved: %+v", cfg)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvEnvironment, "staging")
	t.Setenv(EnvService, "demo-service")
	t.Setenv(EnvSite, "eu")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Environment != "staging" || cfg.Service != "demo-service" || cfg.Site != "eu" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "pulselog.yaml")
	content := `
logging:
  level: warning
  format: json
tracing:
  exporter: none
metrics:
  enabled: true
  listen_address: ":9191"
transcript:
  path: /tmp/history.db
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Logging.Level != "warning" || cfg.Logging.Format != "json" {
		t.Errorf("logging settings = %+v", cfg.Logging)
	}
	if cfg.Tracing.Exporter != "none" {
		t.Errorf("tracing exporter = %q", cfg.Tracing.Exporter)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddress != ":9191" {
		t.Errorf("metrics settings = %+v", cfg.Metrics)
	}
	if cfg.Transcript.Path != "/tmp/history.db" {
		t.Errorf("transcript path = %q", cfg.Transcript.Path)
	}
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvEnvironment, "production")

	path := filepath.Join(t.TempDir(), "pulselog.yaml")
	if err := os.WriteFile(path, []byte("environment: filetown\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("environment = %q, want env var to win", cfg.Environment)
	}
}

func TestLoadRejectsBadFileValues(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "pulselog.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: shouty\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid logging level")
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	setRequiredEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestTelemetryConfigMapping(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvEnvironment, "staging")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tc := cfg.TelemetryConfig("1.2.3")
	if tc.ServiceName != cfg.Service {
		t.Errorf("service name = %q", tc.ServiceName)
	}
	if tc.ServiceVersion != "1.2.3" {
		t.Errorf("service version = %q", tc.ServiceVersion)
	}
	if tc.Environment != "staging" {
		t.Errorf("environment = %q", tc.Environment)
	}
	if tc.ClientToken != "token-123" || tc.ApplicationID != "app-456" {
		t.Errorf("credentials not mapped: %+v", tc)
	}
	if err := tc.Validate(); err != nil {
		t.Errorf("mapped telemetry config invalid: %v", err)
	}
}
