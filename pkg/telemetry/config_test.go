package telemetry

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestProductionConfigRequiresEndpoint(t *testing.T) {
	cfg := ProductionConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("otlp exporter without endpoint should not validate")
	}
	cfg.Tracing.Endpoint = "localhost:4317"
	if err := cfg.Validate(); err != nil {
		t.Errorf("production config with endpoint invalid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty service", func(c *Config) { c.ServiceName = "" }, "service name"},
		{"empty version", func(c *Config) { c.ServiceVersion = "" }, "service version"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "unknown log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, "invalid span exporter"},
		{"bad sampling", func(c *Config) { c.Tracing.SamplingRate = 1.5 }, "sampling rate"},
		{"metrics without address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.ListenAddress = ""
		}, "listen address"},
		{"async without buffer", func(c *Config) {
			c.Events.EnableAsync = true
			c.Events.BufferSize = 0
		}, "buffer size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDefaultServiceName(t *testing.T) {
	if got := DefaultConfig().ServiceName; got != "simply-swifty-logging" {
		t.Errorf("default service name = %q", got)
	}
}
