// Package config resolves the application configuration once at process
// start: required credentials from the environment, optional tuning from a
// YAML file. A missing required value is a fatal startup error.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pulselog/pulselog/pkg/telemetry"
)

// Environment variable names consumed at startup.
const (
	EnvClientToken   = "DATADOG_CLIENT_TOKEN"
	EnvApplicationID = "DATADOG_APPLICATION_ID"
	EnvEnvironment   = "DATADOG_ENVIRONMENT"
	EnvService       = "DATADOG_SERVICE"
	EnvSite          = "DATADOG_SITE"
)

// Defaults for the optional settings.
const (
	DefaultEnvironment = "development"
	DefaultService     = "simply-swifty-logging"
)

// Config is the resolved application configuration. Immutable after Load.
type Config struct {
	// ClientToken authenticates telemetry ingest. Required, secret.
	ClientToken string `mapstructure:"client_token" validate:"required"`

	// ApplicationID identifies the application for monitoring. Required.
	ApplicationID string `mapstructure:"application_id" validate:"required"`

	// Environment is the deployment environment name.
	Environment string `mapstructure:"environment"`

	// Service is the service name bound to every log line.
	Service string `mapstructure:"service"`

	// Site is the optional backend intake site.
	Site string `mapstructure:"site"`

	// Logging tunes the structured log output.
	Logging LoggingSettings `mapstructure:"logging"`

	// Tracing selects and points the span exporter.
	Tracing TracingSettings `mapstructure:"tracing"`

	// Metrics controls the Prometheus endpoint.
	Metrics MetricsSettings `mapstructure:"metrics"`

	// Transcript locates the persistent event history.
	Transcript TranscriptSettings `mapstructure:"transcript"`
}

// LoggingSettings tunes log output. File-configurable only.
type LoggingSettings struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info notice warning error critical"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// TracingSettings selects the span exporter.
type TracingSettings struct {
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=otlp stdout none"`
	Endpoint string `mapstructure:"endpoint"`
}

// MetricsSettings controls the Prometheus endpoint.
type MetricsSettings struct {
	Enabled       bool   `mapstructure:"enabled"`
	ListenAddress string `mapstructure:"listen_address"`
}

// TranscriptSettings locates the persistent event history.
type TranscriptSettings struct {
	Path string `mapstructure:"path"`
}

// Load resolves configuration from the environment and, when configFile is
// non-empty, a YAML file. Environment values win over file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("service", DefaultService)
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.format", "console")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen_address", ":9090")
	v.SetDefault("transcript.path", "pulselog.db")

	// Required settings come from DATADOG_* environment variables.
	bindings := map[string]string{
		"client_token":   EnvClientToken,
		"application_id": EnvApplicationID,
		"environment":    EnvEnvironment,
		"service":        EnvService,
		"site":           EnvSite,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Env-bound keys are read explicitly; Unmarshal only sees keys that
	// carry defaults or file values.
	cfg.ClientToken = v.GetString("client_token")
	cfg.ApplicationID = v.GetString("application_id")
	cfg.Environment = v.GetString("environment")
	cfg.Service = v.GetString("service")
	cfg.Site = v.GetString("site")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the resolved configuration, naming the missing environment
// variable when a required credential is absent.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing []string
	var invalid []string
	for _, fe := range verrs {
		switch {
		case fe.Field() == "ClientToken" && fe.Tag() == "required":
			missing = append(missing, EnvClientToken)
		case fe.Field() == "ApplicationID" && fe.Tag() == "required":
			missing = append(missing, EnvApplicationID)
		default:
			invalid = append(invalid, fmt.Sprintf("%s=%v", fe.Field(), fe.Value()))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", "))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
}

// TelemetryConfig maps the application configuration onto the telemetry
// pipeline configuration.
func (c *Config) TelemetryConfig(version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceName = c.Service
	tc.ServiceVersion = version
	tc.Environment = c.Environment
	tc.ClientToken = c.ClientToken
	tc.ApplicationID = c.ApplicationID
	tc.Site = c.Site

	if c.Logging.Level != "" {
		tc.Logging.Level = c.Logging.Level
	}
	if c.Logging.Format != "" {
		tc.Logging.Format = c.Logging.Format
	}
	if c.Tracing.Exporter != "" {
		tc.Tracing.Exporter = c.Tracing.Exporter
	}
	tc.Tracing.Endpoint = c.Tracing.Endpoint

	tc.Metrics.Enabled = c.Metrics.Enabled
	if c.Metrics.ListenAddress != "" {
		tc.Metrics.ListenAddress = c.Metrics.ListenAddress
	}

	return tc
}
