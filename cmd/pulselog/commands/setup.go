package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pulselog/pulselog/pkg/config"
	"github.com/pulselog/pulselog/pkg/telemetry"
	"github.com/pulselog/pulselog/pkg/transcript"
)

// shutdownTimeout bounds the exporter flush on exit.
const shutdownTimeout = 5 * time.Second

// setupFacade resolves configuration and builds the process-wide facade.
// Configuration errors are returned before any telemetry or UI is started.
func setupFacade(mutate func(*telemetry.Config)) (*telemetry.Facade, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	tcfg := cfg.TelemetryConfig(appVersion)
	if verbose {
		tcfg.Logging.Level = "debug"
	}
	if mutate != nil {
		mutate(tcfg)
	}

	facade, err := telemetry.Init(tcfg)
	if err != nil {
		return nil, nil, err
	}
	return facade, cfg, nil
}

// openStore opens and migrates the persistent transcript store.
func openStore(ctx context.Context, path string) (*transcript.SQLiteStore, error) {
	store, err := transcript.NewSQLiteStore(transcript.StoreConfig{Path: path})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// teardown flushes and stops the telemetry pipeline.
func teardown(facade *telemetry.Facade) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := facade.Pipeline().Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Telemetry shutdown incomplete")
	}
}
