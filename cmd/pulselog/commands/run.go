package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pulselog/pulselog/pkg/generator"
	"github.com/pulselog/pulselog/pkg/telemetry"
	"github.com/pulselog/pulselog/pkg/transcript"
)

// runSummaryCapacity bounds the in-memory transcript kept for the exit
// summary.
const runSummaryCapacity = 4096

func newRunCommand() *cobra.Command {
	var (
		duration      time.Duration
		persist       bool
		dbPath        string
		metricsListen string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the event generator headless",
		Long: `Run starts the heartbeat and random-event streams and logs them through
the telemetry pipeline until interrupted, or for --duration when set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			facade, cfg, err := setupFacade(func(tcfg *telemetry.Config) {
				if metricsListen != "" {
					tcfg.Metrics.Enabled = true
					tcfg.Metrics.ListenAddress = metricsListen
				}
			})
			if err != nil {
				return err
			}
			defer teardown(facade)

			rec := transcript.NewRecorder(runSummaryCapacity)
			rec.Attach(facade.Events())

			if persist {
				if dbPath == "" {
					dbPath = cfg.Transcript.Path
				}
				store, err := openStore(ctx, dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
				store.Attach(facade.Events(), func(err error) {
					log.Warn().Err(err).Msg("Failed to persist transcript event")
				})
			}

			if err := facade.Pipeline().StartMetricsServer(); err != nil {
				return err
			}

			gen := generator.New(facade)
			gen.Start(ctx)

			if duration > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(duration):
				}
			} else {
				<-ctx.Done()
			}

			gen.Stop()

			log.Info().
				Int("events", rec.Len()).
				Interface("by_level", rec.CountByLevel()).
				Msg("Transcript summary")
			return nil
		},
	}

	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop after this long (0 = run until interrupted)")
	cmd.Flags().BoolVar(&persist, "persist", false, "persist transcript events to the history store")
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path (defaults to transcript.path)")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "expose Prometheus metrics on this address (e.g. :9090)")

	// Silence cobra's own error echo; main logs it once.
	cmd.SilenceUsage = true

	return cmd
}
