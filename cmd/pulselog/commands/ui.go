package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pulselog/pulselog/pkg/generator"
	"github.com/pulselog/pulselog/pkg/telemetry"
	"github.com/pulselog/pulselog/pkg/tui"
)

func newUICommand() *cobra.Command {
	var (
		logFile string
		persist bool
		dbPath  string
	)

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the live transcript",
		Long: `UI opens an interactive transcript of every emitted event, with a single
key toggling the event generator between running and stopped.

Structured log output is redirected to --log-file so it does not fight the
terminal with the transcript.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			facade, cfg, err := setupFacade(func(tcfg *telemetry.Config) {
				// The alternate screen owns the terminal.
				tcfg.Logging.Output = logFile
				tcfg.Logging.Format = "json"
				tcfg.Tracing.Exporter = "none"
			})
			if err != nil {
				return err
			}
			defer teardown(facade)

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

			gen := generator.New(facade)
			model := tui.New(ctx, facade, gen)

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := program.Run(); err != nil {
				return err
			}

			// The model stops the generator on quit; this covers ctx cancel.
			gen.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "pulselog.log", "file receiving structured log output while the UI is open")
	cmd.Flags().BoolVar(&persist, "persist", true, "persist transcript events to the history store")
	cmd.Flags().StringVar(&dbPath, "db", "", "history database path (defaults to transcript.path)")

	cmd.SilenceUsage = true

	return cmd
}
