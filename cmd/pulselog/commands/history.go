package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulselog/pulselog/pkg/telemetry"
	"github.com/pulselog/pulselog/pkg/transcript"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath    string
		limit     int
		eventType string
		minLevel  string
		pruneAge  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the persisted transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if dbPath == "" {
				dbPath = "pulselog.db"
			}
			store, err := openStore(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if pruneAge > 0 {
				removed, err := store.Prune(ctx, time.Now().Add(-pruneAge))
				if err != nil {
					return err
				}
				fmt.Printf("Pruned %d event(s)\n", removed)
			}

			opts := transcript.ListOptions{
				Limit: limit,
				Type:  eventType,
			}
			if minLevel != "" {
				level, err := telemetry.ParseLevel(minLevel)
				if err != nil {
					return err
				}
				opts.MinLevel = &level
			}

			events, err := store.List(ctx, opts)
			if err != nil {
				return err
			}

			for _, event := range events {
				fmt.Printf("%s  %-8s %-18s %s\n",
					event.Timestamp.Format(time.RFC3339),
					strings.ToUpper(event.Level.String()),
					event.Type,
					event.Message,
				)
			}

			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d shown, %d stored\n", len(events), count)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "history database path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "show at most this many events (0 = all)")
	cmd.Flags().StringVar(&eventType, "type", "", "only show events of this type")
	cmd.Flags().StringVar(&minLevel, "min-level", "", "only show events at or above this level")
	cmd.Flags().DurationVar(&pruneAge, "prune-older-than", 0, "delete events older than this before listing")

	cmd.SilenceUsage = true

	return cmd
}
