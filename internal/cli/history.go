package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftwatch/deadscan/internal/config"
	"github.com/driftwatch/deadscan/pkg/errors"
	"github.com/driftwatch/deadscan/pkg/history"
)

// newHistoryCmd creates the history command for browsing saved scans.
// History requires a configured MongoDB store; the in-memory store used
// otherwise does not outlive a single command.
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse previously saved scans",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent scans, newest first",
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			store, err := persistentStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			results, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				printInfo("No saved scans")
				return nil
			}

			for _, r := range results {
				line := fmt.Sprintf("%s  %s  %-9s  %d packages  health %d/100",
					r.CreatedAt.Format("2006-01-02 15:04"),
					r.ID,
					r.Ecosystem,
					r.Summary.TotalPackages,
					r.Summary.OverallHealthScore,
				)
				fmt.Println(StyleValue.Render(line))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum scans to list")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show one saved scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			store, err := persistentStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			result, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(os.Stdout, result)
			}
			printReport(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print scan result as JSON to stdout")
	return cmd
}

// persistentStore opens the configured history store, refusing the
// in-memory fallback since it cannot hold past scans.
func persistentStore(ctx context.Context) (history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.MongoURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scan history requires mongo_url in the configuration")
	}
	return buildStore(ctx, cfg)
}
