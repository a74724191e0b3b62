package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/storage"
)

// NewHistoryCmd creates the search history command group.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the search history log",
		Long: `Every successful search is logged locally in ~/.delta-ego/history.db
(or the path set in the configuration). Analysis results are never stored.

Commands:
  status  Show log statistics
  export  Export logged searches as JSON
  prune   Delete searches older than the retention window
  clear   Delete all logged searches`,
	}

	cmd.AddCommand(newHistoryStatusCmd())
	cmd.AddCommand(newHistoryExportCmd())
	cmd.AddCommand(newHistoryPruneCmd())
	cmd.AddCommand(newHistoryClearCmd())

	return cmd
}

// withHistory opens the configured search log for the duration of fn.
func withHistory(fn func(store *storage.SQLiteStorage, retentionDays int) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := openStorage(cfg)
	if store == nil {
		return fmt.Errorf("search history is disabled in the configuration")
	}
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	return fn(store, cfg.Storage.RetentionDays)
}

func retention(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

func newHistoryStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show search log statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(func(store *storage.SQLiteStorage, days int) error {
				stats, err := store.Stats()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Search History Status")
				fmt.Fprintln(out, "=====================")
				fmt.Fprintf(out, "Database:   %s\n", store.Path())
				fmt.Fprintf(out, "Searches:   %d\n", stats.Searches)
				fmt.Fprintf(out, "Actors:     %d\n", stats.Actors)
				if stats.Searches > 0 {
					fmt.Fprintf(out, "Oldest:     %s\n", stats.Oldest.Local().Format(time.RFC3339))
					fmt.Fprintf(out, "Newest:     %s\n", stats.Newest.Local().Format(time.RFC3339))
				}
				fmt.Fprintf(out, "Retention:  %d days\n", days)
				return nil
			})
		},
	}
}

func newHistoryExportCmd() *cobra.Command {
	var outputFile string
	var actor string
	var sinceDays int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export logged searches as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(func(store *storage.SQLiteStorage, _ int) error {
				since := time.Time{}
				if sinceDays > 0 {
					since = time.Now().Add(-retention(sinceDays))
				}
				records, err := store.GetSearchHistory(actor, since)
				if err != nil {
					return err
				}

				var out io.Writer = cmd.OutOrStdout()
				if outputFile != "" {
					f, err := os.Create(outputFile)
					if err != nil {
						return fmt.Errorf("failed to create output file: %w", err)
					}
					defer f.Close()
					out = f
				}
				return writeJSON(out, records)
			})
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&actor, "actor", "", "Only this actor's searches")
	cmd.Flags().IntVar(&sinceDays, "since-days", 0, "Only the last N days (default: everything)")
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete searches older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(func(store *storage.SQLiteStorage, configured int) error {
				if !cmd.Flags().Changed("days") {
					days = configured
				}
				if days <= 0 {
					return fmt.Errorf("retention must be positive, got %d days", days)
				}
				if err := store.Cleanup(retention(days)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned searches older than %d days\n", days)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default from config)")
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all logged searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprint(out, "This will delete all search history. Continue? (y/N): ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			return withHistory(func(store *storage.SQLiteStorage, _ int) error {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Search history cleared successfully")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
