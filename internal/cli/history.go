package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/LeadParser/internal/application"
	"github.com/JonMunkholm/LeadParser/internal/config"
	"github.com/JonMunkholm/LeadParser/internal/history"
)

// NewHistoryCmd creates the history command group. It reads the same
// environment (and .env file) as the server to find the store.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the saved upload history",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryFlushCmd(), newHistoryClearCmd())
	return cmd
}

// withStore opens the configured history store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(*history.Store) error) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, closeFn, err := application.OpenHistory(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(store)
}

func newHistoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List saved uploads, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(s *history.Store) error {
				entries := s.List(cmd.Context())
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no saved uploads")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tFILE\tROWS\tERRORS\tUPDATED")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
						e.ID, e.FileName, e.TotalRows, e.TotalErrors, e.UpdatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func newHistoryFlushCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "flush",
		Short:        "Remove expired entries",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(s *history.Store) error {
				n := s.Flush(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entr(ies)\n", n)
				return nil
			})
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:          "clear",
		Short:        "Delete every saved upload",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			return withStore(cmd, func(s *history.Store) error {
				s.Clear(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
