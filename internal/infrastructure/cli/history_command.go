package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

const msgHistoryCleared = "History cleared."

var errHistoryDisabled = errors.New("history is disabled (history.enabled is false or the store could not be opened)")

// newHistoryCommand creates the history command with all subcommands
func newHistoryCommand(s *session) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withHistory(cmd, func(ctx context.Context, store ports.HistoryRepository) error {
				return listHistory(ctx, s, store, limit, "")
			})
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")

	historyCmd.AddCommand(
		newHistoryListCommand(s),
		newHistorySearchCommand(s),
		newHistoryClearCommand(s),
	)
	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withHistory(cmd, func(ctx context.Context, store ports.HistoryRepository) error {
				return listHistory(ctx, s, store, limit, "")
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistorySearchCommand creates the 'history search' subcommand
func newHistorySearchCommand(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search runs by intent or command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withHistory(cmd, func(ctx context.Context, store ports.HistoryRepository) error {
				return listHistory(ctx, s, store, limit, args[0])
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Limit search results")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withHistory(cmd, func(ctx context.Context, store ports.HistoryRepository) error {
				if !yes {
					ok, err := s.prompter.AskYesNo(ctx, "Delete all recorded runs?", false)
					if err != nil {
						return err
					}
					if !ok {
						return nil
					}
				}
				if err := store.Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), msgHistoryCleared)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (s *session) withHistory(cmd *cobra.Command, fn func(context.Context, ports.HistoryRepository) error) error {
	return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
		if c.HistoryStore == nil {
			return errHistoryDisabled
		}
		return fn(ctx, c.HistoryStore)
	})
}

func listHistory(ctx context.Context, s *session, store ports.HistoryRepository, limit int, search string) error {
	records, err := store.Records(ctx, limit, search)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	s.renderer.History(records)
	return nil
}
