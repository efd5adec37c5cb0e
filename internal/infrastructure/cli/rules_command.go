package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
)

// newRulesCommand creates the rules command with its subcommands
func newRulesCommand(s *session) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the risk classification rules",
	}

	rulesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every rule by tier",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
					fmt.Fprintf(cmd.OutOrStdout(), "Rule table version %d\n\n", c.Classifier.Version())
					s.renderer.Rules(c.Classifier.Rules())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "check <command>",
			Short: "Classify a command without running it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				command := strings.Join(args, " ")
				return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
					s.renderer.RuleCheck(command, c.Classifier.Validate(command), c.Classifier.Matches(command))
					return nil
				})
			},
		},
	)
	return rulesCmd
}
