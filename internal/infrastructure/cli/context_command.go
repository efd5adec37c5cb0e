package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
)

// newContextCommand creates the context command
func newContextCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Show system information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				sys, err := c.Collector.Collect(ctx)
				if err != nil {
					return err
				}
				s.renderer.Context(sys)
				return nil
			})
		},
	}
}
