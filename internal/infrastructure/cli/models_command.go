package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
	"github.com/doeshing/codecraft/internal/domain"
)

// newModelsCommand creates the models command
func newModelsCommand(s *session) *cobra.Command {
	var (
		query   domain.ModelQuery
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available AI models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := query.Validate(); err != nil {
				return err
			}
			return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				s.renderer.Busy("Fetching available models...")
				models, cached, err := c.AssistService.Models(ctx, query, refresh)
				s.renderer.idle()
				if err != nil {
					return err
				}
				s.renderer.Models(models, cached)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query.Search, "search", "s", "", "Search models by name or ID")
	cmd.Flags().BoolVar(&query.Free, "free", false, "Show only free models")
	cmd.Flags().IntVarP(&query.Limit, "limit", "l", 0, "Limit number of results")
	cmd.Flags().StringVar(&query.Sort, "sort", "", "Sort by: name, price, or context")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Ignore the cached catalog and fetch it again")
	return cmd
}
