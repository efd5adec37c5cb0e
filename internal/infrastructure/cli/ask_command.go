package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
)

// newAskCommand creates the ask command
func newAskCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask about commands or tools",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				s.renderer.Busy("Thinking...")
				answer, err := c.AssistService.Ask(ctx, strings.Join(args, " "), s.flags.model)
				s.renderer.idle()
				if err != nil {
					return err
				}
				s.renderer.Answer(answer)
				return nil
			})
		},
	}
}
