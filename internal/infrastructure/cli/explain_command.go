package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
	"github.com/doeshing/codecraft/internal/application/assist"
	"github.com/doeshing/codecraft/internal/infrastructure/shellparse"
)

// newExplainCommand creates the explain command
func newExplainCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <command>",
		Short: "Explain what a command does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args, " ")
			return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				return explainCommand(ctx, s, c.AssistService, command)
			})
		},
	}
}

func explainCommand(ctx context.Context, s *session, svc *assist.Service, command string) error {
	s.renderer.Busy("Getting explanation...")
	exp, err := svc.Explain(ctx, command, s.flags.model)
	s.renderer.idle()

	s.renderer.ExplanationBanner(exp.Tier)
	if segments, perr := shellparse.Breakdown(command); perr == nil && len(segments) > 1 {
		s.renderer.Breakdown(segments)
	}
	if err != nil {
		return err
	}
	s.renderer.Explanation(exp)
	return nil
}
