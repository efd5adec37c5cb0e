package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
	"github.com/doeshing/codecraft/internal/domain"
)

// newRunCommand creates the run command
func newRunCommand(s *session) *cobra.Command {
	var (
		yes     bool
		copyCmd bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <intent>",
		Short: "Generate and run a command",
		Long: "Generate a shell command from a natural-language intent, check it against the risk rules, " +
			"ask for confirmation and run it.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				req := domain.RunRequest{
					Intent:      strings.Join(args, " "),
					AutoApprove: yes,
					Model:       s.flags.model,
					Timeout:     timeout,
				}
				return runIntent(ctx, s, c, req, copyCmd)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Run safe commands without asking (warning and dangerous commands still ask)")
	cmd.Flags().BoolVarP(&copyCmd, "copy", "c", false, "Copy the generated command to the clipboard")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Kill the command after this long (default from config)")
	return cmd
}

// runIntent drives one run and maps its outcome. A command that ran and
// failed is reported but is not an error of codecraft itself.
func runIntent(ctx context.Context, s *session, c *app.Container, req domain.RunRequest, copyCmd bool) error {
	s.renderer.Busy("Generating command...")
	report, err := c.RunService.Run(ctx, req)
	s.renderer.idle()
	if copyCmd && report.Outcome.Valid {
		if cerr := NewClipboard().Copy(ctx, report.Suggestion.Command); cerr != nil {
			c.Logger.Warn("copy to clipboard failed", map[string]interface{}{"error": cerr.Error()})
		} else {
			fmt.Fprintln(s.opts.Out, "📋 Command copied to clipboard.")
		}
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNonInteractive) {
		return fmt.Errorf("%w (run codecraft from a terminal to confirm commands)", err)
	}
	return err
}
