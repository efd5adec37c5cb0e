package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
)

// errDiagnosticsFailed makes the process exit non-zero after the report.
var errDiagnosticsFailed = errors.New("diagnostics found problems")

// newDiagnoseCommand creates the diagnose command
func newDiagnoseCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "diagnose",
		Aliases: []string{"doctor"},
		Short:   "Test API connection and setup",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, container := app.BuildDiagnostics(cmd.Context(), s.appOptions())
			if container != nil {
				defer container.Close()
			}

			s.renderer.Busy("Running diagnostics...")
			report, err := svc.Run(cmd.Context())
			s.renderer.idle()

			// Display report even if there were errors
			s.renderer.Health(report)
			if err != nil {
				return fmt.Errorf("%w: %w", errDiagnosticsFailed, err)
			}
			if report.HasErrors() {
				return errDiagnosticsFailed
			}
			return nil
		},
	}
}
