package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/codecraft/internal/app"
	"github.com/doeshing/codecraft/internal/pkg/logger"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool

	In  io.Reader
	Out io.Writer
	Err io.Writer
	// ForcePrompt asks questions even when In is not a terminal.
	ForcePrompt bool
}

type globalFlags struct {
	model      string
	configPath string
	verbose    bool
	offline    bool
}

// session carries what every command needs. The container is built per
// command, after flags are parsed.
type session struct {
	opts     Options
	flags    globalFlags
	renderer *Renderer
	prompter *Prompter
}

func newSession(opts Options) *session {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	s := &session{opts: opts, renderer: NewRenderer(opts.Out, opts.Err)}
	if opts.ForcePrompt {
		s.prompter = NewForcedPrompter(opts.In, opts.Out)
	} else {
		s.prompter = NewPrompter(opts.In, opts.Out)
	}
	return s
}

func (s *session) appOptions() app.Options {
	verbose := s.opts.Verbose || s.flags.verbose
	return app.Options{
		ConfigPath: s.flags.configPath,
		Verbose:    verbose,
		Offline:    s.flags.offline,
		Model:      s.flags.model,
		Prompter:   s.prompter,
		Presenter:  s.renderer,
		Logger:     logger.New(s.opts.Err, verbose),
	}
}

// withContainer builds the dependency graph, runs fn and releases the graph.
func (s *session) withContainer(cmd *cobra.Command, fn func(context.Context, *app.Container) error) error {
	ctx := cmd.Context()
	container, err := app.BuildContainer(ctx, s.appOptions())
	if err != nil {
		return err
	}
	defer container.Close()
	return fn(ctx, container)
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	s := newSession(opts)

	root := &cobra.Command{
		Use:   "codecraft",
		Short: "AI-powered assistant to help you find and run commands",
		Long:  "codecraft turns natural language into shell commands and only runs them after a risk check and your confirmation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printUsage(cmd.OutOrStdout())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)
	root.SetIn(s.opts.In)
	root.SetOut(s.opts.Out)
	root.SetErr(s.opts.Err)

	flags := root.PersistentFlags()
	flags.StringVarP(&s.flags.model, "model", "m", "", "Model to use (default from config)")
	flags.BoolVarP(&s.flags.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&s.flags.configPath, "config", "", "Path to config file (default ~/.codecraft/config.yaml)")
	flags.BoolVar(&s.flags.offline, "offline", false, "Never call the remote API; use the local heuristic generator")

	root.AddCommand(
		newRunCommand(s),
		newAskCommand(s),
		newExplainCommand(s),
		newChatCommand(s),
		newContextCommand(s),
		newModelsCommand(s),
		newDiagnoseCommand(s),
		newHistoryCommand(s),
		newRulesCommand(s),
		newVersionCommand(),
	)
	return root, nil
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "\n🛠️  CodeCraft CLI Assistant")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "AI-powered assistant to help you find and run commands.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  codecraft ask <question>      - Ask about commands or tools")
	fmt.Fprintln(out, "  codecraft run <intent>        - Generate and run a command")
	fmt.Fprintln(out, "  codecraft explain <command>   - Explain what a command does")
	fmt.Fprintln(out, "  codecraft chat                - Start interactive chat")
	fmt.Fprintln(out, "  codecraft models              - List available AI models")
	fmt.Fprintln(out, "  codecraft diagnose            - Test API connection")
	fmt.Fprintln(out, "  codecraft context             - Show system information")
	fmt.Fprintln(out, "  codecraft history             - Show past runs")
	fmt.Fprintln(out, "  codecraft rules               - Inspect the risk rules")
	fmt.Fprintln(out, "\nExamples:")
	fmt.Fprintln(out, `  codecraft ask "how do I find large files?"`)
	fmt.Fprintln(out, `  codecraft run "compress all images in current folder"`)
	fmt.Fprintln(out, `  codecraft explain "tar -xzvf archive.tar.gz"`)
	fmt.Fprintln(out, "  codecraft models --search gpt --free")
	fmt.Fprintln(out, "  codecraft diagnose")
	fmt.Fprintln(out, "  codecraft chat")
	fmt.Fprintln(out, "\nFor more information, run: codecraft --help")
	fmt.Fprintln(out)
}
