package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/doeshing/codecraft/internal/application/assist"
	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/infrastructure/security"
	"github.com/doeshing/codecraft/internal/infrastructure/shellparse"
	"github.com/doeshing/codecraft/internal/ports"
)

const (
	defaultWidth    = 80
	timestampFormat = "2006-01-02 15:04:05"
)

// StyleConfig defines the colors used by the renderer.
type StyleConfig struct {
	TitleColor   lipgloss.Color
	SubtleColor  lipgloss.Color
	ErrorColor   lipgloss.Color
	SuccessColor lipgloss.Color
	WarningColor lipgloss.Color
}

// DefaultStyleConfig returns the default style configuration
func DefaultStyleConfig() StyleConfig {
	return StyleConfig{
		TitleColor:   lipgloss.Color("14"),  // Cyan
		SubtleColor:  lipgloss.Color("241"), // Grey
		ErrorColor:   lipgloss.Color("9"),   // Red
		SuccessColor: lipgloss.Color("10"),  // Green
		WarningColor: lipgloss.Color("11"),  // Yellow
	}
}

type styles struct {
	title   lipgloss.Style
	command lipgloss.Style
	subtle  lipgloss.Style
	danger  lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	bold    lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, cfg StyleConfig) styles {
	return styles{
		title:   r.NewStyle().Foreground(cfg.TitleColor),
		command: r.NewStyle().Bold(true),
		subtle:  r.NewStyle().Foreground(cfg.SubtleColor),
		danger:  r.NewStyle().Foreground(cfg.ErrorColor).Bold(true),
		warning: r.NewStyle().Foreground(cfg.WarningColor),
		success: r.NewStyle().Foreground(cfg.SuccessColor),
		failure: r.NewStyle().Foreground(cfg.ErrorColor),
		bold:    r.NewStyle().Bold(true),
		header:  r.NewStyle().Foreground(cfg.TitleColor).Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
	}
}

// Renderer prints every user-facing screen of the CLI. It implements
// ports.RunPresenter for the run flow.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	style  styles

	markdown *Markdown
	spinner  *Spinner

	mu       sync.Mutex
	streamed bool
}

var _ ports.RunPresenter = (*Renderer)(nil)

// NewRenderer builds a renderer. Markdown styling and the spinner are only
// enabled when out is a terminal.
func NewRenderer(out, errOut io.Writer) *Renderer {
	r := &Renderer{
		out:    out,
		errOut: errOut,
		style:  newStyles(lipgloss.NewRenderer(out), DefaultStyleConfig()),
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width := defaultWidth
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
			width = w - 4
		}
		if md, err := NewMarkdown(width); err == nil {
			r.markdown = md
		}
		r.spinner = NewSpinner(errOut)
	}
	return r
}

// Busy shows the spinner until the next thing is printed.
func (r *Renderer) Busy(message string) {
	if r.spinner != nil {
		r.spinner.Start(message)
	}
}

func (r *Renderer) idle() {
	if r.spinner != nil {
		r.spinner.Stop()
	}
}

// Suggestion shows the generated command with its explanation and tier banner.
func (r *Renderer) Suggestion(s domain.CommandSuggestion) {
	r.idle()
	fmt.Fprintln(r.out, paint(r.style.title, "\n📝 Generated Command:\n"))
	fmt.Fprintln(r.out, "  "+paint(r.style.command, s.Command))
	fmt.Fprintln(r.out, paint(r.style.subtle, "\n💬 Explanation:"))
	fmt.Fprintln(r.out, paint(r.style.subtle, "  "+s.Explanation))

	switch s.Tier {
	case domain.TierDangerous:
		fmt.Fprintln(r.out, paint(r.style.danger, "\n🚨 DANGEROUS: This command could cause significant damage!"))
	case domain.TierWarning:
		fmt.Fprintln(r.out, paint(r.style.warning, "\n⚠️  Caution: This command may modify system state or files."))
	}
	fmt.Fprintln(r.out)
}

// Rejected reports a command the classifier refused.
func (r *Renderer) Rejected(s domain.CommandSuggestion, outcome domain.ValidationOutcome) {
	r.idle()
	if outcome.Tier == domain.TierBlocked {
		fmt.Fprintln(r.errOut, paint(r.style.failure, "\n🚫 BLOCKED: ")+outcome.Reason)
		if s.Command != "" {
			fmt.Fprintln(r.errOut, paint(r.style.subtle, "  "+s.Command))
		}
		fmt.Fprintln(r.out, paint(r.style.subtle, "\nThis command has been blocked for your safety."))
		return
	}
	fmt.Fprintln(r.errOut, paint(r.style.failure, "\n❌ Rejected: ")+outcome.Reason)
}

// FormatError shows a reply that could not be parsed as a suggestion.
func (r *Renderer) FormatError(raw string) {
	r.idle()
	fmt.Fprintln(r.out, paint(r.style.warning, "\n⚠️  Could not parse structured response. Raw response:\n"))
	fmt.Fprintln(r.out, raw)
}

// Cancelled reports that the user declined.
func (r *Renderer) Cancelled() {
	r.idle()
	fmt.Fprintln(r.out, paint(r.style.warning, "\n❌ Execution cancelled."))
}

// Executing announces the start of execution.
func (r *Renderer) Executing(string) {
	r.idle()
	r.mu.Lock()
	r.streamed = false
	r.mu.Unlock()
	fmt.Fprintln(r.out, paint(r.style.title, "\n🚀 Executing...\n"))
}

// Output forwards one chunk of child output to the matching stream.
func (r *Renderer) Output(ev domain.OutputEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streamed = true
	if ev.Stream == domain.StreamStderr {
		fmt.Fprint(r.errOut, ev.Text)
		return
	}
	fmt.Fprint(r.out, ev.Text)
}

// Result prints the final status line of an executed command.
func (r *Renderer) Result(res domain.ExecutionResult) {
	r.mu.Lock()
	streamed := r.streamed
	r.mu.Unlock()

	if !streamed && res.CombinedOutput != "" && res.Success {
		fmt.Fprintln(r.out, strings.TrimRight(res.CombinedOutput, "\n"))
	}
	fmt.Fprintln(r.out)
	if res.Success {
		fmt.Fprintln(r.out, paint(r.style.success, "✅ Command completed successfully!"))
	} else {
		fmt.Fprintln(r.out, paint(r.style.failure, fmt.Sprintf("❌ Command failed with exit code %d", res.ExitCode)))
		if res.ErrorText != "" {
			fmt.Fprintln(r.out, paint(r.style.failure, "\nError:"))
			fmt.Fprintln(r.out, res.ErrorText)
		}
	}
	if res.Truncated {
		fmt.Fprintln(r.out, paint(r.style.subtle, "(output truncated)"))
	}
}

// Answer prints a reply to `ask`.
func (r *Renderer) Answer(text string) {
	r.idle()
	fmt.Fprintln(r.out, paint(r.style.title, "\n💡 Answer:\n"))
	fmt.Fprintln(r.out, r.markdown.Render(text))
	fmt.Fprintln(r.out)
}

// ExplanationBanner prints the tier warning shown before an explanation.
func (r *Renderer) ExplanationBanner(tier domain.RiskTier) {
	r.idle()
	switch tier {
	case domain.TierBlocked:
		fmt.Fprintln(r.out, paint(r.style.danger, "\n🚫 BLOCKED: codecraft will never run this command."))
		fmt.Fprintln(r.out)
	case domain.TierDangerous:
		fmt.Fprintln(r.out, paint(r.style.danger, "\n⚠️  DANGER: This command is EXTREMELY DANGEROUS!"))
		fmt.Fprintln(r.out, paint(r.style.failure, "It could cause irreversible damage to your system.\n"))
	case domain.TierWarning:
		fmt.Fprintln(r.out, paint(r.style.warning, "\n⚠️  CAUTION: This command may modify or delete files.\n"))
	}
}

// Breakdown prints the local structural view of a command.
func (r *Renderer) Breakdown(segments []shellparse.Segment) {
	if len(segments) == 0 {
		return
	}
	fmt.Fprintln(r.out, paint(r.style.title, "🔎 Structure:"))
	for i, seg := range segments {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, seg.Text())
		if seg.Operator != "" && i < len(segments)-1 {
			fmt.Fprintln(r.out, paint(r.style.subtle, "     "+seg.Operator))
		}
	}
	fmt.Fprintln(r.out)
}

// Explanation prints the model's explanation and the closing warning.
func (r *Renderer) Explanation(exp assist.Explanation) {
	r.idle()
	fmt.Fprintln(r.out, paint(r.style.title, "📖 Command Explanation:\n"))
	fmt.Fprintln(r.out, paint(r.style.bold, "Command: ")+paint(r.style.warning, exp.Command))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.markdown.Render(exp.Text))
	fmt.Fprintln(r.out)
	if exp.NeedsCaution() {
		fmt.Fprintln(r.out, paint(r.style.failure, "⚠️  Do NOT run this command unless you fully understand the consequences!"))
	}
}

// ChatBanner introduces the interactive chat.
func (r *Renderer) ChatBanner() {
	fmt.Fprintln(r.out, paint(r.style.title, "\n💬 Interactive Chat Mode"))
	fmt.Fprintln(r.out, paint(r.style.subtle, `Type your questions or commands. Type "quit" or "exit" to leave.`))
	fmt.Fprintln(r.out)
}

// ChatPrompt returns the prompt shown before user input.
func (r *Renderer) ChatPrompt() string {
	return paint(r.style.success, "You:")
}

// AssistantPrefix starts a streamed reply.
func (r *Renderer) AssistantPrefix() {
	r.idle()
	fmt.Fprint(r.out, paint(r.style.title, "Assistant: "))
}

// ChatError reports a failed turn; the conversation continues.
func (r *Renderer) ChatError(err error) {
	r.idle()
	fmt.Fprintln(r.errOut, paint(r.style.failure, "\n❌ Error: ")+err.Error())
	fmt.Fprintln(r.out, paint(r.style.warning, "Continuing conversation...\n"))
}

// Goodbye closes the chat.
func (r *Renderer) Goodbye() {
	fmt.Fprintln(r.out, paint(r.style.title, "\n👋 Goodbye!\n"))
}

// Context prints the detected system context.
func (r *Renderer) Context(sys domain.SystemContext) {
	fmt.Fprintln(r.out, paint(r.style.title, "\n🖥️  System Context:\n"))
	fmt.Fprintln(r.out, sys.Describe())
	fmt.Fprintln(r.out)
}

// Models prints the model catalog.
func (r *Renderer) Models(models []domain.ModelInfo, cached bool) {
	r.idle()
	if len(models) == 0 {
		fmt.Fprintln(r.out, paint(r.style.warning, "\nNo models found matching your criteria."))
		return
	}
	heading := fmt.Sprintf("\n📋 Available Models (%d total):", len(models))
	if cached {
		heading += " " + paint(r.style.subtle, "(cached)")
	}
	fmt.Fprintln(r.out, paint(r.style.title, heading)+"\n")

	for _, m := range models {
		fmt.Fprintln(r.out, "  "+paint(r.style.bold, m.ID))
		if m.Name != "" && m.Name != m.ID {
			fmt.Fprintln(r.out, paint(r.style.subtle, "    Name: "+m.Name))
		}
		if m.ContextLength > 0 {
			fmt.Fprintln(r.out, paint(r.style.subtle, "    Context: "+m.ContextLabel()+" tokens"))
		}
		if m.Pricing != nil {
			if m.IsFree() {
				fmt.Fprintln(r.out, paint(r.style.success, "    Pricing: Free"))
			} else {
				fmt.Fprintln(r.out, paint(r.style.subtle, fmt.Sprintf("    Pricing: %s input, %s output",
					price(m.Pricing.Prompt), price(m.Pricing.Completion))))
			}
		}
		fmt.Fprintln(r.out)
	}

	fmt.Fprintln(r.out, paint(r.style.title, "💡 Usage:"))
	fmt.Fprintln(r.out, paint(r.style.subtle, `  codecraft ask "your question" -m <model-id>`))
	fmt.Fprintln(r.out, paint(r.style.subtle, `  codecraft run "your intent" -m <model-id>`))
	fmt.Fprintln(r.out)
}

func price(v string) string {
	if v == "0" {
		return "Free"
	}
	return "$" + v + "/M"
}

// Health prints a diagnose report.
func (r *Renderer) Health(report domain.HealthReport) {
	r.idle()
	fmt.Fprintln(r.out, paint(r.style.title, "\n🔍 CodeCraft Diagnostics\n"))
	for _, check := range report.Checks {
		var mark string
		switch check.Status {
		case domain.HealthOK:
			mark = paint(r.style.success, "✓")
		case domain.HealthWarn:
			mark = paint(r.style.warning, "⚠")
		default:
			mark = paint(r.style.failure, "✗")
		}
		fmt.Fprintf(r.out, "  %s %s", mark, paint(r.style.bold, check.Name))
		if check.Details != "" {
			fmt.Fprintf(r.out, " %s", paint(r.style.subtle, "- "+check.Details))
		}
		fmt.Fprintln(r.out)
	}

	switch {
	case report.HasErrors():
		fmt.Fprintln(r.out, paint(r.style.danger, fmt.Sprintf("\n✗ Diagnostic failed: %d check(s) failed.\n", report.Count(domain.HealthError))))
	case report.Count(domain.HealthWarn) > 0:
		fmt.Fprintln(r.out, paint(r.style.warning, fmt.Sprintf("\n⚠ Completed with %d warning(s).\n", report.Count(domain.HealthWarn))))
	default:
		fmt.Fprintln(r.out, paint(r.style.success, "\n✓ All tests passed! Your setup is working correctly.\n"))
	}
}

// History prints run records, newest first.
func (r *Renderer) History(records []domain.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No history recorded yet.")
		return
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		exit := "-"
		if rec.Executed() {
			exit = fmt.Sprintf("%d", rec.ExitCode)
		}
		command := rec.Command
		if command == "" {
			command = "(" + rec.Intent + ")"
		}
		rows = append(rows, []string{
			rec.Timestamp.Local().Format(timestampFormat),
			tierLabel(rec.Tier),
			string(rec.Status),
			exit,
			command,
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.style.subtle).
		Headers("TIME", "TIER", "STATUS", "EXIT", "COMMAND").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.style.header
			}
			return r.style.cell
		})
	fmt.Fprintln(r.out, t.String())
}

// Rules prints the classification table grouped by tier.
func (r *Renderer) Rules(groups []domain.TierRules) {
	for _, group := range groups {
		fmt.Fprintln(r.out, r.tierStyle(group.Tier).Render(fmt.Sprintf("%s (%d)", group.Tier.Label(), len(group.Rules))))
		for _, rule := range group.Rules {
			line := fmt.Sprintf("  %-28s %s", rule.Name, rule.Pattern)
			if rule.IgnoreCase {
				line += paint(r.style.subtle, " (ignore case)")
			}
			fmt.Fprintln(r.out, line)
		}
		fmt.Fprintln(r.out)
	}
}

// RuleCheck prints how a command classifies and which rules matched.
func (r *Renderer) RuleCheck(command string, outcome domain.ValidationOutcome, matches []security.Match) {
	tier := r.tierStyle(outcome.Tier).Render(outcome.Tier.Label())
	fmt.Fprintf(r.out, "%s  %s\n", tier, command)
	if outcome.Reason != "" {
		fmt.Fprintln(r.out, paint(r.style.subtle, "  "+outcome.Reason))
	}
	for _, m := range matches {
		fmt.Fprintf(r.out, "  %s %s\n", paint(r.style.subtle, strings.ToLower(m.Tier.Label())+":"), m.Rule.Name)
	}
}

// paint styles text while keeping its surrounding blank lines unstyled.
func paint(st lipgloss.Style, text string) string {
	core := strings.Trim(text, "\n")
	if core == "" {
		return text
	}
	start := strings.Index(text, core)
	return text[:start] + st.Render(core) + text[start+len(core):]
}

func (r *Renderer) tierStyle(tier domain.RiskTier) lipgloss.Style {
	switch tier {
	case domain.TierBlocked, domain.TierDangerous:
		return r.style.danger
	case domain.TierWarning:
		return r.style.warning
	default:
		return r.style.success
	}
}

func tierLabel(tier domain.RiskTier) string {
	if tier == "" {
		return "-"
	}
	return string(tier)
}
