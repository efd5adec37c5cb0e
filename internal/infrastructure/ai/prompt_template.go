package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

type templateData struct {
	Context string
	Shell   string
	OS      string
}

func buildTemplateData(sys domain.SystemContext) templateData {
	return templateData{
		Context: sys.PromptContext(),
		Shell:   sys.Shell,
		OS:      sys.OS,
	}
}

var (
	generateTemplate = template.Must(template.New("generate").Parse(`You are a command-line assistant that generates shell commands. {{.Context}}

Your task is to generate a command that accomplishes the user's intent. Respond ONLY with a JSON object in this exact format:
{
  "command": "the actual command to run",
  "explanation": "brief explanation of what the command does"
}

Important:
- Generate commands appropriate for {{.OS}} and {{.Shell}}
- Use proper syntax for {{.Shell}}
- Keep commands safe and avoid destructive operations when possible
- If the task requires multiple commands, combine them with && or ; as appropriate
- Do not include any text outside the JSON object`))

	askTemplate = template.Must(template.New("ask").Parse(`You are a helpful command-line assistant. {{.Context}} Provide clear, concise answers about commands and tools. When suggesting commands, explain what they do and any important flags or options.`))

	explainTemplate = template.Must(template.New("explain").Parse(`You are a command-line expert that explains shell commands. {{.Context}}

Provide a detailed explanation of the command including:
1. Overall purpose
2. Breakdown of each part (command, flags, arguments)
3. What files or system resources it affects
4. Any potential risks or side effects
5. Common use cases

Be clear and educational. If the command is dangerous, explicitly warn about it.`))

	chatTemplate = template.Must(template.New("chat").Parse(`You are a helpful command-line assistant in interactive chat mode. {{.Context}}

Help the user with:
- Answering questions about commands and tools
- Explaining how to accomplish tasks
- Suggesting appropriate commands
- Explaining command syntax and options

Keep responses concise but informative. When suggesting commands, explain what they do.`))
)

// GeneratePrompt is the system prompt for structured command generation.
func GeneratePrompt(sys domain.SystemContext) string {
	return render(generateTemplate, sys)
}

// AskPrompt is the system prompt for free-form questions.
func AskPrompt(sys domain.SystemContext) string {
	return render(askTemplate, sys)
}

// ExplainPrompt is the system prompt for command explanations.
func ExplainPrompt(sys domain.SystemContext) string {
	return render(explainTemplate, sys)
}

// ChatPrompt is the system prompt for interactive chat.
func ChatPrompt(sys domain.SystemContext) string {
	return render(chatTemplate, sys)
}

func render(tmpl *template.Template, sys domain.SystemContext) string {
	var buf bytes.Buffer
	// The templates are static and only reference string fields.
	_ = tmpl.Execute(&buf, buildTemplateData(sys))
	return strings.TrimSpace(buf.String())
}

// Prompts adapts the templates to ports.PromptBuilder.
type Prompts struct{}

func (Prompts) Ask(sys domain.SystemContext) string     { return AskPrompt(sys) }
func (Prompts) Explain(sys domain.SystemContext) string { return ExplainPrompt(sys) }
func (Prompts) Chat(sys domain.SystemContext) string    { return ChatPrompt(sys) }

var _ ports.PromptBuilder = Prompts{}
