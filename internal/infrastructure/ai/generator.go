package ai

import (
	"context"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

// CommandGenerator asks a chat model for a structured command suggestion.
type CommandGenerator struct {
	chat   ports.ChatClient
	logger ports.Logger
}

var _ ports.Generator = (*CommandGenerator)(nil)

// NewCommandGenerator wraps chat.
func NewCommandGenerator(chat ports.ChatClient, logger ports.Logger) *CommandGenerator {
	return &CommandGenerator{chat: chat, logger: logger}
}

func (g *CommandGenerator) Name() string {
	return "openrouter"
}

// Suggest implements ports.Generator.
func (g *CommandGenerator) Suggest(ctx context.Context, req domain.GenerationRequest) (domain.CommandSuggestion, error) {
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: GeneratePrompt(req.System)},
		{Role: domain.RoleUser, Content: req.Intent},
	}
	reply, err := g.chat.Chat(ctx, messages, domain.ChatOptions{Model: req.Model})
	if err != nil {
		return domain.CommandSuggestion{}, err
	}
	g.logger.Debug("generator reply", map[string]interface{}{"length": len(reply)})
	return ParseSuggestion(reply)
}

// NewGenerator returns the offline heuristic generator when offline is set,
// otherwise the OpenRouter-backed one.
func NewGenerator(offline bool, chat ports.ChatClient, logger ports.Logger) ports.Generator {
	if offline || chat == nil {
		return NewHeuristicGenerator()
	}
	return NewCommandGenerator(chat, logger)
}
