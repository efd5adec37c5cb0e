// Package assist answers questions, explains commands, holds chat sessions
// and browses the model catalog.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

// ErrOffline is returned by operations that need the remote model.
var ErrOffline = errors.New("this command needs OpenRouter; offline mode is enabled")

// CatalogKey identifies the cached model catalog.
const CatalogKey = "openrouter-models"

// Service bundles the conversational features around one chat client.
type Service struct {
	Chat       ports.ChatClient
	Collector  ports.ContextCollector
	Prompts    ports.PromptBuilder
	Classifier ports.RiskClassifier
	Catalog    ports.ModelCatalog
	Cache      ports.CatalogCache
	Logger     ports.Logger

	// Offline disables every remote call.
	Offline bool
}

// Explanation is the result of Explain.
type Explanation struct {
	Command string
	Tier    domain.RiskTier
	Text    string
}

// NeedsCaution reports whether the command deserves a closing warning.
func (e Explanation) NeedsCaution() bool {
	return e.Tier != domain.TierSafe
}

// Ask answers a free-form question with the system context in the prompt.
func (s *Service) Ask(ctx context.Context, question, model string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("question is empty")
	}
	if s.Offline {
		return "", ErrOffline
	}
	sys, err := s.Collector.Collect(ctx)
	if err != nil {
		return "", fmt.Errorf("collect context: %w", err)
	}
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: s.Prompts.Ask(sys)},
		{Role: domain.RoleUser, Content: question},
	}
	return s.Chat.Chat(ctx, messages, domain.ChatOptions{Model: model})
}

// Explain classifies command locally and asks the model to describe it.
// The tier is reported even when the remote call fails.
func (s *Service) Explain(ctx context.Context, command, model string) (Explanation, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Explanation{}, errors.New("command is empty")
	}
	exp := Explanation{Command: command, Tier: s.Classifier.Classify(command)}
	if s.Offline {
		return exp, ErrOffline
	}
	sys, err := s.Collector.Collect(ctx)
	if err != nil {
		return exp, fmt.Errorf("collect context: %w", err)
	}
	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: s.Prompts.Explain(sys)},
		{Role: domain.RoleUser, Content: "Explain this command: " + command},
	}
	text, err := s.Chat.Chat(ctx, messages, domain.ChatOptions{Model: model})
	if err != nil {
		return exp, err
	}
	exp.Text = text
	return exp, nil
}

// Models returns the catalog filtered by query. The cached copy is used
// unless refresh is set; the second result reports a cache hit.
func (s *Service) Models(ctx context.Context, query domain.ModelQuery, refresh bool) ([]domain.ModelInfo, bool, error) {
	if err := query.Validate(); err != nil {
		return nil, false, err
	}
	if s.Cache != nil && !refresh {
		entry, hit, err := s.Cache.Get(CatalogKey)
		if err != nil {
			s.warn("model cache read failed", err)
		}
		if hit {
			return domain.FilterModels(entry.Models, query), true, nil
		}
	}
	if s.Offline {
		return nil, false, ErrOffline
	}

	models, err := s.Catalog.ListModels(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(domain.CatalogEntry{Key: CatalogKey, Models: models}); err != nil {
			s.warn("model cache write failed", err)
		}
	}
	return domain.FilterModels(models, query), false, nil
}

// NewChatSession starts a conversation seeded with the chat system prompt.
func (s *Service) NewChatSession(ctx context.Context, model string) (*ChatSession, error) {
	if s.Offline {
		return nil, ErrOffline
	}
	sys, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect context: %w", err)
	}
	return &ChatSession{
		chat:  s.Chat,
		model: model,
		limit: domain.MaxChatHistory,
		messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: s.Prompts.Chat(sys)},
		},
	}, nil
}

func (s *Service) warn(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}

// ChatSession keeps the system message plus the most recent exchanges.
type ChatSession struct {
	chat  ports.ChatClient
	model string
	limit int

	mu       sync.Mutex
	messages []domain.ChatMessage
}

// IsExit reports whether input ends the session.
func IsExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Send streams the reply to input through onChunk. A failed turn leaves the
// history as it was before the call.
func (c *ChatSession) Send(ctx context.Context, input string, onChunk func(string)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleUser, Content: input})
	reply, err := c.chat.StreamChat(ctx, c.snapshot(), domain.ChatOptions{Model: c.model}, onChunk)
	if err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		return "", err
	}
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})

	// Drop the oldest user/assistant pair once past the limit.
	for len(c.messages) > c.limit+1 {
		c.messages = append(c.messages[:1], c.messages[3:]...)
	}
	return reply, nil
}

// Messages returns a copy of the conversation, system message first.
func (c *ChatSession) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *ChatSession) snapshot() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
