package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Chat roles understood by OpenRouter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage follows the role/content pair required by chat APIs.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tunes a single completion request.
type ChatOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// ProviderPreferences is forwarded verbatim as the OpenRouter "provider" object.
type ProviderPreferences struct {
	Order             []string `yaml:"order,omitempty" json:"order,omitempty"`
	AllowFallbacks    *bool    `yaml:"allow_fallbacks,omitempty" json:"allow_fallbacks,omitempty"`
	RequireParameters *bool    `yaml:"require_parameters,omitempty" json:"require_parameters,omitempty"`
	DataCollection    string   `yaml:"data_collection,omitempty" json:"data_collection,omitempty"`
}

// IsZero reports whether no preference is set.
func (p *ProviderPreferences) IsZero() bool {
	return p == nil || (len(p.Order) == 0 && p.AllowFallbacks == nil && p.RequireParameters == nil && p.DataCollection == "")
}

// ModelPricing holds per-token prices as returned by the catalog (USD strings).
type ModelPricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// ModelInfo is one entry of the remote model catalog.
type ModelInfo struct {
	ID            string        `json:"id"`
	Name          string        `json:"name,omitempty"`
	ContextLength int           `json:"context_length,omitempty"`
	Pricing       *ModelPricing `json:"pricing,omitempty"`
}

// IsFree reports whether both prompt and completion are priced at zero.
func (m ModelInfo) IsFree() bool {
	return m.Pricing != nil && m.Pricing.Prompt == "0" && m.Pricing.Completion == "0"
}

// PromptPrice parses the prompt price, treating missing values as zero.
func (m ModelInfo) PromptPrice() float64 {
	if m.Pricing == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m.Pricing.Prompt, 64)
	if err != nil {
		return 0
	}
	return v
}

// ContextLabel renders the context window in thousands of tokens.
func (m ModelInfo) ContextLabel() string {
	if m.ContextLength <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dK", (m.ContextLength+500)/1000)
}

// Model catalog sort orders.
const (
	SortByName    = "name"
	SortByPrice   = "price"
	SortByContext = "context"
)

// ModelQuery filters and orders a model catalog.
type ModelQuery struct {
	Search string
	Free   bool
	Sort   string
	Limit  int
}

// Validate rejects unknown sort orders.
func (q ModelQuery) Validate() error {
	switch q.Sort {
	case "", SortByName, SortByPrice, SortByContext:
		return nil
	}
	return fmt.Errorf("invalid sort %q: use name, price, or context", q.Sort)
}

// FilterModels applies q to models without modifying the input slice.
func FilterModels(models []ModelInfo, q ModelQuery) []ModelInfo {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		if search != "" && !strings.Contains(strings.ToLower(m.ID), search) && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		if q.Free && !m.IsFree() {
			continue
		}
		out = append(out, m)
	}

	switch q.Sort {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	case SortByPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PromptPrice() < out[j].PromptPrice() })
	case SortByContext:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ContextLength > out[j].ContextLength })
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// KeyInfo is the OpenRouter /auth/key payload.
type KeyInfo struct {
	Label          string   `json:"label"`
	Usage          float64  `json:"usage"`
	Limit          *float64 `json:"limit"`
	IsFreeTier     bool     `json:"is_free_tier"`
	LimitRemaining *float64 `json:"limit_remaining"`
}
