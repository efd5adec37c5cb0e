package domain_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/codecraft/internal/domain"
)

func catalog() []domain.ModelInfo {
	return []domain.ModelInfo{
		{ID: "openai/gpt-4o", Name: "GPT-4o", ContextLength: 128000, Pricing: &domain.ModelPricing{Prompt: "0.0000025", Completion: "0.00001"}},
		{ID: "meta-llama/llama-3-8b:free", Name: "Llama 3 8B", ContextLength: 8192, Pricing: &domain.ModelPricing{Prompt: "0", Completion: "0"}},
		{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", ContextLength: 200000, Pricing: &domain.ModelPricing{Prompt: "0.000003", Completion: "0.000015"}},
	}
}

func ids(models []domain.ModelInfo) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.ID
	}
	return out
}

func TestFilterModels(t *testing.T) {
	tests := []struct {
		name  string
		query domain.ModelQuery
		want  []string
	}{
		{
			name:  "no filters keeps order",
			query: domain.ModelQuery{},
			want:  []string{"openai/gpt-4o", "meta-llama/llama-3-8b:free", "anthropic/claude-3.5-sonnet"},
		},
		{
			name:  "search matches name case-insensitively",
			query: domain.ModelQuery{Search: "SONNET"},
			want:  []string{"anthropic/claude-3.5-sonnet"},
		},
		{
			name:  "free only",
			query: domain.ModelQuery{Free: true},
			want:  []string{"meta-llama/llama-3-8b:free"},
		},
		{
			name:  "sort by name",
			query: domain.ModelQuery{Sort: domain.SortByName},
			want:  []string{"anthropic/claude-3.5-sonnet", "meta-llama/llama-3-8b:free", "openai/gpt-4o"},
		},
		{
			name:  "sort by price ascending",
			query: domain.ModelQuery{Sort: domain.SortByPrice},
			want:  []string{"meta-llama/llama-3-8b:free", "openai/gpt-4o", "anthropic/claude-3.5-sonnet"},
		},
		{
			name:  "sort by context descending with limit",
			query: domain.ModelQuery{Sort: domain.SortByContext, Limit: 2},
			want:  []string{"anthropic/claude-3.5-sonnet", "openai/gpt-4o"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(domain.FilterModels(catalog(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterModels() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModelQueryValidate(t *testing.T) {
	if err := (domain.ModelQuery{Sort: "popularity"}).Validate(); err == nil {
		t.Fatal("expected error for unknown sort")
	}
	if err := (domain.ModelQuery{Sort: domain.SortByPrice}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestModelInfoContextLabel(t *testing.T) {
	if got := (domain.ModelInfo{ContextLength: 128000}).ContextLabel(); got != "128K" {
		t.Errorf("ContextLabel() = %q, want 128K", got)
	}
	if got := (domain.ModelInfo{}).ContextLabel(); got != "N/A" {
		t.Errorf("ContextLabel() = %q, want N/A", got)
	}
}
