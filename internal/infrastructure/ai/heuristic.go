package ai

import (
	"context"
	"strings"

	"github.com/doeshing/codecraft/internal/domain"
	"github.com/doeshing/codecraft/internal/ports"
)

type heuristicGenerator struct{}

// NewHeuristicGenerator returns a generator that works without network access.
func NewHeuristicGenerator() ports.Generator {
	return heuristicGenerator{}
}

func (heuristicGenerator) Name() string {
	return "heuristic"
}

func (heuristicGenerator) Suggest(_ context.Context, req domain.GenerationRequest) (domain.CommandSuggestion, error) {
	return guessCommand(req.Intent, req.System), nil
}

func guessCommand(intent string, sys domain.SystemContext) domain.CommandSuggestion {
	intent = strings.ToLower(intent)
	windows := sys.OS == "Windows"
	switch {
	case strings.Contains(intent, "docker"):
		return domain.CommandSuggestion{Command: "docker ps", Explanation: "lists running containers"}
	case strings.Contains(intent, "git status"):
		return domain.CommandSuggestion{Command: "git status", Explanation: "shows the working tree status"}
	case strings.Contains(intent, "list") && strings.Contains(intent, "file"):
		if windows {
			return domain.CommandSuggestion{Command: "Get-ChildItem -Force", Explanation: "lists all files"}
		}
		return domain.CommandSuggestion{Command: "ls -la", Explanation: "lists all files"}
	case strings.Contains(intent, "current directory") || strings.Contains(intent, "where am i"):
		return domain.CommandSuggestion{Command: "pwd", Explanation: "prints the current directory"}
	case strings.Contains(intent, "disk") && (strings.Contains(intent, "space") || strings.Contains(intent, "usage")):
		return domain.CommandSuggestion{Command: "df -h", Explanation: "shows free disk space"}
	case strings.Contains(intent, "kubernetes") || strings.Contains(intent, "pod"):
		return domain.CommandSuggestion{Command: "kubectl get pods", Explanation: "lists pods in the current namespace"}
	default:
		return domain.CommandSuggestion{Command: `echo "No AI provider configured"`, Explanation: "offline mode has no suggestion for this request"}
	}
}
