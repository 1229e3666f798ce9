package llm

import (
	"fmt"
	"strings"
)

const (
	ProviderCopilot  = "copilot"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

func normalizeProvider(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "":
		return ProviderCopilot
	case "lm-studio", "llmstudio":
		return ProviderLMStudio
	default:
		return p
	}
}

// NewClient creates an LLM client based on provider configuration.
func NewClient(provider, model, baseURL string) (Client, error) {
	switch normalizeProvider(provider) {
	case ProviderCopilot:
		return NewCopilotClient(model)
	case ProviderOllama:
		return NewOllamaClient(model, baseURL)
	case ProviderLMStudio:
		return NewLMStudioClient(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// IsLocal reports whether the provider runs a local model, which gets the
// compact prompt.
func IsLocal(provider string) bool {
	switch normalizeProvider(provider) {
	case ProviderOllama, ProviderLMStudio:
		return true
	default:
		return false
	}
}
