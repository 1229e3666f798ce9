package llm

import (
	"errors"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultLMStudioBaseURL = "http://localhost:1234/v1"

// LMStudioClient uses LM Studio's OpenAI-compatible API.
type LMStudioClient struct {
	openAIChat
	baseURL string
}

// NewLMStudioClient creates a new LM Studio client. The API key is taken
// from LMSTUDIO_API_KEY or OPENAI_API_KEY when set.
func NewLMStudioClient(model, baseURL string) (*LMStudioClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("lm studio model is required")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}

	apiKey := "lm-studio"
	for _, name := range []string{"LMSTUDIO_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			apiKey = v
			break
		}
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &LMStudioClient{
		openAIChat: openAIChat{client: client, model: model, name: "lm studio"},
		baseURL:    baseURL,
	}, nil
}
