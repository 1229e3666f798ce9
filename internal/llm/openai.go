package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// openAIChat is shared by the providers speaking the OpenAI chat API.
type openAIChat struct {
	client openai.Client
	model  string
	name   string // used to prefix errors
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}

// Chat sends messages to the model and returns the first choice.
func (c *openAIChat) Chat(ctx context.Context, messages []Message) (string, error) {
	return c.complete(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	})
}

func (c *openAIChat) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages at temperature 0 and decodes the JSON reply into
// result.
func (c *openAIChat) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.complete(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return err
	}
	return decodeJSON(content, result)
}
