package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// Service wraps the chat model used for transcript cleanup and offer drafting.
// It is built once per process and holds no per-request state.
type Service struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewService creates the service. An empty model uses GPT-4o-mini.
func NewService(client *openai.Client, model string, log zerolog.Logger) *Service {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Service{client: client, model: model, log: log}
}

type completion struct {
	system      string
	user        string
	temperature float32
	maxTokens   int
	jsonFormat  bool
}

// complete runs a single chat completion and returns the trimmed content.
func (s *Service) complete(ctx context.Context, c completion) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.system},
			{Role: openai.ChatMessageRoleUser, Content: c.user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if c.jsonFormat {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	s.log.Debug().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion usage")

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("OpenAI returned an empty message")
	}
	return content, nil
}

// extractJSONFromMarkdown extracts JSON from markdown code blocks
func extractJSONFromMarkdown(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
