package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI translates through a chat completion model.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI returns an OpenAI-backed translator. baseURL may point at any
// OpenAI-compatible server.
func NewOpenAI(apiKey, model, baseURL string, logger *slog.Logger) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: loggerOrDefault(logger),
	}, nil
}

func buildPrompt(text string, dir Direction) string {
	return fmt.Sprintf("Translate the following text from %s to %s. Only output the translated text, nothing else.\n\nText to translate:\n%s",
		languageName(dir.Source()), languageName(dir.Target()), text)
}

func (o *OpenAI) Translate(ctx context.Context, text string, dir Direction) (string, bool, error) {
	if strings.TrimSpace(text) == "" {
		return "", false, ErrEmptyText
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text, dir),
			},
		},
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Warn("translation completion failed", "model", o.model, "error", err)
		return "", false, nil
	}
	if len(resp.Choices) == 0 {
		return "", false, nil
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", false, nil
	}
	return out, true, nil
}
