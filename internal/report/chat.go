package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"finance_io/pkg/utils"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultAIBaseURL = "https://api.deepseek.com/v1"
	defaultAIModel   = "deepseek-chat"
	chatTimeout      = 60 * time.Second
)

var ErrEmptyCompletion = errors.New("chat completion returned no content")

// ChatGenerator asks an OpenAI-compatible chat-completion endpoint for the report.
type ChatGenerator struct {
	client *openai.Client
	model  string
}

func NewChatGenerator(apiKey, baseURL, model string) *ChatGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &ChatGenerator{client: openai.NewClientWithConfig(cfg), model: model}
}

func NewChatGeneratorFromEnv() (*ChatGenerator, error) {
	apiKey := os.Getenv("AI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("AI_API_KEY environment variable is not set")
	}
	return NewChatGenerator(
		apiKey,
		utils.GetEnv("AI_BASE_URL", defaultAIBaseURL),
		utils.GetEnv("AI_MODEL", defaultAIModel),
	), nil
}

func (g *ChatGenerator) Generate(ctx context.Context, data FinancialData) (string, error) {
	prompt, err := BuildPrompt(data)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", utils.ErrorHandler(err, "chat completion request failed")
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	utils.Logger.WithField("model", resp.Model).Debug("chat completion received")
	return resp.Choices[0].Message.Content, nil
}
