// Package openai adapts any OpenAI-compatible chat-completions API
// (OpenAI, DeepSeek, OpenRouter) to the llm.Client port.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/dvillegas/scam-radar/internal/domain/llm"
)

const maxTokens = 2048

// Endpoint base URLs for the compatible providers.
const (
	BaseOpenAI     = "https://api.openai.com/v1"
	BaseDeepSeek   = "https://api.deepseek.com"
	BaseOpenRouter = "https://openrouter.ai/api/v1"
)

// Default models per provider.
const (
	ModelOpenAI     = "gpt-4o-mini"
	ModelDeepSeek   = "deepseek-chat"
	ModelOpenRouter = "deepseek/deepseek-r1:free"
)

type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient builds a client against one compatible endpoint.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}
}

// Chat submits messages and returns the raw completion text. Single
// attempt; the caller owns the timeout and the fallback.
func (c *Client) Chat(ctx context.Context, messages []llm.Message, wantJSON bool) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  toOpenAIMessages(messages),
	}
	if wantJSON {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []llm.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
