// ABOUTME: OpenAI-compatible chat client used as Clara's remote model
// ABOUTME: Defaults to Gemini's OpenAI endpoint; one attempt per request, no retry
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gemini-1.5-flash"
	// DefaultBaseURL is Google's OpenAI-compatible Gemini endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	// DefaultTemperature is used when no temperature is configured
	DefaultTemperature = 0.5
)

// ErrEmptyReply is returned when the service answers without any text
var ErrEmptyReply = errors.New("model returned an empty reply")

// Request is one generation call: persona text, framed context and sampling parameters
type Request struct {
	System      string
	Prompt      string
	Temperature float32 // zero is sent as greedy sampling, not omitted
	TopP        float32 // zero leaves the provider default
	MaxTokens   int     // zero leaves the provider default
}

// Model generates a reply for a request
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
	ModelID() string
}

// ClientConfig holds configuration for the OpenAI-compatible client
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	ChatModel string
	Timeout   time.Duration
}

// OpenAIClient wraps the go-openai client
type OpenAIClient struct {
	client    *openai.Client
	chatModel string
	timeout   time.Duration
}

// NewOpenAIClientWithConfig creates a new client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	oaiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oaiConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(oaiConfig),
		chatModel: chatModel,
		timeout:   config.Timeout,
	}, nil
}

// ModelID returns the chat model name sent with each request
func (c *OpenAIClient) ModelID() string {
	return c.chatModel
}

// Generate sends the persona as the system message and the prompt as the user message
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	// go-openai omits a zero temperature, which providers read as their default
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return "", fmt.Errorf("chat completion: %w: %w", ctxErr, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyReply
	}

	return content, nil
}
