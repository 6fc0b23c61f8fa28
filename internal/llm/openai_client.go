// ABOUTME: OpenAI client for embeddings and chat completions
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for answers and extraction (configurable)
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harper/voicenotes/internal/models"
	"github.com/harper/voicenotes/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// ErrRateLimited is returned when the provider answers 429
var ErrRateLimited = errors.New("openai rate limit exceeded")

// EmbeddingError reports a failed or malformed embedding call
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding generation failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Second * 2,
	}
}

// CompletionRequest is a single system+user exchange
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	// JSON asks the model for a single JSON object response
	JSON bool
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oaiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oaiConfig.BaseURL = config.BaseURL
	}

	chatModel := config.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := config.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oaiConfig),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		timeout:        timeout,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
	}, nil
}

// GenerateEmbedding generates a 1536-dimensional embedding vector.
// Any failure, including a response of the wrong size, is an *EmbeddingError.
func (c *OpenAIClient) GenerateEmbedding(ctx context.Context, text string) (*models.Vector, error) {
	var vector *models.Vector

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(int) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return classify(err)
		}

		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		v, err := models.VectorFromSlice(resp.Data[0].Embedding)
		if err != nil {
			return &util.Permanent{Err: err}
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	return vector, nil
}

// Complete runs one chat completion and returns the first choice's content
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		Temperature: req.Temperature,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var content string

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(int) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, chatReq)
		if err != nil {
			return classify(err)
		}

		if len(resp.Choices) == 0 {
			return fmt.Errorf("no completion choices returned")
		}

		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	return content, nil
}

// classify marks rate limits and other client errors as non-retryable
func classify(err error) error {
	status := statusCode(err)
	switch {
	case status == http.StatusTooManyRequests:
		return &util.Permanent{Err: fmt.Errorf("%w: %v", ErrRateLimited, err)}
	case status >= 400 && status < 500:
		return &util.Permanent{Err: err}
	}
	return err
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// IsRateLimited reports whether err came from a 429 response
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
