package openai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/upb/lenny-lens/services/providers"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	providerName   = "openai"
)

// OpenAIAdapter implements providers.Embedder and providers.Generator on the
// OpenAI API. Every call is a single attempt bounded by its own timeout.
type OpenAIAdapter struct {
	config providers.ProviderConfig
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter
func NewOpenAIAdapter(config providers.ProviderConfig, opts ...option.RequestOption) *OpenAIAdapter {
	defaults := providers.DefaultProviderConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = defaults.EmbeddingModel
	}
	if config.ChatModel == "" {
		config.ChatModel = defaults.ChatModel
	}
	if config.EmbeddingTimeout == 0 {
		config.EmbeddingTimeout = defaults.EmbeddingTimeout
	}
	if config.GenerationTimeout == 0 {
		config.GenerationTimeout = defaults.GenerationTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaults.MaxTokens
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(config.BaseURL),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIAdapter{
		config: config,
		client: openai.NewClient(clientOpts...),
	}
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string {
	return providerName
}

// Embed returns the embedding of text
func (a *OpenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.EmbeddingTimeout)
	defer cancel()

	resp, err := a.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(a.config.EmbeddingModel),
	})
	if err != nil {
		return nil, a.wrapError("embedding request failed", err)
	}
	if len(resp.Data) == 0 {
		return nil, providers.NewProviderError(a.Name(), "empty_response", "embedding response had no data", 0, nil)
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Complete sends prompt as a single user message and returns the reply
func (a *OpenAIAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.GenerationTimeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.config.ChatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(a.config.MaxTokens)),
	}
	if a.config.Temperature > 0 {
		params.Temperature = openai.Float(a.config.Temperature)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", a.wrapError("chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", providers.NewProviderError(a.Name(), "empty_response", "chat completion returned no choices", 0, nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// IsAvailable checks if the provider is currently available
func (a *OpenAIAdapter) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := a.client.Models.Get(ctx, a.config.ChatModel)
	return err == nil
}

// wrapError converts client errors into a ProviderError
func (a *OpenAIAdapter) wrapError(message string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == "" {
			code = apiErr.Type
		}
		return providers.NewProviderError(a.Name(), code, message, apiErr.StatusCode, err)
	}
	code := "http_error"
	if errors.Is(err, context.DeadlineExceeded) {
		code = "timeout"
	}
	return providers.NewProviderError(a.Name(), code, message, 0, err)
}
