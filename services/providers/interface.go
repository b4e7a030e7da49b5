package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	// Name returns the provider name (e.g., "openai")
	Name() string

	// Embed returns the embedding of text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces answer text for a prompt.
type Generator interface {
	// Name returns the provider name (e.g., "openai")
	Name() string

	// Complete sends prompt as a single user message and returns the reply
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// EmbeddingModel used by Embed
	EmbeddingModel string

	// ChatModel used by Complete
	ChatModel string

	// EmbeddingTimeout bounds a single Embed call
	EmbeddingTimeout time.Duration

	// GenerationTimeout bounds a single Complete call
	GenerationTimeout time.Duration

	// MaxTokens caps the generated answer length
	MaxTokens int

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64
}

// DefaultProviderConfig returns the pipeline defaults
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		EmbeddingModel:    "text-embedding-3-small",
		ChatModel:         "gpt-4o-mini",
		EmbeddingTimeout:  30 * time.Second,
		GenerationTimeout: 60 * time.Second,
		MaxTokens:         1000,
		Temperature:       0.7,
	}
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Timeout is set when the call ran out of time
	Timeout bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Timeout:    errors.Is(cause, context.DeadlineExceeded),
		Cause:      cause,
	}
}

// IsTimeout reports whether err is a provider call that ran out of time
func IsTimeout(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Timeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}
