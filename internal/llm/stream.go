package llm

import (
	"context"
	"fmt"
)

// Request is a single-turn generation request.
type Request struct {
	System string
	User   string
}

// Stream yields text increments in the order the provider produced them.
// Next returns io.EOF once the provider signals completion.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Streamer is an abstraction over LLM providers that stream text.
type Streamer interface {
	// Stream opens a streaming generation
	Stream(ctx context.Context, req Request) (Stream, error)
	// Model returns the model name requests are sent to
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewStreamer creates a streaming client based on configuration
func NewStreamer(ctx context.Context, config *Config, apiKey string) (Streamer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiStreamer(ctx, config, apiKey)
	case ProviderAnthropic, "":
		return NewClaudeStreamer(config, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
