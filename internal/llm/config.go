// Package llm wraps the model providers used to stream tailored output.
package llm

import "fmt"

// Provider represents an LLM provider
type Provider string

const (
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultMaxOutputTokens caps a single generation.
const DefaultMaxOutputTokens = 8192

// Config selects the provider and model for streaming generation.
type Config struct {
	Provider        Provider
	Model           string
	MaxOutputTokens int
}

// DefaultConfig returns the default configuration (Anthropic)
func DefaultConfig() *Config {
	return DefaultAnthropicConfig()
}

// DefaultAnthropicConfig returns the default Claude configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider:        ProviderAnthropic,
		Model:           "claude-sonnet-4-20250514",
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		Model:           "gemini-2.5-pro",
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// ForProvider returns the defaults for a named provider.
func ForProvider(name string) (*Config, error) {
	switch Provider(name) {
	case "", ProviderAnthropic:
		return DefaultAnthropicConfig(), nil
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}

// WithModel returns a copy of the config using model. An empty model keeps
// the current one.
func (c *Config) WithModel(model string) *Config {
	out := *c
	if model != "" {
		out.Model = model
	}
	return &out
}

// WithMaxOutputTokens returns a copy of the config with a different output
// cap. Non-positive values keep the current cap.
func (c *Config) WithMaxOutputTokens(n int) *Config {
	out := *c
	if n > 0 {
		out.MaxOutputTokens = n
	}
	return &out
}

func (c *Config) maxTokens() int {
	if c.MaxOutputTokens <= 0 {
		return DefaultMaxOutputTokens
	}
	return c.MaxOutputTokens
}
