// Package config loads service configuration from an optional YAML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

// DefaultPort is used when neither the file nor PORT sets one.
const DefaultPort = 8080

// LLMConfig selects the model used for generation.
type LLMConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// Config is the service configuration.
type Config struct {
	Port           int               `yaml:"port"`
	DatabaseURL    string            `yaml:"database_url"`
	SQLitePath     string            `yaml:"sqlite_path"`
	AMQPURL        string            `yaml:"amqp_url"`
	LogDebug       bool              `yaml:"log_debug"`
	UseBrowser     bool              `yaml:"use_browser"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	LLM            LLMConfig         `yaml:"llm"`
	Export         export.PageConfig `yaml:"export"`

	// API keys only come from the environment.
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		AllowedOrigins: []string{"http://localhost:3000"},
		LLM:            LLMConfig{Provider: string(llm.ProviderAnthropic)},
		Export:         export.DefaultPageConfig(),
	}
}

// Load reads the YAML file at path (when path is non-empty), validates it
// against the config schema and overlays environment variables read through
// getenv. A nil getenv uses os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.Export = cfg.Export.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return nil
	}
	if err := schemas.ValidateConfigValue(raw); err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("SQLITE_PATH", &c.SQLitePath)
	setString("AMQP_URL", &c.AMQPURL)
	setString("LLM_PROVIDER", &c.LLM.Provider)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("ANTHROPIC_API_KEY", &c.AnthropicAPIKey)
	setString("GEMINI_API_KEY", &c.GeminiAPIKey)

	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = c.AllowedOrigins[:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	if v := getenv("LLM_MAX_OUTPUT_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_MAX_OUTPUT_TOKENS: %v", err)
		}
		c.LLM.MaxOutputTokens = n
	}
	for key, dst := range map[string]*bool{"LOG_DEBUG": &c.LogDebug, "USE_BROWSER": &c.UseBrowser} {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks values that the environment overlay may have changed.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", c.Port)
	}
	if c.LLM.MaxOutputTokens < 0 {
		return fmt.Errorf("config error: max_output_tokens must be non-negative")
	}
	if _, err := llm.ForProvider(c.LLM.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("config error: export: %w", err)
	}
	return nil
}

// LLMSettings returns the provider settings and the API key for the
// configured provider.
func (c *Config) LLMSettings() (*llm.Config, string, error) {
	base, err := llm.ForProvider(c.LLM.Provider)
	if err != nil {
		return nil, "", err
	}
	settings := base.WithModel(c.LLM.Model).WithMaxOutputTokens(c.LLM.MaxOutputTokens)

	key := c.AnthropicAPIKey
	if settings.Provider == llm.ProviderGemini {
		key = c.GeminiAPIKey
	}
	if key == "" {
		return nil, "", fmt.Errorf("no API key set for provider %s", settings.Provider)
	}
	return settings, key, nil
}
