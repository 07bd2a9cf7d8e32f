package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiStreamer implements Streamer for Google Gemini
type GeminiStreamer struct {
	client *genai.Client
	config *Config
}

// NewGeminiStreamer creates a new Gemini streamer
func NewGeminiStreamer(ctx context.Context, config *Config, apiKey string) (*GeminiStreamer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiStreamer{
		client: client,
		config: config,
	}, nil
}

// Stream opens a streaming generation.
func (c *GeminiStreamer) Stream(ctx context.Context, req Request) (Stream, error) {
	if c.config.Model == "" {
		return nil, fmt.Errorf("no Gemini model configured")
	}

	model := c.client.GenerativeModel(c.config.Model)
	model.SetMaxOutputTokens(int32(c.config.maxTokens()))
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	return &geminiStream{iter: model.GenerateContentStream(ctx, genai.Text(req.User))}, nil
}

// Model returns the configured model name
func (c *GeminiStreamer) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *GeminiStreamer) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Next() (string, error) {
	for {
		resp, err := s.iter.Next()
		if errors.Is(err, iterator.Done) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		if text := responseText(resp); text != "" {
			return text, nil
		}
	}
}

func (s *geminiStream) Close() error {
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
