package llm

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

// ClaudeStreamer implements Streamer for Anthropic Claude
type ClaudeStreamer struct {
	client anthropic.Client
	config *Config
}

// NewClaudeStreamer creates a new Claude streamer
func NewClaudeStreamer(config *Config, apiKey string, opts ...option.RequestOption) *ClaudeStreamer {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeStreamer{
		client: anthropic.NewClient(opts...),
		config: config,
	}
}

// Stream opens a streaming message request.
func (c *ClaudeStreamer) Stream(ctx context.Context, req Request) (Stream, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.maxTokens()),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	// Connection and auth failures are known before the first event.
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("failed to start Claude stream: %w", err)
	}
	return &claudeStream{stream: stream}, nil
}

// Model returns the configured model name
func (c *ClaudeStreamer) Model() string {
	return c.config.Model
}

// Close is a no-op; the HTTP client is shared.
func (c *ClaudeStreamer) Close() error {
	return nil
}

type claudeStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	done   bool
}

func (s *claudeStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for s.stream.Next() {
		switch ev := s.stream.Current().AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				return delta.Text, nil
			}
		case anthropic.MessageStopEvent:
			s.done = true
			return "", io.EOF
		}
	}
	if err := s.stream.Err(); err != nil {
		return "", fmt.Errorf("claude stream: %w", err)
	}
	s.done = true
	return "", io.EOF
}

func (s *claudeStream) Close() error {
	return s.stream.Close()
}
