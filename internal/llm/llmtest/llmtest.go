// Package llmtest provides a scripted llm.Streamer for tests.
package llmtest

import (
	"context"
	"io"
	"sync"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// Streamer replays fixed chunks. When OpenErr is set, Stream fails without
// producing anything; when FailAfter is non-negative, the stream returns
// StreamErr after that many chunks.
type Streamer struct {
	Chunks    []string
	OpenErr   error
	StreamErr error
	FailAfter int
	// Block, when non-nil, is received from before every chunk.
	Block chan struct{}

	mu       sync.Mutex
	requests []llm.Request
}

// New returns a Streamer that replays chunks and completes normally.
func New(chunks ...string) *Streamer {
	return &Streamer{Chunks: chunks, FailAfter: -1}
}

// Stream records the request and returns a replaying stream.
func (s *Streamer) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return &stream{ctx: ctx, owner: s}, nil
}

// Model returns a fixed name.
func (s *Streamer) Model() string { return "scripted" }

// Close does nothing.
func (s *Streamer) Close() error { return nil }

// Requests returns the requests seen so far.
func (s *Streamer) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Request(nil), s.requests...)
}

type stream struct {
	ctx    context.Context
	owner  *Streamer
	next   int
	closed bool
}

func (st *stream) Next() (string, error) {
	s := st.owner
	if s.FailAfter >= 0 && st.next >= s.FailAfter {
		return "", s.StreamErr
	}
	if st.next >= len(s.Chunks) {
		return "", io.EOF
	}
	if s.Block != nil {
		select {
		case <-s.Block:
		case <-st.ctx.Done():
			return "", st.ctx.Err()
		}
	}
	if err := st.ctx.Err(); err != nil {
		return "", err
	}
	chunk := s.Chunks[st.next]
	st.next++
	return chunk, nil
}

func (st *stream) Close() error {
	st.closed = true
	return nil
}
