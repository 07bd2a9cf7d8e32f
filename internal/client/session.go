// Package client consumes the generation endpoint and keeps the local view of
// one generation.
package client

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/resume-tailor/internal/sections"
)

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Streaming
	Parsed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Parsed:
		return "parsed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// Session holds the text received so far and, once the stream completes, the
// extracted sections. It is safe for concurrent use so a display loop can
// read Live while the stream is being consumed.
type Session struct {
	mu     sync.Mutex
	state  State
	buf    strings.Builder
	result sections.Result
	err    error
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{}
}

// Start clears any previous generation and enters Streaming.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
	s.result = sections.Result{}
	s.err = nil
	s.state = Streaming
}

// Append adds one increment to the live buffer.
func (s *Session) Append(delta string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Streaming {
		return fmt.Errorf("%w: append while %s", ErrInvalidTransition, s.state)
	}
	s.buf.WriteString(delta)
	return nil
}

// Complete extracts the sections from the final buffer and enters Parsed.
func (s *Session) Complete() (sections.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Streaming {
		return sections.Result{}, fmt.Errorf("%w: complete while %s", ErrInvalidTransition, s.state)
	}
	s.result = sections.Parse(s.buf.String())
	s.state = Parsed
	return s.result, nil
}

// Fail records err and enters Failed. The live text is kept for display but
// no parsed result survives.
func (s *Session) Fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return fmt.Errorf("%w: fail while %s", ErrInvalidTransition, s.state)
	}
	if err == nil {
		err = errors.New("generation failed")
	}
	s.result = sections.Result{}
	s.err = err
	s.state = Failed
	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Live returns the text received so far.
func (s *Session) Live() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Result returns the extracted sections. The second value is false unless
// the session is Parsed.
func (s *Session) Result() (sections.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.state == Parsed
}

// Err returns the failure recorded by Fail.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
