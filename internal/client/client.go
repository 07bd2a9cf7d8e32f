package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/sections"
	"github.com/jonathan/resume-tailor/internal/streaming"
)

const gapsSavedTrailer = "X-Gaps-Saved"

// readChunk is the size of each read from the response body.
const readChunk = 4 << 10

// APIError is a non-200 answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// ErrIncomplete means the response body ended without a clean end of stream.
var ErrIncomplete = errors.New("generation stream ended early")

// GenerateRequest is the body sent to POST /generate.
type GenerateRequest struct {
	TaskID          string `json:"taskId"`
	ExistingProfile string `json:"existing_profile"`
	JobDescription  string `json:"job_description"`
}

// Outcome is the result of a completed generation.
type Outcome struct {
	Result sections.Result
	// GapsSaved is nil when the server did not report the persistence outcome.
	GapsSaved *bool
	Chunks    int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client talks to a resume tailor server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// New returns a Client for the server at baseURL authenticating with token.
// No overall timeout is set on the default HTTP client because generations
// stream for as long as the model writes.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 2 * time.Minute,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token and uses it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	c.token = out.Token
	return out.Token, nil
}

// Generate streams a generation into session. onDelta, if not nil, sees each
// decoded increment as it arrives. Any failure leaves the session Failed.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, session *Session, onDelta func(string)) (*Outcome, error) {
	session.Start()
	out, err := c.generate(ctx, req, session, onDelta)
	if err != nil {
		_ = session.Fail(err)
		return nil, err
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, req GenerateRequest, session *Session, onDelta func(string)) (*Outcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/generate", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	agg := streaming.NewAggregator(func(delta string) error {
		if err := session.Append(delta); err != nil {
			return err
		}
		if onDelta != nil {
			onDelta(delta)
		}
		return nil
	})

	buf := make([]byte, readChunk)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if err := agg.PushBytes(buf[:n]); err != nil {
				return nil, err
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("generation stream broken",
				zap.Int("received_bytes", agg.Len()),
				zap.Error(readErr))
			return nil, fmt.Errorf("%w: %v", ErrIncomplete, readErr)
		}
	}
	if err := agg.Close(); err != nil {
		return nil, err
	}

	result, err := session.Complete()
	if err != nil {
		return nil, err
	}
	out := &Outcome{Result: result, Chunks: agg.Chunks()}
	if v := resp.Trailer.Get(gapsSavedTrailer); v != "" {
		if saved, err := strconv.ParseBool(v); err == nil {
			out.GapsSaved = &saved
		}
	}
	c.logger.Debug("generation complete",
		zap.Int("chunks", out.Chunks),
		zap.Bool("resume_found", result.ResumeFound),
		zap.Bool("gaps_found", result.GapsFound))
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
