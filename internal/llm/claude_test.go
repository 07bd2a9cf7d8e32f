package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvent(w io.Writer, name, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}

func TestClaudeStreamer_TextDeltas(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, "message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"test-model","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":3,"output_tokens":1}}}`)
		writeEvent(w, "content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		writeEvent(w, "content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"<TAILORED_"}}`)
		writeEvent(w, "content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"RESUME>"}}`)
		writeEvent(w, "content_block_stop", `{"type":"content_block_stop","index":0}`)
		writeEvent(w, "message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":5}}`)
		writeEvent(w, "message_stop", `{"type":"message_stop"}`)
	}))
	defer srv.Close()

	s := NewClaudeStreamer(&Config{Provider: ProviderAnthropic, Model: "test-model", MaxOutputTokens: 8192}, "key",
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	stream, err := s.Stream(context.Background(), Request{System: "be brief", User: "hello"})
	require.NoError(t, err)
	defer stream.Close()

	var got []string
	for {
		delta, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, delta)
	}

	assert.Equal(t, []string{"<TAILORED_", "RESUME>"}, got)
	assert.Equal(t, "test-model", body["model"])
	assert.EqualValues(t, 8192, body["max_tokens"])

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err, "stream stays finished")
}

func TestClaudeStreamer_UpstreamRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.Copy(w, strings.NewReader(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	s := NewClaudeStreamer(DefaultConfig(), "bad", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	_, err := s.Stream(context.Background(), Request{User: "hello"})
	assert.Error(t, err)
}
