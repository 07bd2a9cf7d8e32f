package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamHandler writes parts as separate flushed chunks.
func streamHandler(t *testing.T, parts [][]byte, trailer string, abort bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "task-1", req.TaskID)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Trailer", gapsSavedTrailer)
		w.WriteHeader(http.StatusOK)
		for _, p := range parts {
			_, _ = w.Write(p)
			w.(http.Flusher).Flush()
		}
		if abort {
			panic(http.ErrAbortHandler)
		}
		if trailer != "" {
			w.Header().Set(gapsSavedTrailer, trailer)
		}
	}
}

var request = GenerateRequest{TaskID: "task-1", ExistingProfile: "profile", JobDescription: "job"}

func TestGenerate_Success(t *testing.T) {
	full := []byte("<TAILORED_RESUME>Café lead</TAILORED_RESUME>\n<GAP_ANALYSIS>- Kubernetes</GAP_ANALYSIS>")
	// Split inside the two-byte é.
	cut := strings.Index(string(full), "é") + 1
	srv := httptest.NewServer(streamHandler(t, [][]byte{full[:cut], full[cut:]}, "true", false))
	defer srv.Close()

	var seen strings.Builder
	session := NewSession()
	out, err := New(srv.URL, "tok").Generate(context.Background(), request, session, func(d string) {
		seen.WriteString(d)
	})
	require.NoError(t, err)

	assert.Equal(t, Parsed, session.State())
	assert.Equal(t, string(full), session.Live())
	assert.Equal(t, string(full), seen.String())
	assert.Equal(t, "Café lead", out.Result.Resume)
	assert.Equal(t, "- Kubernetes", out.Result.Gaps)
	require.NotNil(t, out.GapsSaved)
	assert.True(t, *out.GapsSaved)
}

func TestGenerate_NoTrailer(t *testing.T) {
	srv := httptest.NewServer(streamHandler(t, [][]byte{[]byte("untagged answer")}, "", false))
	defer srv.Close()

	out, err := New(srv.URL+"/", "tok").Generate(context.Background(), request, NewSession(), nil)
	require.NoError(t, err)
	assert.Nil(t, out.GapsSaved)
	assert.False(t, out.Result.ResumeFound)
	assert.Equal(t, "untagged answer", out.Result.Resume)
}

func TestGenerate_AbortedStreamFails(t *testing.T) {
	srv := httptest.NewServer(streamHandler(t, [][]byte{[]byte("<TAILORED_RESUME>half")}, "", true))
	defer srv.Close()

	session := NewSession()
	out, err := New(srv.URL, "tok").Generate(context.Background(), request, session, nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrIncomplete)

	assert.Equal(t, Failed, session.State())
	assert.Equal(t, "<TAILORED_RESUME>half", session.Live())
	_, ok := session.Result()
	assert.False(t, ok)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"task not found"}`)
	}))
	defer srv.Close()

	session := NewSession()
	_, err := New(srv.URL, "tok").Generate(context.Background(), request, session, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "task not found", apiErr.Message)
	assert.Equal(t, "server returned 404: task not found", apiErr.Error())
	assert.Equal(t, Failed, session.State())
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret-pass" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"invalid email or password"}`)
				return
			}
			_, _ = io.WriteString(w, `{"user":{},"token":"tok"}`)
		case "/generate":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, "ok")
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Login(context.Background(), "jane@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	token, err := c.Login(context.Background(), "jane@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	out, err := c.Generate(context.Background(), request, NewSession(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Result.Resume)
}

func TestAPIError_PlainBody(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	_, _ = rec.WriteString("upstream down\n")

	err := apiError(rec.Result())
	assert.EqualError(t, err, "server returned 502: upstream down")
}
