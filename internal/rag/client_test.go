package rag

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
)

// newTestClient builds a Client for cfg and fails the test on error.
func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestNewClient_Defaults(t *testing.T) {
	c := newTestClient(t, Config{})

	assert.Equal(t, DefaultURL, c.URL())
	assert.Equal(t, DefaultTopK, c.cfg.TopK)
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)

	c = newTestClient(t, Config{URL: "http://rag:9000/ask", TopK: -3, Timeout: time.Second})
	assert.Equal(t, "http://rag:9000/ask", c.URL())
	assert.Equal(t, DefaultTopK, c.cfg.TopK)
	assert.Equal(t, time.Second, c.cfg.Timeout)
}

func TestConfig_WithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "empty",
			in:   Config{},
			want: Config{URL: DefaultURL, TopK: DefaultTopK, Timeout: DefaultTimeout},
		},
		{
			name: "negatives clamped then defaulted",
			in:   Config{TopK: -1, Timeout: -time.Second},
			want: Config{URL: DefaultURL, TopK: DefaultTopK, Timeout: DefaultTimeout},
		},
		{
			name: "set fields kept",
			in:   Config{URL: "http://x/q", TopK: 2, Timeout: time.Minute},
			want: Config{URL: "http://x/q", TopK: 2, Timeout: time.Minute},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.withDefaults()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Query(t *testing.T) {
	var got queryRequest
	var contentType, traceID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		contentType = r.Header.Get("Content-Type")
		traceID = r.Header.Get(TraceIDHeader)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"42","sources":[{"id":1}]}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, Config{URL: srv.URL, TopK: 3})
	answer, err := c.Query(t.Context(), "what is onboarding?")
	require.NoError(t, err)

	assert.JSONEq(t, `{"answer":"42","sources":[{"id":1}]}`, string(answer))
	assert.Equal(t, "what is onboarding?", got.Question)
	assert.Equal(t, 3, got.TopK)
	assert.Contains(t, contentType, "application/json")
	_, err = uuid.Parse(traceID)
	assert.NoError(t, err, "trace ID header should be a UUID")
}

func TestClient_Query_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not ready", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, Config{URL: srv.URL}).Query(t.Context(), "q")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "index not ready", apiErr.Body)
	assert.NotEmpty(t, apiErr.TraceID)
	assert.Equal(t, "query API returned 503: index not ready", err.Error())
	assert.True(t, errors.Is(err, apperrors.ErrNetwork))
	assert.Equal(t, apperrors.ExitSystem, apperrors.ExitCode(err))
}

func TestClient_Query_EmptyErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, Config{URL: srv.URL}).Query(t.Context(), "q")
	require.Error(t, err)
	assert.Equal(t, "query API returned 404: Not Found", err.Error())
}

func TestClient_Query_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, Config{URL: url, Timeout: 2 * time.Second}).Query(t.Context(), "q")
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, url, connErr.URL)
	assert.Contains(t, err.Error(), "failed to connect to query API at "+url)
	assert.True(t, errors.Is(err, apperrors.ErrNetwork))
}

func TestClient_Query_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy login</html>"))
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, Config{URL: srv.URL}).Query(t.Context(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-JSON")
}

func TestClient_Query_EmptyQuestion(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	_, err := newTestClient(t, Config{URL: srv.URL}).Query(t.Context(), "   ")
	assert.True(t, errors.Is(err, ErrEmptyQuestion))
	assert.False(t, called, "no request should be sent for an empty question")
}

func TestIndent(t *testing.T) {
	out, err := Indent(json.RawMessage(`{"a":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}", out)

	_, err = Indent(json.RawMessage(`{`))
	assert.Error(t, err)
}
