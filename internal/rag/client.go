package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	apperrors "github.com/thoreinstein/mcpmerge/internal/errors"
)

// Defaults match the service the generated config entries point at.
const (
	DefaultURL     = "http://localhost:3000/query"
	DefaultTopK    = 5
	DefaultTimeout = 30 * time.Second
)

// TraceIDHeader carries a per-request ID so service logs can be matched to
// ours.
const TraceIDHeader = "X-Trace-ID"

// ErrEmptyQuestion is returned by Query when the question is blank.
var ErrEmptyQuestion = errors.New("question is required")

// Config configures a Client.
type Config struct {
	// URL is the full endpoint the question is POSTed to.
	URL string

	// TopK is the number of passages requested from the service.
	TopK int

	// Timeout bounds a single request.
	Timeout time.Duration
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
	TraceID    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("query API returned %d: %s", e.StatusCode, e.Body)
}

// ConnectionError is returned when the service could not be reached.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return "failed to connect to query API at " + e.URL + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK"`
}

// Client forwards questions to the knowledge service and relays its JSON
// answer untouched.
type Client struct {
	http *resty.Client
	cfg  Config
}

// NewClient creates a Client. Zero or negative fields in cfg take their
// defaults.
func NewClient(cfg Config) (*Client, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: client, cfg: cfg}, nil
}

// withDefaults clamps negative fields to zero and fills every zero field
// from the package defaults.
func (c Config) withDefaults() (Config, error) {
	c.TopK = max(c.TopK, 0)
	c.Timeout = max(c.Timeout, 0)
	defaults := Config{URL: DefaultURL, TopK: DefaultTopK, Timeout: DefaultTimeout}
	if err := mergo.Merge(&c, defaults); err != nil {
		return Config{}, errors.Wrap(err, "applying query client defaults")
	}
	return c, nil
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string {
	return c.cfg.URL
}

// Query POSTs {"question": question, "topK": n} and returns the response
// body. Non-2xx responses yield *APIError and transport failures yield
// *ConnectionError, both marked with apperrors.ErrNetwork.
func (c *Client) Query(ctx context.Context, question string) (json.RawMessage, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	traceID := newTraceID()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(TraceIDHeader, traceID).
		SetBody(queryRequest{Question: question, TopK: c.cfg.TopK}).
		Post(c.cfg.URL)
	if err != nil {
		return nil, errors.Mark(&ConnectionError{URL: c.cfg.URL, Err: err}, apperrors.ErrNetwork)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		body := strings.TrimSpace(string(resp.Body()))
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return nil, errors.Mark(&APIError{StatusCode: resp.StatusCode(), Body: body, TraceID: traceID}, apperrors.ErrNetwork)
	}

	raw := json.RawMessage(resp.Body())
	if !json.Valid(raw) {
		return nil, errors.Mark(errors.Newf("query API returned a non-JSON response (%d bytes)", len(raw)), apperrors.ErrNetwork)
	}
	return raw, nil
}

// newTraceID returns a time-ordered UUID, falling back to a random one.
func newTraceID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return v7.String()
}
