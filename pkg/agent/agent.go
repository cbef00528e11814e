// Package agent implements the HTTP client for the hospital RAG agent
// endpoint.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/hospitalchat/pkg/utils"
)

const (
	// RequestIDHeader carries the per-turn request ID to the agent.
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody bounds how much of a non-200 body is kept on StatusError.
	maxErrorBody = 512
)

// ErrDecode is returned when a 200 response cannot be decoded or lacks the
// output field.
var ErrDecode = errors.New("decoding agent response")

// StatusError is returned for any non-200 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("agent returned status %d: %s", e.StatusCode, e.Body)
}

// Config holds configuration for the agent client.
type Config struct {
	// URL is the full endpoint URL, e.g. "http://localhost:8000/hospital-rag-agent".
	URL string

	// Timeout bounds a single call. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration

	// HTTPClient overrides the default client. Mostly useful for tests.
	HTTPClient *http.Client
}

// Client posts prompts to the RAG agent.
type Client struct {
	url        atomic.Pointer[string]
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// queryRequest is the request body the agent expects.
type queryRequest struct {
	Text string `json:"text"`
}

// queryResponse is the response body of a successful agent call.
type queryResponse struct {
	Output            *string         `json:"output"`
	IntermediateSteps json.RawMessage `json:"intermediate_steps"`
}

// Response is a decoded 200 response from the agent.
type Response struct {
	Output            string          `json:"output"`
	IntermediateSteps json.RawMessage `json:"intermediate_steps"`
}

// NewClient creates a new agent client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := validateURL(cfg.URL); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Client{
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		logger:     logger,
	}
	c.url.Store(&cfg.URL)

	return c, nil
}

// URL returns the endpoint currently in use.
func (c *Client) URL() string {
	return *c.url.Load()
}

// SetURL swaps the endpoint for subsequent calls. Calls already in flight
// keep the old endpoint.
func (c *Client) SetURL(u string) error {
	if err := validateURL(u); err != nil {
		return err
	}
	c.url.Store(&u)
	return nil
}

// Query sends text to the agent and returns its decoded response.
func (c *Client) Query(ctx context.Context, text string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	jsonBody, err := json.Marshal(queryRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", utils.UserAgent())
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.With("request_id", requestID, "url", endpoint)
	log.Debug("querying agent", "prompt_len", len(text))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
		log.Debug("agent returned error status", "status", resp.StatusCode, "elapsed", time.Since(start))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       utils.Truncate(string(body), maxErrorBody),
		}
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if qr.Output == nil {
		return nil, fmt.Errorf("%w: missing output field", ErrDecode)
	}

	log.Debug("agent answered", "status", resp.StatusCode, "elapsed", time.Since(start))

	return &Response{
		Output:            *qr.Output,
		IntermediateSteps: qr.IntermediateSteps,
	}, nil
}

// Explanation renders IntermediateSteps for display. A JSON string is
// returned as is, null or absent steps yield "", and anything else is
// indented JSON.
func (r *Response) Explanation() string {
	raw := bytes.TrimSpace(r.IntermediateSteps)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func validateURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid agent url %q: %w", u, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid agent url %q: scheme must be http or https", u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid agent url %q: missing host", u)
	}
	return nil
}
