package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"engunity-backend/internal/documents"
	"engunity-backend/internal/shared/metrics"
)

// ErrNotConfigured is returned when no backend URL is set.
var ErrNotConfigured = errors.New("backend not configured")

// Client talks to the external compute backend. Every assist feature is a
// thin forward: post JSON, relay status and body. No retries, no backoff.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Forward posts the raw JSON body to the backend path and returns the
// upstream status and body verbatim.
func (c *Client) Forward(ctx context.Context, path string, body []byte) (int, []byte, error) {
	if c == nil || strings.TrimSpace(c.BaseURL) == "" {
		return 0, nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	metrics.IncAssistForwarded()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		metrics.IncAssistUpstreamError()
		return 0, nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		metrics.IncAssistUpstreamError()
		return 0, nil, fmt.Errorf("backend response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

type qaRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

type qaResponse struct {
	Answer string `json:"answer"`
}

// Answer implements chat.Responder against the backend Q&A endpoint.
func (c *Client) Answer(ctx context.Context, question, documentText string) (string, error) {
	payload, err := json.Marshal(qaRequest{Question: question, Context: documentText})
	if err != nil {
		return "", err
	}
	status, body, err := c.Forward(ctx, "/api/qa", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("backend qa: status %d", status)
	}
	var parsed qaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("backend qa: decode: %w", err)
	}
	return parsed.Answer, nil
}

type summarizeRequest struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

type summarizeResponse struct {
	Summary   string               `json:"summary"`
	Citations []documents.Citation `json:"citations"`
}

// Summarize implements documents.Summarizer against the backend.
func (c *Client) Summarize(ctx context.Context, fileName, text string) (string, []documents.Citation, error) {
	payload, err := json.Marshal(summarizeRequest{FileName: fileName, Text: text})
	if err != nil {
		return "", nil, err
	}
	status, body, err := c.Forward(ctx, "/api/summarize", payload)
	if err != nil {
		return "", nil, err
	}
	if status != http.StatusOK {
		return "", nil, fmt.Errorf("backend summarize: status %d", status)
	}
	var parsed summarizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("backend summarize: decode: %w", err)
	}
	if parsed.Citations == nil {
		parsed.Citations = []documents.Citation{}
	}
	return parsed.Summary, parsed.Citations, nil
}
