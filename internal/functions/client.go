// Package functions calls named serverless endpoints with a JSON body and
// decodes their JSON reply.
package functions

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
)

// RemoteError is a failure reported by the remote function. Message is the
// backend's text, unaltered.
type RemoteError struct {
	Function   string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("remote functions are not configured")

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Invoke POSTs req as JSON to {base}/{name} and decodes the reply into resp.
// A non-2xx status or an "error" field in the reply yields a *RemoteError.
func (c *Client) Invoke(ctx context.Context, name string, req, resp any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	var body io.Reader = http.NoBody

	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", name, err)
		}

		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("invoking %s: %w", name, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", name, err)
	}

	var envelope struct {
		Error string `json:"error"`
	}

	// A body that is not JSON still counts as the error text on failure.
	_ = json.Unmarshal(raw, &envelope)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := envelope.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}

		if msg == "" {
			msg = http.StatusText(httpResp.StatusCode)
		}

		return &RemoteError{Function: name, StatusCode: httpResp.StatusCode, Message: msg}
	}

	if envelope.Error != "" {
		return &RemoteError{Function: name, StatusCode: httpResp.StatusCode, Message: envelope.Error}
	}

	if resp == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, resp); err != nil {
		return fmt.Errorf("decoding %s response: %w", name, err)
	}

	return nil
}
