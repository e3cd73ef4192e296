package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks JSON over HTTP to the remote store service.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	session Session
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client with sensible defaults.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseSession installs the session whose token authenticates later calls.
func (c *Client) UseSession(s Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// CurrentPrincipal reports the authenticated identity, if any.
func (c *Client) CurrentPrincipal() (Principal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session.Token == "" || c.session.Expired(time.Now()) {
		return Principal{}, false
	}
	return c.session.Principal, true
}

// Query reads all objects matching the shape.
func (c *Client) Query(ctx context.Context, q Query) ([]map[string]any, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := c.post(ctx, "/v1/query", q, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Transact applies the write ops as one request.
func (c *Client) Transact(ctx context.Context, ops []WriteOp) error {
	body := struct {
		Ops []WriteOp `json:"ops"`
	}{Ops: ops}
	return c.post(ctx, "/v1/transact", body, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.RLock()
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRejected, err)
	}
	return nil
}
