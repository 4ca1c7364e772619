package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lustbot-widget/internal/types"
)

// Exchanger posts one utterance to the chat backend and returns its answer.
type Exchanger interface {
	Send(ctx context.Context, message, userID string) (types.ChatResponse, error)
}

// TransportError covers every way an exchange can fail: the request never
// completed, the backend answered with a non-2xx status, or the body could
// not be decoded. StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat backend returned %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("chat backend unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client implements Exchanger over HTTP+JSON.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client, e.g. one built by Authenticated.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a whole-request timeout. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Send(ctx context.Context, message, userID string) (types.ChatResponse, error) {
	body, err := json.Marshal(types.ChatRequest{Message: message, UserID: userID})
	if err != nil {
		return types.ChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return types.ChatResponse{}, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.ChatResponse{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return types.ChatResponse{}, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b))),
		}
	}

	var out types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return types.ChatResponse{}, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode reply: %w", err)}
	}
	return out, nil
}
