package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend is everything the session store needs from the server.
//
// Lookups return an error matching ErrNotFound when the key is unknown.
type Backend interface {
	FetchUser(ctx context.Context, anonymousID string) (UserRecord, error)
	Login(ctx context.Context, username string) (UserRecord, error)
	Register(ctx context.Context, user UserRecord) (UserRecord, error)
	UpdateUser(ctx context.Context, anonymousID string, fields map[string]any) (UserRecord, error)
	SubmitEvent(ctx context.Context, sub EventSubmission) (SubmitResponse, error)
	FetchEvents(ctx context.Context, remoteUserID string) ([]EventRecord, error)
	DeleteEvent(ctx context.Context, remoteEventID string) error
}

var _ Backend = (*Client)(nil)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// Client talks to the backend's JSON API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClientLogger sets the logger (default slog.Default()).
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client rooted at baseURL (e.g. "http://localhost:5000").
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api url: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchUser looks a user up by stable anonymous identifier.
func (c *Client) FetchUser(ctx context.Context, anonymousID string) (UserRecord, error) {
	var out UserRecord
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(anonymousID), nil, &out)
	return out, err
}

// Login looks a user up by username.
func (c *Client) Login(ctx context.Context, username string) (UserRecord, error) {
	var out UserRecord
	err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{"username": username}, &out)
	return out, err
}

// Register creates a user record.
func (c *Client) Register(ctx context.Context, user UserRecord) (UserRecord, error) {
	var out UserRecord
	err := c.do(ctx, http.MethodPost, "/api/users", user, &out)
	return out, err
}

// UpdateUser applies a partial update keyed by anonymous identifier.
func (c *Client) UpdateUser(ctx context.Context, anonymousID string, fields map[string]any) (UserRecord, error) {
	var out UserRecord
	err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(anonymousID), fields, &out)
	return out, err
}

// SubmitEvent records an event and returns the gamification result.
func (c *Client) SubmitEvent(ctx context.Context, sub EventSubmission) (SubmitResponse, error) {
	var out SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/sugar-events", sub, &out)
	return out, err
}

// FetchEvents returns the user's event history.
func (c *Client) FetchEvents(ctx context.Context, remoteUserID string) ([]EventRecord, error) {
	var out []EventRecord
	err := c.do(ctx, http.MethodGet, "/api/sugar-events/"+url.PathEscape(remoteUserID), nil, &out)
	return out, err
}

// DeleteEvent removes a stored event.
func (c *Client) DeleteEvent(ctx context.Context, remoteEventID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sugar-events/"+url.PathEscape(remoteEventID), nil, nil)
}

// do performs one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("backend request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", method, path, decodeStatusError(resp))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(b, &payload) == nil {
		se.Message = payload.Message
	}
	return se
}
