// Package api provides typed bindings for the nutrition coach HTTP backend:
// auth, chat, goals, logs and patients. Reads are cached by resource and
// writes invalidate exactly the entries they affect.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoBackend is returned by every call when no base URL is configured.
var ErrNoBackend = errors.New("no backend configured")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Credentials supplies the bearer token attached to outgoing requests.
type Credentials interface {
	Token() string
}

// SessionClearer is what Logout needs from the session holder.
type SessionClearer interface {
	Clear() error
}

type noCredentials struct{}

func (noCredentials) Token() string { return "" }

// Client talks to the backend. The zero value is not usable; call New.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	cache   *Cache
	log     *zap.Logger

	Auth     *AuthService
	Chat     *ChatService
	Goals    *GoalsService
	Logs     *LogsService
	Patients *PatientsService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCredentials sets the token source.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL. An empty baseURL yields a client whose
// calls all fail with ErrNoBackend.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		creds:   noCredentials{},
		cache:   NewCache(),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.Auth = &AuthService{c: c}
	c.Chat = &ChatService{c: c}
	c.Goals = &GoalsService{c: c}
	c.Logs = &LogsService{c: c}
	c.Patients = &PatientsService{c: c}
	return c
}

// Configured reports whether a backend URL is set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// Cache exposes the read cache.
func (c *Client) Cache() *Cache { return c.cache }

// Logout clears the session and drops every cached read, so the next read of
// any resource goes back to the network.
func (c *Client) Logout(s SessionClearer) error {
	c.cache.Reset()
	return s.Clear()
}

// read performs a cached GET. tags is evaluated after out has been decoded so
// list reads can tag themselves with the ids they contain.
func (c *Client) read(ctx context.Context, path string, query url.Values, refetch bool, out any, tags func() []string) error {
	key := cacheKey(path, query)
	if !refetch {
		if body, ok := c.cache.Get(key); ok {
			c.log.Debug("cache hit", zap.String("key", key))
			return json.Unmarshal(body, out)
		}
	}
	body, err := c.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	c.cache.Set(key, body, tags()...)
	return nil
}

// write performs a mutating request and invalidates the given tags on success.
func (c *Client) write(ctx context.Context, method, path string, in, out any, invalidates ...string) error {
	body, err := c.send(ctx, method, path, nil, in)
	if err != nil {
		return err
	}
	if n := c.cache.Invalidate(invalidates...); n > 0 {
		c.log.Debug("cache invalidated", zap.Strings("tags", invalidates), zap.Int("entries", n))
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNoBackend
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c.log.Debug("request", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return b, nil
}

func cacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
