// Package api is the client for the TaskFlow REST API. It attaches the
// bearer token, enforces local token expiry before sending, and turns every
// failure into an *apperr.Error.
package api

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

	"github.com/go-logr/logr"
	"google.golang.org/api/googleapi"

	"taskflow/internal/apperr"
	"taskflow/internal/session"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.taskflow.ghassanabukhaled.com/api"

	// DefaultTimeout applies to every request.
	DefaultTimeout = 10 * time.Second
)

// Sessions provides the current credentials and clears them when the
// server or the local clock says they are no longer valid.
type Sessions interface {
	Current() (session.Session, bool)
	Invalidate(reason session.Reason) error
	Now() time.Time
}

// Client talks to the REST API.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	sessions  Sessions
	log       logr.Logger
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSessions enables bearer authentication and session invalidation.
func WithSessions(s Sessions) Option {
	return func(c *Client) { c.sessions = s }
}

// WithLogger sets the logger used for request tracing at V(1).
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a JSON request and decodes the JSON response into out when out
// is non-nil. Every returned error is an *apperr.Error.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperr.NewGeneric(fmt.Sprintf("failed to encode request: %v", err), apperr.KindUnknown)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return apperr.NewGeneric(fmt.Sprintf("invalid request: %v", err), apperr.KindUnknown)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if err := c.authorize(req); err != nil {
		return err
	}

	start := time.Now()
	c.log.V(1).Info("request", "method", method, "endpoint", endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.V(1).Info("request failed", "method", method, "endpoint", endpoint, "error", err.Error())
		return apperr.FromTransportFailure(&apperr.RequestError{Method: method, Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	c.log.V(1).Info("response", "method", method, "endpoint", endpoint,
		"status", resp.StatusCode, "duration", time.Since(start).String())

	if err := googleapi.CheckResponse(resp); err != nil {
		appErr := apperr.FromTransportFailure(&apperr.RequestError{Method: method, Endpoint: endpoint, Err: err})
		c.afterFailure(resp.StatusCode, endpoint, appErr)
		return appErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperr.NewGeneric(fmt.Sprintf("invalid response from %s %s: %v", method, endpoint, err), apperr.KindUnknown)
	}
	return nil
}

// authorize attaches the bearer token. A token past its expiry clears the
// session and fails the request without sending it.
func (c *Client) authorize(req *http.Request) error {
	if c.sessions == nil {
		return nil
	}
	s, ok := c.sessions.Current()
	if !ok {
		return nil
	}
	if s.Expired(c.sessions.Now()) {
		if err := c.sessions.Invalidate(session.ReasonExpired); err != nil {
			c.log.Error(err, "failed to clear expired session")
		}
		return apperr.NewAuth("Session expired", true)
	}
	s.Token().SetAuthHeader(req)
	return nil
}

// afterFailure clears the session when the server rejects the token.
// Login and register failures are credential problems and leave it alone.
func (c *Client) afterFailure(status int, endpoint string, err *apperr.Error) {
	if c.sessions == nil || err.Kind != apperr.KindAuth || status != http.StatusUnauthorized {
		return
	}
	if apperr.IsAuthEndpoint(endpoint) {
		return
	}
	reason := session.ReasonUnauthorized
	if err.IsTokenExpired {
		reason = session.ReasonExpired
	}
	if clearErr := c.sessions.Invalidate(reason); clearErr != nil {
		c.log.Error(clearErr, "failed to clear rejected session")
	}
}
