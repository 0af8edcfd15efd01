// ABOUTME: HTTP transport for the REST families (contacts, opportunities, initiatives)
// ABOUTME: Every failure is normalized into a *crmerr.Error with a user-facing message
package remote

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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/harperreed/keyaccounts/crmerr"
)

// DefaultBaseURL is the local development endpoint.
const DefaultBaseURL = "http://localhost:3001/api"

// RequestIDHeader carries a per-request UUID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// Client talks JSON to the REST backend. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	now     func() time.Time
	logger  *log.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithClock overrides the source of lastUpdated stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client rooted at baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("base URL %q must be absolute", baseURL)
		}
		return nil, crmerr.Configuration("remote.new", err)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
		logger:  log.Default().WithPrefix("remote"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token}))
	}

	return c, nil
}

// BaseURL returns the configured REST root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Contacts returns the contacts family.
func (c *Client) Contacts() *ContactsAPI { return &ContactsAPI{c: c} }

// Opportunities returns the opportunities family.
func (c *Client) Opportunities() *OpportunitiesAPI { return &OpportunitiesAPI{c: c} }

// Initiatives returns the initiatives family.
func (c *Client) Initiatives() *InitiativesAPI { return &InitiativesAPI{c: c} }

type serverError struct {
	Message string `json:"message"`
}

// do sends body as JSON and decodes a 2xx response into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method string, path []string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.logger.Error("Request Error", "op", op, "err", err)
			return crmerr.Configuration(op, err)
		}
		reader = bytes.NewReader(b)
	}

	endpoint := c.baseURL.JoinPath(path...)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		c.logger.Error("Request Error", "op", op, "err", err)
		return crmerr.Configuration(op, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Network Error", "op", op, "request_id", requestID, "err", err)
		return crmerr.Network(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request",
		"op", op,
		"method", method,
		"url", endpoint.String(),
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Network Error", "op", op, "request_id", requestID, "err", err)
		return crmerr.Network(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se serverError
		_ = json.Unmarshal(raw, &se)
		c.logger.Error("API Error", "op", op, "status", resp.StatusCode, "request_id", requestID, "body", string(raw))
		return crmerr.Server(op, resp.StatusCode, se.Message)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		var cerr *crmerr.Error
		if errors.As(err, &cerr) {
			// an unrecognized enum value in a server record
			c.logger.Error("corrupt record", "op", op, "request_id", requestID, "err", err)
			return cerr
		}
		c.logger.Error("API Error", "op", op, "request_id", requestID, "err", err)
		return crmerr.Wrap(crmerr.KindServer, op, crmerr.MsgServerDefault, err)
	}
	return nil
}

// withStamp encodes v as a JSON object, drops the identifier and sets
// lastUpdated to now.
func (c *Client) withStamp(v any, stamp bool) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	delete(fields, "id")
	if stamp {
		fields["lastUpdated"] = c.now().UTC().Format(time.RFC3339Nano)
	}
	return fields, nil
}
