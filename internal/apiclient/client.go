package apiclient

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

	"github.com/google/uuid"

	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/session"
)

// DefaultBaseURL is the hosted certificates API.
const DefaultBaseURL = "https://aviation-certs-api.onrender.com"

// Client talks to the certificates REST API. Every request carries the bearer
// token of the session found in the request context, or of the default session.
type Client struct {
	baseURL string
	http    *http.Client
	session session.Session
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithSession(s session.Session) Option {
	return func(cl *Client) { cl.session = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http = &http.Client{Transport: cl.http.Transport, Timeout: d}
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCertificate matches GET /api/certificates/{id}
func (c *Client) GetCertificate(ctx context.Context, id string) (cert.Certificate, error) {
	var out cert.Certificate
	err := c.do(ctx, http.MethodGet, "/api/certificates/"+url.PathEscape(id), nil, &out)
	return out, err
}

// ToggleState matches GET /api/toggle-state
func (c *Client) ToggleState(ctx context.Context) (bool, error) {
	var out cert.ToggleState
	if err := c.do(ctx, http.MethodGet, "/api/toggle-state", nil, &out); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

// ListCertificates matches GET /api/certificates
func (c *Client) ListCertificates(ctx context.Context) ([]cert.Certificate, error) {
	var out []cert.Certificate
	if err := c.do(ctx, http.MethodGet, "/api/certificates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCertificate matches POST /api/certificates
func (c *Client) CreateCertificate(ctx context.Context, draft cert.Draft) (cert.Certificate, error) {
	var out cert.Certificate
	err := c.do(ctx, http.MethodPost, "/api/certificates", draft, &out)
	return out, err
}

// UpdateCertificate matches PUT /api/certificates/{id}
func (c *Client) UpdateCertificate(ctx context.Context, id string, draft cert.Draft) (cert.Certificate, error) {
	var out cert.Certificate
	err := c.do(ctx, http.MethodPut, "/api/certificates/"+url.PathEscape(id), draft, &out)
	return out, err
}

// DeleteCertificate matches DELETE /api/certificates/{id}
func (c *Client) DeleteCertificate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/certificates/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	corrID := CorrelationID(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token(ctx))
	req.Header.Set("X-Correlation-Id", corrID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"corrId", corrID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: invalid JSON: %w", method, path, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok {
		return s.Token()
	}
	if c.session != nil {
		return c.session.Token()
	}
	return ""
}

func errorMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Detail
	}
	return ""
}

type correlationKey struct{}

// WithCorrelationID makes every request issued with ctx carry id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id attached to ctx, or a fresh one.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
