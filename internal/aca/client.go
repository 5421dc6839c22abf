package aca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/circuit"
)

const defaultTimeout = 5 * time.Second

// Client is the HTTP resolver implementation. It authenticates with
// basic auth and short-circuits through a breaker when the upstream is
// flapping, so stations get fast external_error answers instead of
// piling up timeouts.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// NewClient constructs a resolver client against the given base URL.
func NewClient(baseURL, username, password string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("resolver base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid resolver base URL: %w", err)
	}
	c := &Client{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    circuit.New("aca", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type lookupResponse struct {
	ID         string `json:"id"`
	TypeCode   string `json:"type_code"`
	Department string `json:"department"`
	College    string `json:"college"`
	Reason     string `json:"reason"`
}

// Resolve looks up the identity behind a card token. A transport
// failure or upstream 5xx is a terminal answer for this request; the
// station may resubmit.
func (c *Client) Resolve(ctx context.Context, token id.CardToken) (models.StudentInfo, error) {
	if !c.breaker.Allow() {
		return models.StudentInfo{}, fmt.Errorf("resolver circuit open")
	}

	body, err := json.Marshal(map[string]string{"card": token.String()})
	if err != nil {
		return models.StudentInfo{}, fmt.Errorf("encode lookup: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/card", bytes.NewReader(body))
	if err != nil {
		return models.StudentInfo{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return models.StudentInfo{}, fmt.Errorf("resolver call: %w", err)
	}
	defer resp.Body.Close()

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode == http.StatusOK {
		c.recordFailure(ctx)
		return models.StudentInfo{}, fmt.Errorf("decode lookup response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		c.recordSuccess()
		c.log().DebugContext(ctx, "resolver lookup ok",
			"elapsed", time.Since(start),
		)
		return models.StudentInfo{
			ID:         id.StudentID(decoded.ID),
			TypeCode:   decoded.TypeCode,
			Department: decoded.Department,
			College:    decoded.College,
		}, nil
	case http.StatusNotFound:
		// Upstream answered; the card just is not valid. Not a breaker
		// failure.
		c.recordSuccess()
		return models.StudentInfo{}, fmt.Errorf("card %s: %w", token, ErrCardUnknown)
	case http.StatusForbidden:
		c.recordSuccess()
		return models.StudentInfo{}, fmt.Errorf("card %s: %w", token, ErrBlacklisted)
	default:
		c.recordFailure(ctx)
		return models.StudentInfo{}, fmt.Errorf("resolver answered %d", resp.StatusCode)
	}
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.log().WarnContext(ctx, "resolver circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.log().Info("resolver circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
