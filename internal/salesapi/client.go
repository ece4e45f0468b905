// Package salesapi is the typed HTTP client for the remote vendas API.
package salesapi

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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// RequestObserver is notified after every completed request so callers can
// record remote latency metrics.
type RequestObserver func(endpoint, outcome string, elapsed time.Duration)

// Client wraps interactions with the vendas API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	validate   *validator.Validate
	observe    RequestObserver
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithObserver installs a request observer.
func WithObserver(fn RequestObserver) Option {
	return func(c *Client) { c.observe = fn }
}

// NewClient constructs a new vendas API client. tokens may be nil, in which
// case requests go out unauthenticated.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		logger:     logger,
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListSales fetches sale records matching the filter. Absent filter bounds are
// omitted from the query string entirely.
func (c *Client) ListSales(ctx context.Context, filter Filter) ([]SaleRecord, error) {
	endpoint := "/vendas"
	target := c.baseURL + endpoint
	if query := filter.Values().Encode(); query != "" {
		target += "?" + query
	}

	resp, err := c.do(ctx, http.MethodGet, endpoint, target, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.apiError(resp)
	}

	var records []SaleRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	for i := range records {
		if err := c.validate.Struct(&records[i]); err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("record %d: %w", i, err)}
		}
		if records[i].Date.IsZero() {
			return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("record %d: missing sale date", i)}
		}
	}
	return records, nil
}

// GetSaleByID fetches a single sale record. A 404 resolves to (nil, nil):
// absence is a valid outcome, not an error.
func (c *Client) GetSaleByID(ctx context.Context, id string) (*SaleRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "must not be empty"}
	}

	endpoint := "/vendas/{id}"
	target := fmt.Sprintf("%s/vendas/%s", c.baseURL, url.PathEscape(id))
	resp, err := c.do(ctx, http.MethodGet, endpoint, target, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.apiError(resp)
	}

	var record SaleRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	if err := c.validate.Struct(&record); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	return &record, nil
}

// Login authenticates against the vendas API and persists the returned token.
// A failed login clears any previously stored token.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := c.validate.Struct(&creds); err != nil {
		return &ValidationError{Field: "credentials", Reason: err.Error()}
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	endpoint := "/auth/login"
	resp, err := c.do(ctx, http.MethodPost, endpoint, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.clearToken(ctx)
		return c.apiError(resp)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.clearToken(ctx)
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	if strings.TrimSpace(payload.Token) == "" {
		c.clearToken(ctx)
		return &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("login response missing token")}
	}
	if c.tokens == nil {
		return nil
	}
	return c.tokens.Store(ctx, payload.Token)
}

// Logout discards the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if c.tokens == nil {
		return nil
	}
	return c.tokens.Clear(ctx)
}

func (c *Client) do(ctx context.Context, method, endpoint, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("load api token", slog.Any("error", err))
			}
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, "transport_error", time.Since(start))
		return nil, &TransportError{Op: method + " " + endpoint, Err: err}
	}
	outcome := "success"
	if resp.StatusCode >= 400 {
		outcome = "api_error"
	}
	c.record(endpoint, outcome, time.Since(start))
	return resp, nil
}

func (c *Client) apiError(resp *http.Response) error {
	detail := ""
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Detalhe string `json:"detalhe"`
			Message string `json:"message"`
			Erro    string `json:"erro"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			switch {
			case payload.Detalhe != "":
				detail = payload.Detalhe
			case payload.Message != "":
				detail = payload.Message
			case payload.Erro != "":
				detail = payload.Erro
			}
		}
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}

func (c *Client) clearToken(ctx context.Context) {
	if c.tokens == nil {
		return
	}
	if err := c.tokens.Clear(ctx); err != nil && c.logger != nil {
		c.logger.Warn("clear api token", slog.Any("error", err))
	}
}

func (c *Client) record(endpoint, outcome string, elapsed time.Duration) {
	if c.observe != nil {
		c.observe(endpoint, outcome, elapsed)
	}
}
