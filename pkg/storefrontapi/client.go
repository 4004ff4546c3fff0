package storefrontapi

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

	"github.com/sony/gobreaker/v2"

	"github.com/mosketh/storefront/pkg/config"
	pkgerrors "github.com/mosketh/storefront/pkg/errors"
	"github.com/mosketh/storefront/pkg/logger"
)

const (
	headerAuthorization  = "Authorization"
	headerIdempotencyKey = "Idempotency-Key"
	maxErrorBody         = 64 << 10
)

// Client talks to the storefront backend that owns orders, products and logins.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logg       *logger.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New builds a client for cfg.BaseURL with a per-request timeout and a circuit breaker.
func New(cfg config.APIConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("storefront api base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logg == nil {
		logg = logger.Nop()
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		logg:       logg,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](breakerSettings(cfg, logg))
	return c, nil
}

func breakerSettings(cfg config.APIConfig, logg *logger.Logger) gobreaker.Settings {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "circuit breaker state changed")
		},
	}
}

type request struct {
	method         string
	path           string
	body           any
	token          string
	idempotencyKey string
}

// envelope is the backend's response shape: {success, data} or {success:false, error|message, code}.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

// do sends req and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set(headerAuthorization, "Bearer "+req.token)
	}
	if req.idempotencyKey != "" {
		httpReq.Header.Set(headerIdempotencyKey, req.idempotencyKey)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		// 5xx counts against the breaker; the body is still read below.
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, &serverError{status: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		var srvErr *serverError
		if !errors.As(err, &srvErr) || resp == nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront api unavailable")
			}
			return &APIError{Message: "storefront api unreachable", Cause: err}
		}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logg.Warn(ctx, "failed to close storefront api response body")
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: "reading response body", Cause: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (decodeErr == nil && env.Success != nil && !*env.Success) {
		return newAPIError(resp.StatusCode, env, decodeErr == nil)
	}
	if decodeErr != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response", Cause: errors.Join(ErrUnreadableData, decodeErr)}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &APIError{Status: resp.StatusCode, Message: "response missing data", Cause: ErrUnreadableData}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response data", Cause: errors.Join(ErrUnreadableData, err)}
	}
	return nil
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("storefront api returned %d", e.status)
}
