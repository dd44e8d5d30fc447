package storefront

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

	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
)

const (
	storeKeyHeader               = "StoreKey"
	breakerName                  = "storefront"
	defaultTimeout               = 10 * time.Second
	responseBodyReadLimit  int64 = 4 << 20
	errorSnippetReadLimit        = 256
	defaultRetryAttempts         = 3
	defaultBreakerFailures       = 5
)

var (
	errBaseURLRequired  = errors.New("storefront base url is required")
	errStoreKeyRequired = errors.New("storefront store key is required")
)

// RetryPolicy bounds the exponential backoff applied to idempotent reads.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// BreakerSettings configures the circuit breaker guarding every backend call.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// UnauthorizedHandler runs when the backend rejects the caller's access token.
type UnauthorizedHandler func(ctx context.Context)

// Client talks to the storefront REST backend on behalf of a single store.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	storeKey       string
	retry          RetryPolicy
	breakerCfg     BreakerSettings
	breaker        *gobreaker.CircuitBreaker
	metrics        *metrics.UpstreamMetrics
	onUnauthorized UnauthorizedHandler
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry overrides the retry policy for GET requests.
func WithRetry(policy RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// WithBreaker overrides the circuit breaker thresholds.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.breakerCfg = settings
	}
}

// WithMetrics records call latency, outcomes and breaker state.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithUnauthorizedHandler installs the hook fired on a 401 for an authenticated call.
func WithUnauthorizedHandler(fn UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// NewClient builds a client for the given backend and store key.
func NewClient(baseURL, storeKey string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	trimmedKey := strings.TrimSpace(storeKey)
	if trimmedKey == "" {
		return nil, errStoreKeyRequired
	}

	client := &Client{
		baseURL:    trimmedURL,
		storeKey:   trimmedKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retry: RetryPolicy{
			MaxAttempts:     defaultRetryAttempts,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
		breakerCfg: BreakerSettings{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: defaultBreakerFailures,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	client.breaker = client.newBreaker()
	return client, nil
}

// NewFromConfig builds a client from the upstream section of the app config.
func NewFromConfig(cfg config.UpstreamConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithRetry(RetryPolicy{
			MaxAttempts:     cfg.RetryMaxAttempts,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
		}),
		WithBreaker(BreakerSettings{
			MaxRequests:      cfg.BreakerMaxRequests,
			Interval:         cfg.BreakerInterval,
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: cfg.BreakerFailureThreshold,
		}),
	}
	return NewClient(cfg.BaseURL, cfg.StoreKey, append(base, opts...)...)
}

func (c *Client) newBreaker() *gobreaker.CircuitBreaker {
	threshold := c.breakerCfg.FailureThreshold
	if threshold == 0 {
		threshold = defaultBreakerFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: c.breakerCfg.MaxRequests,
		Interval:    c.breakerCfg.Interval,
		Timeout:     c.breakerCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.SetBreakerState(name, int(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
	})
}

type call struct {
	method     string
	path       string
	endpoint   string
	query      url.Values
	body       any
	idempotent bool
}

type envelope struct {
	Success    *bool           `json:"Success"`
	Message    string          `json:"Message"`
	Misspelled string          `json:"Mesasge"`
	Error      string          `json:"Error"`
	Data       json.RawMessage `json:"Data"`
	Pagination *Pagination     `json:"Pagination"`
	Token      string          `json:"Token"`
}

func (e envelope) message() string {
	for _, candidate := range []string{e.Message, e.Misspelled, e.Error} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

type response struct {
	env envelope
}

func (r *response) decode(out any) (bool, error) {
	data := bytes.TrimSpace(r.env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode storefront payload")
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, req call) (*response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}

	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal storefront request")
		}
		payload = encoded
	}

	attempt := func() (*response, error) {
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.roundTrip(ctx, req, payload)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				c.metrics.ObserveCall(req.endpoint, metrics.OutcomeCircuitOpen, 0)
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storefront backend unavailable")
			}
			return nil, err
		}
		return out.(*response), nil
	}

	if !req.idempotent || c.retry.MaxAttempts <= 1 {
		return attempt()
	}

	policy := backoff.NewExponentialBackOff()
	if c.retry.InitialInterval > 0 {
		policy.InitialInterval = c.retry.InitialInterval
	}
	if c.retry.MaxInterval > 0 {
		policy.MaxInterval = c.retry.MaxInterval
	}

	resp, err := backoff.Retry(ctx, func() (*response, error) {
		resp, err := attempt()
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(c.retry.MaxAttempts))
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s request failed", req.endpoint))
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req call, payload []byte) (*response, error) {
	start := time.Now()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.buildURL(req.path, req.query), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build storefront request")
	}

	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(storeKeyHeader, c.storeKey)
	token := AccessTokenFromContext(ctx)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.ObserveCall(req.endpoint, metrics.OutcomeFailure, time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s request failed", req.endpoint))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		c.metrics.ObserveCall(req.endpoint, metrics.OutcomeFailure, time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("read %s response", req.endpoint))
	}

	var env envelope
	decodeErr := error(nil)
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 {
		decodeErr = json.Unmarshal(trimmed, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (decodeErr == nil && env.Success != nil && !*env.Success) {
		apiErr := &APIError{
			status:   resp.StatusCode,
			endpoint: req.endpoint,
			Message:  env.message(),
		}
		if apiErr.Message == "" {
			apiErr.Message = fallbackMessage(resp.StatusCode, raw)
		}
		return nil, c.classify(ctx, apiErr, token != "", time.Since(start))
	}

	if decodeErr != nil {
		c.metrics.ObserveCall(req.endpoint, metrics.OutcomeFailure, time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, fmt.Sprintf("decode %s response", req.endpoint))
	}

	c.metrics.ObserveCall(req.endpoint, metrics.OutcomeSuccess, time.Since(start))
	return &response{env: env}, nil
}

func (c *Client) classify(ctx context.Context, apiErr *APIError, authenticated bool, elapsed time.Duration) error {
	switch {
	case apiErr.status == http.StatusUnauthorized:
		c.metrics.ObserveCall(apiErr.endpoint, metrics.OutcomeUnauthorized, elapsed)
		if authenticated && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, apiErr, apiErr.Message)
	case apiErr.status >= http.StatusInternalServerError:
		c.metrics.ObserveCall(apiErr.endpoint, metrics.OutcomeFailure, elapsed)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, apiErr.Message)
	}

	c.metrics.ObserveCall(apiErr.endpoint, metrics.OutcomeRejected, elapsed)
	switch apiErr.status {
	case http.StatusForbidden:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, apiErr, apiErr.Message)
	case http.StatusNotFound:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, apiErr, apiErr.Message)
	case http.StatusConflict:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, apiErr, apiErr.Message)
	case http.StatusTooManyRequests:
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, apiErr, apiErr.Message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, apiErr, apiErr.Message)
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func fallbackMessage(status int, raw []byte) string {
	snippet := strings.TrimSpace(string(raw))
	if len(snippet) > errorSnippetReadLimit {
		snippet = snippet[:errorSnippetReadLimit]
	}
	if snippet != "" && !strings.HasPrefix(snippet, "{") && !strings.HasPrefix(snippet, "<") {
		return snippet
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request rejected"
}

func isTransient(err error) bool {
	return pkgerrors.HasCode(err, pkgerrors.CodeDependency)
}

func isRetryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return isTransient(err)
}

func getOne[T any](ctx context.Context, c *Client, req call) (*T, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var out T
	found, err := resp.decode(&out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

func getList[T any](ctx context.Context, c *Client, req call) ([]T, *Pagination, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	out := make([]T, 0)
	if _, err := resp.decode(&out); err != nil {
		return nil, nil, err
	}
	return out, resp.env.Pagination, nil
}
