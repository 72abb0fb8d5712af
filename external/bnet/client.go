package bnet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/ladder"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/riskibarqy/overmind/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

const (
	DefaultBaseURL       = "https://us.api.blizzard.com"
	DefaultTokenURL      = "https://us.battle.net/oauth/token"
	DefaultMaxRetries    = 10
	DefaultRateLimitWait = 5 * time.Second
	DefaultTransientWait = time.Second
	defaultTimeout       = 10 * time.Second
)

var (
	errRateLimited  = crerr.New("battle.net rate limited")
	errTransient    = crerr.New("battle.net transient failure")
	errUnauthorized = crerr.New("battle.net unauthorized")
	errNotFound     = crerr.New("battle.net profile not found")
	errDecode       = crerr.New("battle.net payload decode failure")
)

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Timeout        time.Duration
	MaxRetries     int
	RateLimitWait  time.Duration
	TransientWait  time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Sleep          func(ctx context.Context, d time.Duration) error
}

// Client resolves locators to their showcased 1v1 ladder standing.
type Client struct {
	http          *fasthttp.Client
	baseURL       string
	timeout       time.Duration
	rateLimitWait time.Duration
	transientWait time.Duration
	retry         resilience.RetryPolicy
	tokens        *tokenSource
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "overmind-importer",
			MaxConnsPerHost:     64,
			ReadTimeout:         defaultTimeout,
			WriteTimeout:        defaultTimeout,
			MaxIdleConnDuration: time.Minute,
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	rateLimitWait := cfg.RateLimitWait
	if rateLimitWait <= 0 {
		rateLimitWait = DefaultRateLimitWait
	}
	transientWait := cfg.TransientWait
	if transientWait <= 0 {
		transientWait = DefaultTransientWait
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		http:          httpClient,
		baseURL:       baseURL,
		timeout:       timeout,
		rateLimitWait: rateLimitWait,
		transientWait: transientWait,
		retry:         resilience.RetryPolicy{MaxRetries: maxRetries, Sleep: cfg.Sleep},
		tokens: &tokenSource{
			http:          httpClient,
			url:           tokenURL,
			clientID:      cfg.ClientID,
			clientSecret:  cfg.ClientSecret,
			timeout:       timeout,
			rateLimitWait: rateLimitWait,
			transientWait: transientWait,
			now:           time.Now,
		},
		breaker: cfg.CircuitBreaker.Build(),
		logger:  logger,
	}
}

// Fetch never returns an error. Failures are reported as a Failed result with a kind.
func (c *Client) Fetch(ctx context.Context, locator identity.Locator) ladder.Result {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "battle.net circuit breaker rejected request",
			"state", c.breaker.State(),
			"locator", locator.String(),
		)
		return ladder.Failed(locator, ladder.FailureCircuitOpen, err)
	}

	result := c.fetch(ctx, locator)
	switch {
	case result.Status == ladder.StatusFailed &&
		(result.Kind == ladder.FailureTransient || result.Kind == ladder.FailureRateLimited):
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}

	if result.Status == ladder.StatusFailed && result.Kind != ladder.FailureCanceled {
		c.logger.WarnContext(ctx, "battle.net ladder lookup failed",
			"locator", locator.String(),
			"kind", string(result.Kind),
			"error", c.sanitize(result.Err),
		)
	}
	return result
}

func (c *Client) fetch(ctx context.Context, locator identity.Locator) ladder.Result {
	profile := fmt.Sprintf("/sc2/profile/%d/%d/%d", locator.Region, locator.Realm, locator.ProfileID)

	var summary ladderSummary
	if err := c.getJSON(ctx, profile+"/ladder/summary", &summary); err != nil {
		return c.failure(ctx, locator, err)
	}
	entry, ok := summary.showcase(gameMode1v1)
	if !ok || entry.LadderID == 0 {
		return ladder.NotFound(locator)
	}

	var board ladderBoard
	if err := c.getJSON(ctx, fmt.Sprintf("%s/ladder/%d", profile, int64(entry.LadderID)), &board); err != nil {
		return c.failure(ctx, locator, err)
	}
	snapshot, ok := board.snapshot(locator, int64(entry.LadderID))
	if !ok {
		return ladder.NotFound(locator)
	}
	return ladder.Found(snapshot)
}

func (c *Client) failure(ctx context.Context, locator identity.Locator, err error) ladder.Result {
	switch {
	case crerr.Is(err, errNotFound):
		return ladder.NotFound(locator)
	case ctx.Err() != nil || crerr.Is(err, context.Canceled) || crerr.Is(err, context.DeadlineExceeded):
		return ladder.Failed(locator, ladder.FailureCanceled, err)
	case crerr.Is(err, errRateLimited):
		return ladder.Failed(locator, ladder.FailureRateLimited, err)
	case crerr.Is(err, errUnauthorized):
		return ladder.Failed(locator, ladder.FailureUnauthorized, err)
	case crerr.Is(err, errDecode):
		return ladder.Failed(locator, ladder.FailureDecode, err)
	default:
		return ladder.Failed(locator, ladder.FailureTransient, err)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	uri := c.baseURL + path
	reauthorized := false

	return c.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(uri)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		if err := doRequest(ctx, c.http, req, resp, c.timeout); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return resilience.Retryable(crerr.Mark(crerr.Wrapf(err, "GET %s", path), errTransient), c.transientWait)
		}

		status := resp.StatusCode()
		switch {
		case status >= 200 && status < 300:
			if err := sonic.Unmarshal(resp.Body(), target); err != nil {
				return crerr.Mark(crerr.Wrapf(err, "decode %s", path), errDecode)
			}
			return nil
		case status == fasthttp.StatusNotFound:
			return crerr.Wrapf(errNotFound, "GET %s", path)
		case status == fasthttp.StatusUnauthorized:
			c.tokens.Invalidate()
			err := crerr.Wrapf(errUnauthorized, "GET %s status=%d", path, status)
			if reauthorized {
				return err
			}
			reauthorized = true
			return resilience.Retryable(err, 0)
		case status == fasthttp.StatusForbidden:
			return crerr.Wrapf(errUnauthorized, "GET %s status=%d", path, status)
		case status == fasthttp.StatusTooManyRequests:
			c.logger.DebugContext(ctx, "battle.net rate limited", "path", path, "attempt", attempt+1)
			return resilience.Retryable(crerr.Wrapf(errRateLimited, "GET %s status=%d", path, status), retryAfter(resp, c.rateLimitWait))
		case status >= 500:
			return resilience.Retryable(
				crerr.Wrapf(errTransient, "GET %s status=%d body=%s", path, status, abbreviateBody(resp.Body())),
				c.transientWait,
			)
		default:
			return crerr.Newf("GET %s status=%d body=%s", path, status, abbreviateBody(resp.Body()))
		}
	})
}

func (c *Client) sanitize(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	if secret := strings.TrimSpace(c.tokens.clientSecret); secret != "" {
		text = strings.ReplaceAll(text, secret, "***")
	}
	if token, ok := c.tokens.cached(); ok {
		text = strings.ReplaceAll(text, token, "***")
	}
	return text
}

func doRequest(ctx context.Context, client *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		return client.DoDeadline(req, resp, deadline)
	}
	return client.DoTimeout(req, resp, timeout)
}

// retryAfter honors a Retry-After header given in seconds.
func retryAfter(resp *fasthttp.Response, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(string(resp.Header.Peek(fasthttp.HeaderRetryAfter)))
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func abbreviateBody(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
