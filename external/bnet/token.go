package bnet

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overmind/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

// Tokens are refreshed this long before the provider says they expire.
const tokenExpirySkew = 30 * time.Second

// tokenSource fetches OAuth2 client-credentials tokens and caches them until expiry.
type tokenSource struct {
	http          *fasthttp.Client
	url           string
	clientID      string
	clientSecret  string
	timeout       time.Duration
	rateLimitWait time.Duration
	transientWait time.Duration
	now           func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	flight    resilience.SingleFlight
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.cached(); ok {
		return token, nil
	}

	out, err, _ := s.flight.Do("oauth-token", func() (any, error) {
		if token, ok := s.cached(); ok {
			return token, nil
		}
		return s.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *tokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || !s.now().Add(tokenExpirySkew).Before(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *tokenSource) fetch(ctx context.Context) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(s.clientID+":"+s.clientSecret)))
	req.SetBodyString(form.Encode())

	if err := doRequest(ctx, s.http, req, resp, s.timeout); err != nil {
		return "", resilience.Retryable(crerr.Mark(crerr.Wrap(err, "request oauth token"), errTransient), s.transientWait)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusTooManyRequests:
		return "", resilience.Retryable(crerr.Wrapf(errRateLimited, "oauth token status=%d", status), retryAfter(resp, s.rateLimitWait))
	case status >= 500:
		return "", resilience.Retryable(crerr.Wrapf(errTransient, "oauth token status=%d", status), s.transientWait)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden || status == fasthttp.StatusBadRequest:
		return "", crerr.Wrapf(errUnauthorized, "oauth token status=%d body=%s", status, abbreviateBody(resp.Body()))
	case status < 200 || status >= 300:
		return "", crerr.Newf("oauth token status=%d body=%s", status, abbreviateBody(resp.Body()))
	}

	var payload tokenResponse
	if err := sonic.Unmarshal(resp.Body(), &payload); err != nil {
		return "", crerr.Mark(crerr.Wrap(err, "decode oauth token"), errDecode)
	}
	token := strings.TrimSpace(payload.AccessToken)
	if token == "" {
		return "", crerr.Mark(crerr.New("oauth token response has no access_token"), errDecode)
	}

	expiresIn := time.Duration(payload.ExpiresIn) * time.Second
	if expiresIn <= tokenExpirySkew {
		expiresIn = 2 * tokenExpirySkew
	}

	s.mu.Lock()
	s.token = token
	s.expiresAt = s.now().Add(expiresIn)
	s.mu.Unlock()

	return token, nil
}
