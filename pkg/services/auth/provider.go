// Package auth owns the vendor bearer token: one cached token, refreshed
// under a safety margin, with concurrent refreshes coalesced so the token
// endpoint sees a single call.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/de-tools/registry-sync/pkg/models/api"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	"golang.org/x/sync/singleflight"
)

const (
	tokenPath     = "/oauth2/token"
	defaultMargin = 60 * time.Second
	tokenAttempts = 3
)

type Credentials struct {
	ClientID     string
	ClientSecret string
}

// CredentialSource hides where the client id/secret come from (env, AWS
// Secrets Manager). Resolved on every refresh so rotated secrets take
// effect without a restart.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

type Provider struct {
	baseURL    string
	source     CredentialSource
	httpClient *http.Client
	margin     time.Duration
	now        func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type Option func(*Provider)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

func WithRefreshMargin(d time.Duration) Option {
	return func(p *Provider) { p.margin = d }
}

// WithClock lets tests drive expiry with a fake clock.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(baseURL string, source CredentialSource, opts ...Option) *Provider {
	p := &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		source:     source,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		margin:     defaultMargin,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns the cached token, refreshing it when its remaining lifetime
// falls under the margin. Concurrent callers share one in-flight refresh.
func (p *Provider) Token(ctx context.Context) (string, error) {
	if tok, ok := p.cached(); ok {
		return tok, nil
	}

	v, err, _ := p.group.Do("token", func() (any, error) {
		// A refresh may have completed while this caller queued up.
		if tok, ok := p.cached(); ok {
			return tok, nil
		}
		return p.refresh(ctx)
	})
	if err != nil {
		return "", &domain.AuthError{Err: err}
	}
	return v.(string), nil
}

// Invalidate drops the cached token if it is the one the caller saw
// rejected, forcing a refresh on the next Token call.
func (p *Provider) Invalidate(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token == p.token {
		p.token = ""
		p.expiresAt = time.Time{}
	}
}

func (p *Provider) cached() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && p.expiresAt.Sub(p.now()) > p.margin {
		return p.token, true
	}
	return "", false
}

func (p *Provider) refresh(ctx context.Context) (string, error) {
	creds, err := p.source.Credentials(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve client credentials: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < tokenAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := p.requestToken(ctx, creds)
		if err == nil {
			p.mu.Lock()
			p.token = resp.AccessToken
			p.expiresAt = p.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
			p.mu.Unlock()
			return resp.AccessToken, nil
		}
		lastErr = err

		// Bad credentials will not improve with retries.
		var se *tokenStatusError
		if errors.As(err, &se) && (se.code == http.StatusUnauthorized || se.code == http.StatusForbidden) {
			return "", err
		}
	}
	return "", lastErr
}

type tokenStatusError struct {
	code int
	body string
}

func (e *tokenStatusError) Error() string {
	return fmt.Sprintf("token endpoint returned HTTP %d: %s", e.code, e.body)
}

func (p *Provider) requestToken(ctx context.Context, creds Credentials) (*api.TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+tokenPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &tokenStatusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}

	var token api.TokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}
	return &token, nil
}
