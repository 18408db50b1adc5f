// Package sources implements the upstream clients: Congress.gov for legislative
// records, the Wikipedia REST API for biography, and NewsAPI for recent activity.
// Every client resolves to a SourceFragment; failures become fragment reasons.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/polscope/internal/model"
	"github.com/ppiankov/polscope/internal/util"
	"github.com/ppiankov/polscope/internal/worker"
)

// Client fetches one upstream and normalizes its response
type Client interface {
	Kind() model.SourceKind
	Fetch(ctx context.Context, name string, budget time.Duration) model.SourceFragment
}

// StatusError is returned for non-2xx upstream responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected status: %d", e.StatusCode)
}

// Transport is the bounded HTTP GET shared by all clients
type Transport struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
}

// NewTransport creates a transport from the HTTP config. limiter may be nil.
func NewTransport(cfg model.HTTPConfig, limiter *worker.Limiter) *Transport {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Transport{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		limiter:   limiter,
	}
}

// GetJSON issues one GET and decodes the body into out. The deadline on ctx
// covers the rate-limit wait, the round trip and the body read.
func (t *Transport) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	if err := t.limiter.Wait(ctx, rawURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}

// withBudget derives the per-call deadline. A non-positive budget keeps ctx as is.
func withBudget(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}

// truncate keeps the first n runes of s
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
