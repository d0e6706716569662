package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cardstock/core/ratelimit"

	"go.uber.org/zap"
)

var (
	// ErrClientContract marks a non-429 4xx response. These are never retried:
	// the request itself is wrong and repeating it cannot help.
	ErrClientContract = errors.New("provider rejected request")

	// ErrRetriesExhausted wraps the last transient failure after the retry
	// budget is spent.
	ErrRetriesExhausted = errors.New("provider retries exhausted")
)

// Client talks to the remote catalog API. All requests go through the shared
// rate limiter and the retry/backoff policy in do.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *ratelimit.Limiter
	logger  *zap.Logger
}

// NewClient creates a provider client. The limiter must be the process-wide
// instance so that every caller shares one request budget.
func NewClient(cfg Config, limiter *ratelimit.Limiter, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 20
	}
	return &Client{
		cfg: cfg,
		// The per-attempt timeout is enforced via context in do; the
		// transport-level timeout is a backstop.
		http:    &http.Client{Timeout: time.Duration(timeout+5) * time.Second},
		limiter: limiter,
		logger:  logger,
	}
}

// Name returns the configured provider name used to key cursors and ids.
func (c *Client) Name() string {
	return c.cfg.Name
}

// Scope returns the configured provider region scope.
func (c *Client) Scope() string {
	return c.cfg.Scope
}

// ListGames fetches one page of the provider's game collection.
func (c *Client) ListGames(ctx context.Context, cursor string) (Page, error) {
	return c.list(ctx, "/games", nil, cursor)
}

// ListSets fetches one page of sets for a game.
func (c *Client) ListSets(ctx context.Context, gameCode, cursor string) (Page, error) {
	return c.list(ctx, fmt.Sprintf("/games/%s/sets", url.PathEscape(gameCode)), nil, cursor)
}

// ListCards fetches one page of cards for a set.
func (c *Client) ListCards(ctx context.Context, gameCode, setID, cursor string) (Page, error) {
	return c.list(ctx, fmt.Sprintf("/games/%s/sets/%s/cards", url.PathEscape(gameCode), url.PathEscape(setID)), nil, cursor)
}

// ListVariants fetches one page of variants for a card.
func (c *Client) ListVariants(ctx context.Context, gameCode, cardID, cursor string) (Page, error) {
	return c.list(ctx, fmt.Sprintf("/games/%s/cards/%s/variants", url.PathEscape(gameCode), url.PathEscape(cardID)), nil, cursor)
}

func (c *Client) list(ctx context.Context, path string, query url.Values, cursor string) (Page, error) {
	if query == nil {
		query = url.Values{}
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if c.cfg.PageSize > 0 {
		query.Set("limit", strconv.Itoa(c.cfg.PageSize))
	}

	body, err := c.do(ctx, path, query)
	if err != nil {
		return Page{}, err
	}
	return decodeEnvelope(body)
}

// do issues one GET with the full resilience policy: rate limiting before every
// attempt, a hard per-attempt timeout, exponential backoff with jitter on 429,
// 5xx and transport errors, Retry-After honoring on 429, and no retry at all on
// other 4xx.
func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.cfg.Endpoint + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	retries := c.cfg.Retries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryAfter, err := c.attempt(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrClientContract) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err

		if attempt == retries {
			break
		}

		delay := c.backoff(attempt)
		if retryAfter > 0 && retryAfter < c.maxDelay() {
			delay = retryAfter
		}
		c.logger.Warn("Provider request failed, backing off",
			zap.String("url", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// attempt performs a single HTTP round trip under the per-attempt timeout.
// retryAfter is non-zero only for a 429 carrying a parsable Retry-After header.
func (c *Client) attempt(ctx context.Context, endpoint string) (body []byte, retryAfter time.Duration, err error) {
	actx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrClientContract, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.ApiKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.ApiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// DNS failures, connection resets and attempt timeouts follow the
		// same backoff schedule as 5xx.
		return nil, 0, fmt.Errorf("transport error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("rate limited (429)")
	case resp.StatusCode >= 500:
		return nil, 0, fmt.Errorf("server error (%d)", resp.StatusCode)
	default:
		return nil, 0, fmt.Errorf("%w: status %d: %s", ErrClientContract, resp.StatusCode, truncate(data, 200))
	}
}

func (c *Client) baseDelay() time.Duration {
	if c.cfg.BaseDelayMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.cfg.BaseDelayMS) * time.Millisecond
}

func (c *Client) maxDelay() time.Duration {
	if c.cfg.MaxDelayMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.cfg.MaxDelayMS) * time.Millisecond
}

// backoff computes min(maxDelay, baseDelay*2^attempt) with up to 25% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseDelay() << uint(attempt)
	if ceiling := c.maxDelay(); delay > ceiling || delay <= 0 {
		delay = ceiling
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

// parseRetryAfter handles the delta-seconds form of the header. The HTTP-date
// form is rare on this API and falls back to the computed backoff.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
