package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meshhq/ghcrawler/processor"
)

// Client performs the actual GitHub REST API GET a Request names, decodes
// its JSON body, and attaches rate-limit/Link header metadata so the
// processor's pagination engine and handlers have what they need.
type Client struct {
	httpClient *http.Client
	tokens     *TokenPool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client (e.g. for tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a Client drawing auth tokens from pool.
func NewClient(pool *TokenPool, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     pool,
		userAgent:  "ghcrawler",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimitError reports a 403 response caused by an exhausted rate limit,
// carrying the token's reset time so callers can sideline it.
type RateLimitError struct {
	Token   string
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Fetch performs req's HTTP GET, decoding the body into req.Document and
// copying status/Link header/rate-limit metadata onto req.Response.
// etag, if non-empty, is sent as If-None-Match; a 304 response leaves
// req.Document nil and returns (false, nil) so the caller can skip
// reprocessing.
func (c *Client) Fetch(ctx context.Context, req *processor.Request, etag string) (fetched bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return false, fmt.Errorf("fetcher: build request for %s: %w", req.URL, err)
	}

	token := c.tokens.Next()
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	httpReq.Header.Set("Accept", "application/vnd.github.v3+json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if etag != "" {
		httpReq.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("fetcher: GET %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		resetAt := parseResetHeader(resp.Header.Get("X-RateLimit-Reset"))
		c.tokens.Sideline(token, resetAt)
		return false, &RateLimitError{Token: token, ResetAt: resetAt}
	}

	req.Response = processor.ResponseMeta{
		StatusCode: resp.StatusCode,
		LinkHeader: resp.Header.Get("Link"),
		Headers:    resp.Header.Clone(),
	}

	if resp.StatusCode == http.StatusNotModified {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("fetcher: GET %s: status %d: %s", req.URL, resp.StatusCode, string(body))
	}

	req.Document, err = decodeDocument(resp.Body)
	if err != nil {
		return false, fmt.Errorf("fetcher: decode %s: %w", req.URL, err)
	}
	req.Document.Metadata.FetchedAt = time.Now().UTC()
	req.Document.Metadata.SourceURL = req.URL
	req.Document.Metadata.Type = req.Type

	return true, nil
}

// decodeDocument peeks at the first non-whitespace byte to tell a single
// JSON object apart from a top-level array (plain collection listings, e.g.
// GET /orgs/:org/repos).
func decodeDocument(r io.Reader) (*processor.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := firstNonSpace(raw)
	if trimmed == '[' {
		var arr []any
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		return processor.NewArrayDocument(arr), nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return processor.NewObjectDocument(obj), nil
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c
		}
	}
	return 0
}

func parseResetHeader(v string) time.Time {
	if v == "" {
		return time.Now().Add(time.Hour)
	}
	var unixSeconds int64
	if _, err := fmt.Sscanf(v, "%d", &unixSeconds); err != nil {
		return time.Now().Add(time.Hour)
	}
	return time.Unix(unixSeconds, 0)
}
