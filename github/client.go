package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Nethaiah/commitlens/logger"
)

// ErrUpstreamUnavailable marks a non-success or malformed response
// from the GitHub API. The core never retries; callers may wrap calls
// in their own retry policy.
var ErrUpstreamUnavailable = fmt.Errorf("github upstream unavailable")

const (
	apiVersion = "2022-11-28"
	userAgent  = "CommitLens-App"
)

// RateLimit represents GitHub's rate limit information
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Client represents a GitHub API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    *url.URL
}

// CommitSummary is the REST commit-list item shape.
type CommitSummary struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  *struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
		Committer *struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

func NewClient(token string) *Client {
	baseURL, _ := url.Parse("https://api.github.com")
	logger.Info("Initializing GitHub client", zap.String("base_url", baseURL.String()))
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
}

// FetchRecentCommits fetches up to perPage recent commits of a
// repository's default branch via the REST commit list.
func (c *Client) FetchRecentCommits(ctx context.Context, owner, name string, perPage int) ([]CommitSummary, error) {
	if perPage <= 0 {
		perPage = 10
	}

	path := fmt.Sprintf("/repos/%s/%s/commits", owner, name)
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	q := reqURL.Query()
	q.Set("per_page", strconv.Itoa(perPage))
	reqURL.RawQuery = q.Encode()

	logger.Info("Fetching recent commits",
		zap.String("owner", owner),
		zap.String("name", name),
		zap.Int("per_page", perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Failed to fetch commits",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", name))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.handleRateLimit(resp); err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		logger.Error("Failed to fetch commits",
			zap.Int("status_code", resp.StatusCode),
			zap.String("owner", owner),
			zap.String("name", name))
		return nil, fmt.Errorf("%w: status code %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var commits []CommitSummary
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		logger.Error("Failed to decode commits response",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("name", name))
		return nil, fmt.Errorf("%w: decode commits: %v", ErrUpstreamUnavailable, err)
	}

	return commits, nil
}

// parseRateLimit parses rate limit information from response headers
func parseRateLimit(resp *http.Response) RateLimit {
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Unix(reset, 0),
	}
}

// handleRateLimit surfaces an exhausted rate limit as an upstream
// failure. All calls here are request scoped, so waiting out the reset
// window would block the caller's request; the reset time is logged
// and carried in the error instead.
func (c *Client) handleRateLimit(resp *http.Response) error {
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0" {
		resetTime, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
		reset := time.Unix(resetTime, 0)
		logger.Warn("Rate limit exceeded",
			zap.Int("limit", parseRateLimit(resp).Limit),
			zap.Time("reset_time", reset))
		return fmt.Errorf("%w: rate limit exceeded, resets at %s",
			ErrUpstreamUnavailable, reset.UTC().Format(time.RFC3339))
	}
	return nil
}
