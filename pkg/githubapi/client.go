// Package githubapi provides a minimal client for the GitHub releases
// API: resolving a release by tag (or latest) and downloading its
// assets.
package githubapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

var (
	// ErrReleaseNotFound is returned when the repository or the requested
	// release tag does not exist (HTTP 404).
	ErrReleaseNotFound = errors.New("release not found")

	// ErrRateLimited is returned when GitHub rejects the request due to
	// rate limiting (HTTP 403/429 with an exhausted quota).
	ErrRateLimited = errors.New("github API rate limit exceeded")
)

// Release is the subset of the GitHub release object debrepo consumes.
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Prerelease bool    `json:"prerelease"`
	Draft      bool    `json:"draft"`
	Assets     []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	DownloadURL string `json:"browser_download_url"`
}

// Client talks to the GitHub releases API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets a bearer token for authenticated requests. Anonymous
// requests work but are rate limited to 60/hour.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a GitHub API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Release fetches a release by tag, or the latest non-prerelease
// release when version is "latest" or empty.
func (c *Client) Release(ctx context.Context, owner, repo, version string) (*Release, error) {
	var url string
	if version == "" || version == "latest" {
		url = fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	} else {
		url = fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, owner, repo, version)
	}

	release := &Release{}
	what := fmt.Sprintf("%s/%s@%s", owner, repo, version)
	if err := c.getJSON(ctx, url, what, release); err != nil {
		return nil, err
	}
	return release, nil
}

// Releases lists the repository's releases, newest first, the way the
// API returns them. Drafts and prereleases are included.
func (c *Client) Releases(ctx context.Context, owner, repo string) ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.baseURL, owner, repo)

	var releases []Release
	if err := c.getJSON(ctx, url, owner+"/"+repo, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

// getJSON performs an authenticated GET and decodes the response into
// v. The what string names the resource in error messages.
func (c *Client) getJSON(ctx context.Context, url, what string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", what, ErrReleaseNotFound)
	case http.StatusForbidden, http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			reset := resp.Header.Get("X-RateLimit-Reset")
			return fmt.Errorf("%w (resets at unix %s)", ErrRateLimited, reset)
		}
		return fmt.Errorf("github API: %s", resp.Status)
	default:
		return fmt.Errorf("github API: unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
