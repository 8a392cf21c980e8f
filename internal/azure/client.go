// Package azure is a client for the Azure DevOps test-management REST API:
// listing test plan suites, listing test points, and patching point
// outcomes. It is the tool's only remote surface.
package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultAPIVersion is the api-version query parameter sent when the client
// is built without an explicit one.
const defaultAPIVersion = "7.1"

// Client is a high-level client for one Azure DevOps project's test
// management APIs. Authentication is HTTP basic with an empty user and a
// personal access token, the scheme the service expects for PATs.
type Client struct {
	baseURL    string
	project    string
	token      string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
	apiVersion string
}

// New creates a Client for the given organization URL and project. The
// token is sent as a basic-auth password on every request.
func New(organizationURL, project, token string, opts ...Option) (*Client, error) {
	if organizationURL == "" {
		return nil, fmt.Errorf("azure: organization URL is required")
	}
	if project == "" {
		return nil, fmt.Errorf("azure: project is required")
	}
	organizationURL = strings.TrimSuffix(organizationURL, "/")

	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	apiVersion := cfg.apiVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Client{
		baseURL:    organizationURL,
		project:    project,
		token:      token,
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		cfg.timeout = d
		return nil
	}
}

// WithAPIVersion pins the api-version query parameter.
func WithAPIVersion(v string) Option {
	return func(cfg *clientConfig) error {
		cfg.apiVersion = v
		return nil
	}
}

// apiURL builds {org}/{project}/_apis/{path}?api-version={v}.
func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/%s/_apis/%s?api-version=%s",
		c.baseURL, url.PathEscape(c.project), path, url.QueryEscape(c.apiVersion))
}

// doJSON executes an HTTP request and decodes the JSON response into dst.
// If the response has an error status, it returns an *APIError.
func (c *Client) doJSON(ctx context.Context, method, u, operation string, body io.Reader, dst any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.SetBasicAuth("", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.InfoContext(ctx, "API request", "operation", operation, "method", method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var errRS errorRS
		if json.Unmarshal(respBody, &errRS) == nil && errRS.Message != "" {
			return newAPIError(operation, resp.StatusCode, errRS.TypeKey, errRS.Message)
		}
		msg := string(respBody)
		if msg == "" {
			msg = resp.Status
		}
		return newAPIError(operation, resp.StatusCode, "", msg)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}
