package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/angelospk/subfinder/pkg/core/errors"
	"github.com/google/go-querystring/query"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 20 * time.Second

// StatusError is returned for a non-2xx response. It unwraps to the provider
// sentinel matching the status code, if any.
type StatusError struct {
	StatusCode int
	Body       string
	sentinel   error
}

func (e *StatusError) Error() string {
	if len(e.Body) > 200 {
		return fmt.Sprintf("api request failed: status %d, body: %s...", e.StatusCode, e.Body[:200])
	}
	return fmt.Sprintf("api request failed: status %d, body: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return e.sentinel }

// sentinelFor maps the status codes the OpenSubtitles services use.
func sentinelFor(code int) error {
	switch {
	case code == http.StatusUnauthorized:
		return errors.ErrUnauthorized
	case code == http.StatusForbidden:
		return errors.ErrForbidden
	case code == http.StatusNotFound:
		return errors.ErrNotFound
	case code == http.StatusNotAcceptable || code == 407:
		return errors.ErrDownloadLimit
	case code == http.StatusTooManyRequests:
		return errors.ErrRateLimited
	case code >= 500:
		return errors.ErrServiceUnavailable
	}
	return nil
}

// Client manages making HTTP requests to the API.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	mu         sync.RWMutex // Protects baseURL and authToken
	authToken  *string
}

// New creates a new internal HTTP client.
func New(baseURL, apiKey, userAgent string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout replaces the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.httpClient.Timeout = d
	}
}

// SetBaseURL updates the base URL used for requests.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
}

// SetAuthToken updates the authentication token. Nil clears it.
func (c *Client) SetAuthToken(token *string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// HasAuthToken reports whether requests carry a bearer token.
func (c *Client) HasAuthToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken != nil && *c.authToken != ""
}

// Get makes a GET request. params is encoded with go-querystring.
func (c *Client) Get(ctx context.Context, path string, params interface{}, target interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, params, nil, target)
}

// Post makes a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}, target interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, target)
}

// Delete makes a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, target interface{}) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, target)
}

// Fetch downloads an absolute URL, such as a temporary download link, and
// returns the raw body.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.do(req)
}

func (c *Client) doRequest(ctx context.Context, method, path string, params interface{}, body interface{}, target interface{}) error {
	c.mu.RLock()
	currentBaseURL := c.baseURL
	currentToken := c.authToken
	c.mu.RUnlock()

	fullURL, err := url.Parse(currentBaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	fullURL.Path += path // Assumes baseURL doesn't end with / and path starts with /

	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query parameters: %w", err)
		}
		// Encode sorts by key, which the API requires to avoid redirects.
		fullURL.RawQuery = v.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if currentToken != nil && *currentToken != "" {
		req.Header.Set("Authorization", "Bearer "+*currentToken)
	}

	respBodyBytes, err := c.do(req)
	if err != nil {
		return err
	}

	if target != nil && len(respBodyBytes) > 0 {
		if err := json.Unmarshal(respBodyBytes, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(respBodyBytes),
			sentinel:   sentinelFor(resp.StatusCode),
		}
	}
	return respBodyBytes, nil
}
