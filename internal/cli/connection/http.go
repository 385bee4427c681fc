package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/pagegate/internal/infra/buildinfo"
	"github.com/yndnr/pagegate/pkg/digest"
)

// DefaultTimeout bounds one HTTP exchange.
const DefaultTimeout = 30 * time.Second

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Header     http.Header
	Body       []byte
}

// HTTPClient sends requests to the page server, answering Digest challenges
// when credentials are configured.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	auth    *digest.Authorizer
}

// NewHTTPClient creates a new HTTP client. An empty username disables
// authentication.
func NewHTTPClient(server, username, password string) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	if username != "" {
		c.auth = digest.NewAuthorizer(username, password)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, "")
}

// Post performs a POST request.
func (c *HTTPClient) Post(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}
	return c.Do(ctx, http.MethodPost, path, body, contentType)
}

// Do sends one request. A 401 carrying a Digest challenge is answered once
// when credentials are configured; later requests reuse the challenge with
// an increasing nonce count.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body []byte, contentType string) (*Response, error) {
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || c.auth == nil {
		return resp, err
	}

	challenge, err := digest.ParseChallenge(resp.Header.Get("WWW-Authenticate"))
	if err != nil {
		return resp, nil
	}
	c.auth.SetChallenge(challenge)
	return c.send(ctx, method, path, body, contentType)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body []byte, contentType string) (*Response, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "pagegate-cli/"+buildinfo.Get().Version)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.auth != nil && c.auth.Ready() {
		value, err := c.auth.Authorize(method, req.URL.RequestURI())
		if err != nil {
			return nil, fmt.Errorf("authorize: %w", err)
		}
		req.Header.Set("Authorization", value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// ParseResponse decodes a JSON response body into target.
// Error statuses are turned into errors, using the ops error body when present.
func ParseResponse(resp *Response, target any) error {
	if resp.StatusCode >= 400 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(resp.Body, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%s (status %d)", errResp.Message, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if target != nil {
		if err := json.Unmarshal(resp.Body, target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
