// Package api is the REST client for the Pulse platform. It is consumed
// by the session store for auth operations and by commands that refresh
// the cached user and company.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/styrcan/pulse/internal/errors"
)

// Client is the Pulse platform API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a new platform API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// doRequest performs an HTTP request with authentication and a request ID.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAPIRequestFailed, "marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequestFailed, "create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequestFailed, "perform request", err)
	}

	return resp, nil
}

// errorResponse is the API's error payload shape.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseResponse decodes the response body into target, converting non-2xx
// statuses into coded errors.
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		message := ""
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				message = errResp.Error
			} else if errResp.Message != "" {
				message = errResp.Message
			}
		}
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return errors.New(errors.ErrCodeAPIUnauthorized, message)
		case resp.StatusCode >= 500:
			return errors.New(errors.ErrCodeAPIServerError, message)
		default:
			return errors.New(errors.ErrCodeAPIRequestFailed, message)
		}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(errors.ErrCodeAPIBadResponse, "decode response", err)
		}
	}

	return nil
}
