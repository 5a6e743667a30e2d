package medical

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrRequestFailed covers every way a query can fail: transport errors,
// non-2xx statuses and bodies that are not JSON.
var ErrRequestFailed = errors.New("request failed")

type Client struct {
	baseURL    string
	queryPath  string
	healthPath string
	httpClient *http.Client
	logger     *logrus.Logger
}

type ClientConfig struct {
	BaseURL    string
	QueryPath  string
	HealthPath string
	// Zero disables the client timeout.
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		queryPath:  cfg.QueryPath,
		healthPath: cfg.HealthPath,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Query posts req with the given bearer token and returns the raw JSON body.
func (c *Client) Query(ctx context.Context, token string, req QueryRequest) (QueryResponse, error) {
	var response json.RawMessage
	if err := c.makeRequest(ctx, http.MethodPost, c.queryPath, token, req, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// Ping checks that the backend answers on its unauthenticated health path.
func (c *Client) Ping(ctx context.Context) error {
	return c.makeRequest(ctx, http.MethodGet, c.healthPath, "", nil, nil)
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint, token string, payload interface{}, result *json.RawMessage) error {
	url := c.baseURL + endpoint

	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal payload: %v", ErrRequestFailed, err)
		}
		body = bytes.NewReader(jsonData)
		contentLength = len(jsonData)

		// Only log full payload for small requests to avoid spam
		if contentLength < 1000 {
			c.logger.WithFields(logrus.Fields{
				"method":       method,
				"url":          url,
				"payload_json": string(jsonData),
			}).Debug("Request payload")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrRequestFailed, err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"url":      url,
		"has_body": payload != nil,
		"size":     contentLength,
	}).Debug("Making medical API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrRequestFailed, err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"url":           url,
		"response_size": len(responseBody),
	}).Debug("Medical API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"url":           url,
			"response_body": truncate(string(responseBody), 500),
		}).Debug("Response body")
		return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	if result == nil {
		return nil
	}

	if !json.Valid(responseBody) {
		return fmt.Errorf("%w: response body is not valid JSON", ErrRequestFailed)
	}
	*result = json.RawMessage(bytes.TrimSpace(responseBody))

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
