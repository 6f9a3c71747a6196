// Package sharesight provides a client for the Sharesight API
package sharesight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jamescrowley/sharesight-importer/internal/common"
	"github.com/jamescrowley/sharesight-importer/internal/interfaces"
	"github.com/jamescrowley/sharesight-importer/internal/models"
)

const (
	DefaultBaseURL   = "https://api.sharesight.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// DefaultRetryDelay is the wait before the second attempt on a
	// gateway error; it doubles for the third.
	DefaultRetryDelay = 500 * time.Millisecond

	maxAttempts = 3

	// redirectURI is fixed for the out-of-band client-credentials flow.
	redirectURI = "urn:ietf:wg:oauth:2.0:oob"
)

// Client implements the SharesightClient interface
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	accessToken  string
	httpClient   *http.Client
	logger       *common.Logger
	limiter      *rate.Limiter
	retryDelay   time.Duration
	debugCurl    bool
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryDelay sets the initial delay between retried attempts
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

// WithDebugCurl echoes every request as a copyable curl command
func WithDebugCurl(enabled bool) ClientOption {
	return func(c *Client) {
		c.debugCurl = enabled
	}
}

// NewClient creates a new Sharesight client
func NewClient(clientID, clientSecret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		retryDelay: DefaultRetryDelay,
		logger:     common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Sharesight API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// v2 builds a v2 API URL
func (c *Client) v2(format string, args ...any) string {
	return c.baseURL + "/api/v2/" + fmt.Sprintf(format, args...)
}

// v3 builds a v3 API URL
func (c *Client) v3(format string, args ...any) string {
	return c.baseURL + "/api/v3/" + fmt.Sprintf(format, args...)
}

// Authenticate obtains an access token using client credentials. Tokens are
// valid for 30 minutes, longer than any run, so there is no refresh.
func (c *Client) Authenticate(ctx context.Context) error {
	body := map[string]string{
		"grant_type":    "client_credentials",
		"redirect_uri":  redirectURI,
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	}

	resp, err := c.request(ctx, http.MethodPost, c.baseURL+"/oauth2/token", body)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	if !resp.OK() {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    "authentication failed: " + string(resp.Body),
			Endpoint:   "/oauth2/token",
		}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token response has no access_token")
	}

	c.accessToken = token.AccessToken
	c.logger.Debug().Msg("Authenticated with Sharesight")
	return nil
}

// retryable reports whether a status signals a transient gateway failure
func retryable(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// request performs one JSON call, retrying on gateway errors with a
// doubling delay. Rejections (4xx) come back as the response, not an error.
func (c *Client) request(ctx context.Context, method, reqURL string, body any) (*models.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		resp, err := c.send(ctx, method, reqURL, payload)
		if err != nil {
			return nil, err
		}
		if !retryable(resp.StatusCode) || attempt == maxAttempts {
			return resp, nil
		}

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Str("url", reqURL).
			Dur("delay", delay).
			Msg("Gateway error, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// send performs a single rate-limited attempt
func (c *Client) send(ctx context.Context, method, reqURL string, payload []byte) (*models.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	c.logger.Debug().Str("method", method).Str("url", reqURL).Msg("Sharesight API request")
	if c.debugCurl {
		fmt.Println(curlCommand(method, reqURL, req.Header, payload))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &models.Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Method:     method,
		URL:        reqURL,
	}, nil
}

// do performs a strict call: any non-2xx status is an *APIError. When
// result is non-nil the response body is decoded into it.
func (c *Client) do(ctx context.Context, method, reqURL string, body, result any) error {
	resp, err := c.request(ctx, method, reqURL, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(resp.Body),
			Endpoint:   reqURL,
		}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Ensure Client implements SharesightClient
var _ interfaces.SharesightClient = (*Client)(nil)
