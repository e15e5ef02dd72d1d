package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

// GuruConfig is the explicit configuration of the guru proxy transport
type GuruConfig struct {
	// BaseURL is the origin serving /api/guru
	BaseURL string
	// ClientKey is sent as x-guru-client-key when non-empty
	ClientKey string
	// Timeout applies when the caller passes a context without cancellation
	Timeout time.Duration
}

// SendOptions overrides configuration for a single request
type SendOptions struct {
	Timeout   time.Duration
	ClientKey string
}

// GuruClient posts chat messages to the guru proxy endpoint
type GuruClient struct {
	httpClient tls_client.HttpClient
	cfg        GuruConfig
	logger     zerolog.Logger
}

// GuruOption is a function that configures the guru client
type GuruOption func(*GuruClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient tls_client.HttpClient) GuruOption {
	return func(c *GuruClient) {
		c.httpClient = httpClient
	}
}

// WithGuruLogger sets the logger used for request diagnostics
func WithGuruLogger(logger zerolog.Logger) GuruOption {
	return func(c *GuruClient) {
		c.logger = logger
	}
}

// NewGuruClient creates a new GuruClient
func NewGuruClient(cfg GuruConfig, opts ...GuruOption) (*GuruClient, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = models.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := &GuruClient{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		httpClient, err := NewHTTPClient()
		if err != nil {
			return nil, err
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the full guru URL
func (c *GuruClient) Endpoint() string {
	return c.cfg.BaseURL + models.GuruPath
}

// Send posts message with the configured defaults
func (c *GuruClient) Send(ctx context.Context, message string) (string, error) {
	return c.SendMessage(ctx, message, nil)
}

// SendMessage posts message to the guru endpoint and returns the reply.
//
// When ctx has no cancellation the client applies its own timeout; when the
// caller supplies a cancellable ctx, that ctx alone governs the request.
func (c *GuruClient) SendMessage(ctx context.Context, message string, opts *SendOptions) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apierrors.NewEmptyMessageError()
	}

	timeout := c.cfg.Timeout
	clientKey := c.cfg.ClientKey
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.ClientKey != "" {
			clientKey = opts.ClientKey
		}
	}

	ctx, cancel := withDeadline(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(models.GuruRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	if clientKey != "" {
		req.Header.Set(models.HeaderClientKey, clientKey)
	}

	start := time.Now()
	c.logger.Debug().Str("endpoint", endpoint).Bool("client_key", clientKey != "").Msg("sending guru request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = classifyError(ctx, err, "send message", endpoint)
		c.logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("guru request failed")
		return "", err
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, readErr := readBody(resp.Body)
	if readErr != nil {
		return "", classifyError(ctx, readErr, "read response", endpoint)
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("guru response received")

	return parseGuruResponse(resp.StatusCode, resp.Header.Get(models.HeaderContentType), body)
}

// parseGuruResponse normalizes a guru response into a reply or an error
func parseGuruResponse(status int, contentType string, body []byte) (string, error) {
	ok := isSuccess(status)

	if !isJSON(contentType) {
		text := string(body)
		if !ok {
			return "", apierrors.NewServerError(status, fmt.Sprintf("Unexpected response: %d %s", status, text), text)
		}
		if strings.TrimSpace(text) == "" {
			return "", apierrors.NewEmptyReplyError("")
		}
		return text, nil
	}

	// An unparsable JSON body is treated as absent
	var parsed models.GuruResponse
	if gjson.ValidBytes(body) {
		result := gjson.ParseBytes(body)
		if result.IsObject() {
			parsed.Reply = result.Get("reply").String()
			parsed.Error = result.Get("error").String()
			parsed.Detail = result.Get("detail").String()
		}
	}

	if !ok {
		message := firstNonEmpty(parsed.Error, parsed.Detail, fmt.Sprintf("Status %d", status))
		return "", apierrors.NewServerError(status, message, string(body))
	}

	if parsed.Reply == "" {
		return "", apierrors.NewEmptyReplyError(parsed.Error)
	}

	return parsed.Reply, nil
}
