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

// Response paths inside a generateContent payload
const (
	PathCandidateParts  = "candidates.0.content.parts"
	PathGroundingChunks = "candidates.0.groundingMetadata.groundingChunks"
	PathFinishReason    = "candidates.0.finishReason"
	PathBlockReason     = "promptFeedback.blockReason"
	PathErrorCode       = "error.code"
	PathErrorMessage    = "error.message"
)

// GeminiConfig is the explicit configuration of the direct backend
type GeminiConfig struct {
	APIKey  string
	Model   models.Model
	BaseURL string
	Timeout time.Duration
}

// Part is a piece of message content
type Part struct {
	Text string `json:"text"`
}

// Content is one message in a generateContent request
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Tool enables a server-side capability for the request
type Tool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

// GenerateRequest is the generateContent request body
type GenerateRequest struct {
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Contents          []Content `json:"contents"`
	Tools             []Tool    `json:"tools,omitempty"`
}

// GenerateOptions contains options for content generation
type GenerateOptions struct {
	SystemInstruction string
	History           []Content // previous turns, oldest first
	GoogleSearch      bool      // ground the answer with Google Search
}

// GeminiClient calls the Gemini REST API directly
type GeminiClient struct {
	httpClient tls_client.HttpClient
	cfg        GeminiConfig
	logger     zerolog.Logger
}

// GeminiOption is a function that configures the Gemini client
type GeminiOption func(*GeminiClient)

// WithGeminiHTTPClient replaces the underlying HTTP client
func WithGeminiHTTPClient(httpClient tls_client.HttpClient) GeminiOption {
	return func(c *GeminiClient) {
		c.httpClient = httpClient
	}
}

// WithGeminiLogger sets the logger used for request diagnostics
func WithGeminiLogger(logger zerolog.Logger) GeminiOption {
	return func(c *GeminiClient) {
		c.logger = logger
	}
}

// NewGeminiClient creates a new GeminiClient. A missing API key is not an
// error here; calls fail with ErrMissingAPIKey so callers can degrade.
func NewGeminiClient(cfg GeminiConfig, opts ...GeminiOption) (*GeminiClient, error) {
	if cfg.Model.Name == "" {
		cfg.Model = models.DefaultModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = models.EndpointGeminiBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := &GeminiClient{
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

// HasAPIKey reports whether the client can make calls
func (c *GeminiClient) HasAPIKey() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// GetModel returns the configured model
func (c *GeminiClient) GetModel() models.Model {
	return c.cfg.Model
}

func (c *GeminiClient) endpoint(method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.cfg.BaseURL, c.cfg.Model.Name, method)
}

// buildRequest assembles the request body for prompt
func buildRequest(prompt string, opts *GenerateOptions) GenerateRequest {
	req := GenerateRequest{}
	if opts != nil {
		if opts.SystemInstruction != "" {
			req.SystemInstruction = &Content{Parts: []Part{{Text: opts.SystemInstruction}}}
		}
		req.Contents = append(req.Contents, opts.History...)
		if opts.GoogleSearch {
			req.Tools = []Tool{{GoogleSearch: &struct{}{}}}
		}
	}
	req.Contents = append(req.Contents, Content{
		Role:  string(models.RoleUser),
		Parts: []Part{{Text: prompt}},
	})
	return req
}

// newRequest creates an authenticated POST request for the given url
func (c *GeminiClient) newRequest(ctx context.Context, url string, body GenerateRequest) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set(models.HeaderGeminiKey, c.cfg.APIKey)
	return req, nil
}

// GenerateContent sends a prompt to Gemini and returns the text and citations
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, opts *GenerateOptions) (*models.GenerateOutput, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apierrors.NewEmptyMessageError()
	}
	if !c.HasAPIKey() {
		return nil, apierrors.ErrMissingAPIKey
	}

	ctx, cancel := withDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.endpoint("generateContent")
	req, err := c.newRequest(ctx, endpoint, buildRequest(prompt, opts))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err, "generate content", endpoint)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := readBody(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, err, "read response", endpoint)
	}

	c.logger.Debug().
		Str("model", c.cfg.Model.Name).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("generate content finished")

	if !isSuccess(resp.StatusCode) {
		return nil, geminiError(resp.StatusCode, body)
	}

	return parseGenerateResponse(body)
}

// geminiError converts an error payload into a ServerError
func geminiError(status int, body []byte) error {
	message := ""
	if gjson.ValidBytes(body) {
		message = gjson.GetBytes(body, PathErrorMessage).String()
	}
	if message == "" {
		message = fmt.Sprintf("Status %d", status)
	}
	return apierrors.NewServerError(status, message, string(body))
}

// parseGenerateResponse extracts text and grounding sources from a response
func parseGenerateResponse(body []byte) (*models.GenerateOutput, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}
	parsed := gjson.ParseBytes(body)

	if reason := parsed.Get(PathBlockReason).String(); reason != "" {
		return nil, apierrors.NewEmptyReplyError(fmt.Sprintf("Prompt blocked: %s", reason))
	}

	return &models.GenerateOutput{
		Text:    partsText(parsed.Get(PathCandidateParts)),
		Sources: groundingSources(parsed.Get(PathGroundingChunks)),
	}, nil
}

// partsText concatenates the text of every part
func partsText(parts gjson.Result) string {
	var sb strings.Builder
	parts.ForEach(func(_, part gjson.Result) bool {
		sb.WriteString(part.Get("text").String())
		return true
	})
	return sb.String()
}

// groundingSources keeps web chunks that carry both a uri and a title
func groundingSources(chunks gjson.Result) []models.Source {
	sources := []models.Source{}
	chunks.ForEach(func(_, chunk gjson.Result) bool {
		web := chunk.Get("web")
		uri := web.Get("uri").String()
		title := web.Get("title").String()
		if uri == "" || title == "" {
			return true
		}
		sources = append(sources, models.Source{URI: uri, Title: title})
		return true
	})
	return sources
}
