package api

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

// sseDataPrefix starts every payload line of a server-sent event stream
const sseDataPrefix = "data:"

// StreamContent sends a prompt and delivers the reply incrementally.
// onChunk receives each new piece of text as it arrives; the returned
// output holds the full text and all citations.
func (c *GeminiClient) StreamContent(ctx context.Context, prompt string, opts *GenerateOptions, onChunk func(string)) (*models.GenerateOutput, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apierrors.NewEmptyMessageError()
	}
	if !c.HasAPIKey() {
		return nil, apierrors.ErrMissingAPIKey
	}

	ctx, cancel := withDeadline(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.endpoint("streamGenerateContent") + "?alt=sse"
	req, err := c.newRequest(ctx, endpoint, buildRequest(prompt, opts))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err, "stream content", endpoint)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if !isSuccess(resp.StatusCode) {
		body, _ := readBody(resp.Body)
		return nil, geminiError(resp.StatusCode, body)
	}

	output, err := readStream(resp.Body, onChunk)
	if err != nil {
		if apierrors.IsServerError(err) {
			return nil, err
		}
		return nil, classifyError(ctx, err, "read stream", endpoint)
	}

	c.logger.Debug().
		Str("model", c.cfg.Model.Name).
		Int("chars", len(output.Text)).
		Dur("elapsed", time.Since(start)).
		Msg("stream finished")

	return output, nil
}

// readStream consumes an SSE body, forwarding text deltas to onChunk
func readStream(body io.Reader, onChunk func(string)) (*models.GenerateOutput, error) {
	output := &models.GenerateOutput{Sources: []models.Source{}}
	if body == nil {
		return output, nil
	}

	var text strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodySize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == "" || !gjson.Valid(data) {
			continue
		}

		event := gjson.Parse(data)
		if msg := event.Get(PathErrorMessage).String(); msg != "" {
			return nil, apierrors.NewServerError(int(event.Get(PathErrorCode).Int()), msg, data)
		}

		if delta := partsText(event.Get(PathCandidateParts)); delta != "" {
			text.WriteString(delta)
			if onChunk != nil {
				onChunk(delta)
			}
		}
		output.Sources = append(output.Sources, groundingSources(event.Get(PathGroundingChunks))...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	output.Text = text.String()
	return output, nil
}
