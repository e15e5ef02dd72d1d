// Package api implements the transports that reach the generative model:
// the guru proxy endpoint and the Gemini REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/purrfect/internal/errors"
)

// DefaultTimeout is applied when the caller supplies no cancellation
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read
const maxBodySize = 4 << 20

// NewHTTPClient creates the TLS client shared by the transports.
// Deadlines come from the request context, so the client itself has none.
func NewHTTPClient() (tls_client.HttpClient, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(0),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return httpClient, nil
}

// withDeadline enforces timeout only when ctx cannot be cancelled by the
// caller. A caller-supplied cancellable context governs on its own.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Done() != nil {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// classifyError maps a failed round trip to the error taxonomy.
// Aborts and deadlines become TimeoutError, everything else NetworkError.
func classifyError(ctx context.Context, err error, operation, endpoint string) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		return apierrors.NewTimeoutError(cause)
	}
	return apierrors.NewNetworkError(operation, endpoint, err)
}

// readBody reads at most maxBodySize bytes of a response body
func readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(body, maxBodySize))
}

// isJSON reports whether a Content-Type header names a JSON payload
func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// isSuccess reports whether status is in the 2xx range
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
