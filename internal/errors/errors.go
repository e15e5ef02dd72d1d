// Package errors provides the error taxonomy for the guru transports.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyMessage    = errors.New("Message is empty")
	ErrTimeout         = errors.New("Request timed out")
	ErrEmptyReply      = errors.New("Empty reply from server")
	ErrMissingAPIKey   = errors.New("API Key is missing")
	ErrInvalidResponse = errors.New("invalid response format")
)

// EmptyMessageError is returned when a caller tries to send a blank message
type EmptyMessageError struct{}

func (e *EmptyMessageError) Error() string {
	return ErrEmptyMessage.Error()
}

// Is allows comparison with sentinel errors
func (e *EmptyMessageError) Is(target error) bool {
	if target == ErrEmptyMessage {
		return true
	}
	_, ok := target.(*EmptyMessageError)
	return ok
}

// NewEmptyMessageError creates a new EmptyMessageError
func NewEmptyMessageError() *EmptyMessageError {
	return &EmptyMessageError{}
}

// TimeoutError represents a request that was aborted, either because the
// deadline passed or because the caller cancelled it.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string {
	return ErrTimeout.Error()
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrTimeout {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(cause error) *TimeoutError {
	return &TimeoutError{Cause: cause}
}

// ServerError represents a non-success HTTP status from the server.
// Message is what the user sees; Body keeps the raw payload for diagnostics.
type ServerError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Status %d", e.StatusCode)
	}
	return e.Message
}

// NewServerError creates a new ServerError
func NewServerError(statusCode int, message, body string) *ServerError {
	return &ServerError{
		StatusCode: statusCode,
		Message:    message,
		Body:       body,
	}
}

// EmptyReplyError represents a success status carrying no usable reply
type EmptyReplyError struct {
	Message string
}

func (e *EmptyReplyError) Error() string {
	if e.Message == "" {
		return ErrEmptyReply.Error()
	}
	return e.Message
}

// Is allows comparison with sentinel errors
func (e *EmptyReplyError) Is(target error) bool {
	if target == ErrEmptyReply {
		return true
	}
	_, ok := target.(*EmptyReplyError)
	return ok
}

// NewEmptyReplyError creates a new EmptyReplyError
func NewEmptyReplyError(message string) *EmptyReplyError {
	return &EmptyReplyError{Message: message}
}

// NetworkError represents a transport-level failure (DNS, refused
// connection, reset, unreadable body).
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("network error during %s", e.Operation)
	}
	return e.Cause.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{
		Operation: operation,
		Endpoint:  endpoint,
		Cause:     cause,
	}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// IsTimeoutError reports whether err is, or wraps, a TimeoutError
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsNetworkError reports whether err is, or wraps, a NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServerError reports whether err is, or wraps, a ServerError
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsEmptyReplyError reports whether err is, or wraps, an EmptyReplyError
func IsEmptyReplyError(err error) bool {
	var ee *EmptyReplyError
	return errors.As(err, &ee)
}

// IsEmptyMessageError reports whether err is, or wraps, an EmptyMessageError
func IsEmptyMessageError(err error) bool {
	return errors.Is(err, ErrEmptyMessage)
}

// IsKnown reports whether err belongs to the transport taxonomy.
// Errors outside it are shown to the user with a generic message.
func IsKnown(err error) bool {
	return IsTimeoutError(err) ||
		IsNetworkError(err) ||
		IsServerError(err) ||
		IsEmptyReplyError(err) ||
		IsEmptyMessageError(err) ||
		errors.Is(err, ErrMissingAPIKey)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint a NetworkError was raised for
func GetEndpoint(err error) string {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Endpoint
	}
	return ""
}

// GetResponseBody returns the raw body kept on a ServerError.
// The body is omitted when it only repeats the message.
func GetResponseBody(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Body != se.Message {
		return se.Body
	}
	return ""
}
