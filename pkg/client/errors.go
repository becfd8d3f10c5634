package client

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common errors returned by the client.
var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("no TBA API key: set Config.APIKey, TBA_API_KEY or API_KEY")

	// ErrInvalidArgument is returned before any request is sent for invalid
	// or mutually exclusive arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClientClosed is returned for operations after Close.
	ErrClientClosed = errors.New("client closed")

	// ErrDecode is returned when a response body is not valid JSON for the
	// requested type.
	ErrDecode = errors.New("decode response")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUpstream represents an error object in a successful response.
	ErrorClassUpstream ErrorClass = "upstream"
)

// APIError is returned when TBA answers with a non-success status or an
// error object.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Path       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("TBA %s error (status %d) for %s: %s", e.Class, e.StatusCode, e.Path, e.Message)
}

// classifyStatus categorizes a non-success status code.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUpstream
	}
}

func invalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
