package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for non-positive prices or quantities
	// and empty symbols. Never retriable.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPriceUnavailable is returned when the provider answered 2xx but the
	// price field is missing or not numeric.
	ErrPriceUnavailable = errors.New("stock price not available")
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// UpstreamError represents a failure talking to the market-data provider:
// either a non-2xx response (Status and Body are set) or a transport-level
// failure (Err wraps the cause and Status is 0).
type UpstreamError struct {
	Status int    // HTTP status code, 0 for transport failures
	Body   string // Raw response body, empty for transport failures
	Err    error  // Underlying cause
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream error: status=%d body=%s", e.Status, e.Body)
	}
	if e.Err != nil {
		return "upstream error: " + e.Err.Error()
	}
	return "upstream error"
}

func (e *UpstreamError) IsRetriable() bool {
	return true
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
