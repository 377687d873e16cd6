package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/euromillions/internal/models"
)

// DrawSource defines the interface for fetching historical EuroMillions draws
type DrawSource interface {
	// FetchDraws retrieves every draw the source publishes
	FetchDraws(ctx context.Context) (*FetchResult, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// FetchResult holds the draws a source produced plus the rows it had to reject.
// A rejected row never aborts the fetch.
type FetchResult struct {
	Source   string
	Draws    []models.Ticket
	Rejected []RejectedRow
}

// RejectedRow is a dataset line that failed parsing or validation
type RejectedRow struct {
	Line int
	Err  error
}

func (r RejectedRow) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
	ErrCircuitOpen          = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
