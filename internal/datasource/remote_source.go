package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDatasetBytes caps the remote dataset body
const maxDatasetBytes = 32 << 20

// RemoteSource downloads the draw dataset as CSV over HTTP
type RemoteSource struct {
	httpClient *RateLimitedHTTPClient
	name       string
	url        string
	apiKey     string
	enabled    bool
}

// NewRemoteSource creates a new remote draw source
func NewRemoteSource(httpClient *RateLimitedHTTPClient, name, url, apiKey string, enabled bool) *RemoteSource {
	return &RemoteSource{
		httpClient: httpClient,
		name:       name,
		url:        url,
		apiKey:     apiKey,
		enabled:    enabled,
	}
}

// FetchDraws downloads and parses the dataset
func (s *RemoteSource) FetchDraws(ctx context.Context) (*FetchResult, error) {
	headers := map[string]string{"Accept": "text/csv"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	resp, err := s.httpClient.Get(ctx, s.url, headers)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, NewDataSourceError(s.name, ErrCodeNetworkError, "request failed", fmt.Errorf("%w: %w", ErrNetworkError, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(s.name, resp); err != nil {
		return nil, err
	}

	return NewDrawCSVParser(s.name).Parse(io.LimitReader(resp.Body, maxDatasetBytes))
}

func checkStatus(source string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewDataSourceError(source, ErrCodeAuthenticationFailed, resp.Status, ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(source, ErrCodeNotFound, resp.Status, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, resp.Status, ErrRateLimitExceeded)
	case resp.StatusCode >= 500:
		return NewDataSourceError(source, ErrCodeServerError, resp.Status, ErrServerError)
	default:
		return NewDataSourceError(source, ErrCodeInvalidData, resp.Status, ErrInvalidData)
	}
}

// Name returns the source name
func (s *RemoteSource) Name() string {
	return s.name
}

// IsEnabled returns whether the source is enabled
func (s *RemoteSource) IsEnabled() bool {
	return s.enabled
}
