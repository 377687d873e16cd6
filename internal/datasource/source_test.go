package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/config"
)

func testHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             2 * time.Second,
		MaxRetries:          0,
		RetryWaitMin:        time.Millisecond,
		RetryWaitMax:        5 * time.Millisecond,
		RateLimit:           1000,
		CircuitBreakerMax:   2,
		CircuitBreakerReset: time.Hour,
	}
}

func TestFileSourceFetchDraws(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draws.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0o600))

	source := NewFileSource("local", path, true)
	assert.Equal(t, "local", source.Name())
	assert.True(t, source.IsEnabled())

	result, err := source.FetchDraws(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", result.Source)
	assert.Len(t, result.Draws, 2)
	assert.Len(t, result.Rejected, 1)
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource("local", filepath.Join(t.TempDir(), "absent.csv"), true)

	_, err := source.FetchDraws(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var dsErr DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrCodeNotFound, dsErr.Code)
}

func TestFileSourceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource("local", "unused.csv", true).FetchDraws(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemoteSourceFetchDraws(t *testing.T) {
	var authHeader atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleDataset))
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	defer client.Close()

	source := NewRemoteSource(client, "remote", server.URL, "secret", true)
	result, err := source.FetchDraws(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", authHeader.Load())
	assert.Len(t, result.Draws, 2)
	assert.Len(t, result.Rejected, 1)
}

func TestRemoteSourceStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
		code     string
	}{
		{"Unauthorized", http.StatusUnauthorized, ErrAuthenticationFailed, ErrCodeAuthenticationFailed},
		{"Not found", http.StatusNotFound, ErrNotFound, ErrCodeNotFound},
		{"Rate limited", http.StatusTooManyRequests, ErrRateLimitExceeded, ErrCodeRateLimitExceeded},
		{"Bad request", http.StatusBadRequest, ErrInvalidData, ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			source := NewRemoteSource(NewRateLimitedHTTPClient(testHTTPConfig(), nil), "remote", server.URL, "", true)
			_, err := source.FetchDraws(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected))

			var dsErr DataSourceError
			require.True(t, errors.As(err, &dsErr))
			assert.Equal(t, tt.code, dsErr.Code)
		})
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleDataset))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxRetries = 3
	client := NewRateLimitedHTTPClient(cfg, nil)

	result, err := NewRemoteSource(client, "remote", server.URL, "", true).FetchDraws(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Draws, 2)
	assert.Equal(t, int32(3), hits.Load())
	assert.False(t, client.IsOpen())
}

func TestHTTPClientCircuitBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)
	source := NewRemoteSource(client, "remote", server.URL, "", true)

	for i := 0; i < 2; i++ {
		_, err := source.FetchDraws(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrServerError))
	}
	assert.True(t, client.IsOpen())

	_, err := source.FetchDraws(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPClientCircuitBreakerHalfOpen(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleDataset))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.CircuitBreakerReset = 20 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)
	source := NewRemoteSource(client, "remote", server.URL, "", true)

	for i := 0; i < 2; i++ {
		_, _ = source.FetchDraws(context.Background())
	}
	require.True(t, client.IsOpen())

	failing.Store(false)
	time.Sleep(30 * time.Millisecond)

	_, err := source.FetchDraws(context.Background())
	require.NoError(t, err)
	assert.False(t, client.IsOpen())
}

func TestHTTPClientConfigFrom(t *testing.T) {
	cfg := HTTPClientConfigFrom(config.HTTPConfig{TimeoutSeconds: 5, MaxRetries: 2, RateLimit: 0.5})
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 0.5, cfg.RateLimit)

	defaults := HTTPClientConfigFrom(config.HTTPConfig{})
	assert.Equal(t, DefaultHTTPClientConfig(), defaults)
}

func TestDataSourceFactoryCreate(t *testing.T) {
	client := NewRateLimitedHTTPClient(testHTTPConfig(), nil)

	tests := []struct {
		name        string
		factory     *Factory
		cfg         config.DataSourceConfig
		shouldError bool
	}{
		{"File", NewFactory(nil, nil), config.DataSourceConfig{Name: "f", Type: config.SourceTypeFile, Path: "draws.csv"}, false},
		{"File without path", NewFactory(nil, nil), config.DataSourceConfig{Name: "f", Type: config.SourceTypeFile}, true},
		{"Remote", NewFactory(client, nil), config.DataSourceConfig{Name: "r", Type: config.SourceTypeRemote, URL: "https://example.com/draws.csv"}, false},
		{"Remote without client", NewFactory(nil, nil), config.DataSourceConfig{Name: "r", Type: config.SourceTypeRemote, URL: "https://example.com/draws.csv"}, true},
		{"Remote without url", NewFactory(client, nil), config.DataSourceConfig{Name: "r", Type: config.SourceTypeRemote}, true},
		{"Unknown", NewFactory(client, nil), config.DataSourceConfig{Name: "u", Type: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := tt.factory.NewDrawSource(tt.cfg)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Name, source.Name())
		})
	}
}

func TestDataSourceFactoryEnabledOnly(t *testing.T) {
	factory := NewFactory(nil, nil)

	sources, err := factory.NewDrawSources(config.DataIngestionConfig{
		Sources: []config.DataSourceConfig{
			{Name: "on", Type: config.SourceTypeFile, Path: "a.csv", Enabled: true},
			{Name: "off", Type: config.SourceTypeFile, Path: "b.csv"},
		},
	})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "on", sources[0].Name())

	_, err = factory.NewDrawSources(config.DataIngestionConfig{
		Sources: []config.DataSourceConfig{{Name: "off", Type: config.SourceTypeFile, Path: "b.csv"}},
	})
	assert.Error(t, err)
}
