// Package ml provides HTTP client for the classifier service.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourusername/euromillions/internal/config"
	"github.com/yourusername/euromillions/internal/logger"
)

const (
	predictPath = "/predict_proba"
	healthPath  = "/health"

	retryWaitMin = 100 * time.Millisecond
	retryWaitMax = 2 * time.Second
)

// HTTPClassifier calls the classifier service over HTTP
type HTTPClassifier struct {
	client       *retryablehttp.Client
	baseURL      string
	apiKey       string
	modelVersion string
	logger       *logger.MLLogger
}

// NewHTTPClassifier creates a new HTTP client for the classifier service
func NewHTTPClassifier(cfg *config.ClassifierConfig, log *logger.MLLogger) *HTTPClassifier {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = retryWaitMin
	retryClient.RetryWaitMax = retryWaitMax
	retryClient.Logger = nil

	if log == nil {
		log = logger.NewMLLogger(logger.Discard())
	}

	return &HTTPClassifier{
		client:       retryClient,
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		apiKey:       cfg.APIKey,
		modelVersion: cfg.ModelVersion,
		logger:       log,
	}
}

// PredictRequest represents the prediction request payload
type PredictRequest struct {
	ModelVersion string      `json:"model_version,omitempty"`
	Columns      []string    `json:"columns"`
	Rows         [][]float64 `json:"rows"`
}

// PredictResponse represents the prediction response
type PredictResponse struct {
	ModelVersion  string      `json:"model_version"`
	Classes       []string    `json:"classes"`
	Probabilities [][]float64 `json:"probabilities"`
}

// PredictProbability requests the class distribution of one feature row
func (c *HTTPClassifier) PredictProbability(ctx context.Context, columns []string, values []float64) (*Prediction, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("%w: %d columns for %d values", ErrRequestRejected, len(columns), len(values))
	}

	start := time.Now()
	preds, err := c.predict(ctx, columns, [][]float64{values})
	latency := time.Since(start)
	PredictionLatency.WithLabelValues(sourceHTTP).Observe(latency.Seconds())

	if err != nil {
		c.logger.LogPredictionError(c.modelVersion, err.Error())
		return nil, err
	}

	PredictionsTotal.WithLabelValues(sourceHTTP).Inc()
	c.logger.LogPredictionRequest(preds[0].ModelVersion, len(columns), false, float64(latency.Microseconds())/1000)
	return preds[0], nil
}

func (c *HTTPClassifier) predict(ctx context.Context, columns []string, rows [][]float64) ([]*Prediction, error) {
	body, err := json.Marshal(PredictRequest{
		ModelVersion: c.modelVersion,
		Columns:      columns,
		Rows:         rows,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		ClassifierErrorsTotal.WithLabelValues("network").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrClassifierUnavailable, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		ClassifierErrorsTotal.WithLabelValues("http_error").Inc()
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d: %s", ErrClassifierUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var predResp PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		ClassifierErrorsTotal.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}

	if len(predResp.Probabilities) != len(rows) {
		ClassifierErrorsTotal.WithLabelValues("invalid_response").Inc()
		return nil, fmt.Errorf("%w: %d results for %d rows", ErrInvalidPrediction, len(predResp.Probabilities), len(rows))
	}

	out := make([]*Prediction, len(rows))
	for i, probs := range predResp.Probabilities {
		p := &Prediction{
			Classes:       predResp.Classes,
			Probabilities: probs,
			ModelVersion:  predResp.ModelVersion,
		}
		if p.ModelVersion == "" {
			p.ModelVersion = c.modelVersion
		}
		if err := p.Validate(); err != nil {
			ClassifierErrorsTotal.WithLabelValues("invalid_response").Inc()
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// HealthCheck checks classifier service health
func (c *HTTPClassifier) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}

	// Health probes are not retried
	resp, err := c.client.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrClassifierUnavailable, resp.StatusCode)
	}

	return nil
}

// ModelVersion returns the configured model version
func (c *HTTPClassifier) ModelVersion() string {
	return c.modelVersion
}

func (c *HTTPClassifier) authorize(req *retryablehttp.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// IsUnavailable reports whether err means the classifier could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrClassifierUnavailable)
}
