// Package ml provides cached classifier implementation.
package ml

import (
	"context"

	"github.com/yourusername/euromillions/internal/logger"
)

// CachedClassifier wraps a Classifier with prediction caching
type CachedClassifier struct {
	client       Classifier
	cache        *PredictionCache
	modelVersion string
	logger       *logger.MLLogger
}

// NewCachedClassifier creates a new cached classifier. Entries are keyed by
// modelVersion so a model upgrade never serves stale predictions.
func NewCachedClassifier(client Classifier, cache *PredictionCache, modelVersion string, log *logger.MLLogger) *CachedClassifier {
	if log == nil {
		log = logger.NewMLLogger(logger.Discard())
	}
	return &CachedClassifier{
		client:       client,
		cache:        cache,
		modelVersion: modelVersion,
		logger:       log,
	}
}

// PredictProbability retrieves a prediction with caching
func (c *CachedClassifier) PredictProbability(ctx context.Context, columns []string, values []float64) (*Prediction, error) {
	key := CacheKey{ModelVersion: c.modelVersion, Columns: columns, Values: values}

	if cached := c.cache.Get(key); cached != nil {
		c.logger.WithField("cache_key", key.String()).Debug("Cache hit for prediction")
		PredictionsTotal.WithLabelValues(sourceCache).Inc()
		c.logger.LogPredictionRequest(cached.ModelVersion, len(columns), true, 0)
		return cached, nil
	}

	c.logger.Debug("Cache miss, calling classifier")
	result, err := c.client.PredictProbability(ctx, columns, values)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, result)
	return result, nil
}

// HealthCheck delegates to the wrapped classifier
func (c *CachedClassifier) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// ClearCache clears all cached predictions
func (c *CachedClassifier) ClearCache() {
	c.cache.Clear()
}

// GetCacheStats returns cache statistics
func (c *CachedClassifier) GetCacheStats() (hits, misses uint64, hitRatio float64) {
	return c.cache.Stats()
}
