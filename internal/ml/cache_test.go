package ml

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{"main_sum", "lucky_sum", "is_date"}

func testPrediction() *Prediction {
	return &Prediction{
		Classes:       []string{"0", "1"},
		Probabilities: []float64{0.25, 0.75},
		ModelVersion:  "26.06.2023",
	}
}

// TestCacheKeyString tests cache key string representation
func TestCacheKeyString(t *testing.T) {
	key := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{89, 19, 1}}

	assert.Equal(t, "1.0|main_sum=89,lucky_sum=19,is_date=1", key.String())
}

// TestCacheKeyEquality tests cache key equality
func TestCacheKeyEquality(t *testing.T) {
	key1 := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{89, 19, 1}}
	key2 := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{89, 19, 1}}
	key3 := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{89, 19, 0}}
	key4 := CacheKey{ModelVersion: "2.0", Columns: testColumns, Values: []float64{89, 19, 1}}

	assert.Equal(t, key1.String(), key2.String())
	assert.NotEqual(t, key1.String(), key3.String())
	assert.NotEqual(t, key1.String(), key4.String())
}

// TestPredictionCacheSetGet tests cache Set and Get operations
func TestPredictionCacheSetGet(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{89, 19, 1}}

	assert.Nil(t, cache.Get(key))

	prediction := testPrediction()
	cache.Set(key, prediction)

	retrieved := cache.Get(key)
	require.NotNil(t, retrieved)
	assert.Equal(t, prediction, retrieved)

	// callers get their own copy
	retrieved.Probabilities[0] = 0.9
	assert.Equal(t, 0.25, cache.Get(key).Probabilities[0])
}

// TestPredictionCacheExpiration tests cache TTL expiration
func TestPredictionCacheExpiration(t *testing.T) {
	cache := NewPredictionCache(100*time.Millisecond, 100)
	defer cache.Clear()

	key := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{1, 2, 3}}
	cache.Set(key, testPrediction())
	require.NotNil(t, cache.Get(key))

	time.Sleep(150 * time.Millisecond)

	assert.Nil(t, cache.Get(key))
}

// TestPredictionCacheInvalidateModel tests invalidation by model version
func TestPredictionCacheInvalidateModel(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	defer cache.Clear()

	old1 := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{1, 2, 3}}
	old2 := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{4, 5, 6}}
	current := CacheKey{ModelVersion: "1.01", Columns: testColumns, Values: []float64{1, 2, 3}}

	cache.Set(old1, testPrediction())
	cache.Set(old2, testPrediction())
	cache.Set(current, testPrediction())

	cache.InvalidateModel("1.0")

	assert.Nil(t, cache.Get(old1))
	assert.Nil(t, cache.Get(old2))
	assert.NotNil(t, cache.Get(current))
}

// TestPredictionCacheStats tests cache statistics tracking
func TestPredictionCacheStats(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{1, 2, 3}}

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(0), misses)
	assert.Equal(t, 0.0, ratio)

	_ = cache.Get(key)
	hits, misses, ratio = cache.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.0, ratio)

	cache.Set(key, testPrediction())
	_ = cache.Get(key)
	hits, misses, ratio = cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

// TestPredictionCacheMaxSize tests cache size limit enforcement
func TestPredictionCacheMaxSize(t *testing.T) {
	maxSize := 5
	cache := NewPredictionCache(time.Hour, maxSize)
	defer cache.Clear()

	for i := 0; i < maxSize+5; i++ {
		key := CacheKey{ModelVersion: "1.0", Columns: testColumns, Values: []float64{float64(i), 0, 0}}
		cache.Set(key, testPrediction())
	}

	assert.Equal(t, maxSize, cache.ItemCount())
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) PredictProbability(ctx context.Context, columns []string, values []float64) (*Prediction, error) {
	args := m.Called(ctx, columns, values)
	if p := args.Get(0); p != nil {
		return p.(*Prediction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClassifier) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// TestCachedClassifier tests that repeated rows are served from cache
func TestCachedClassifier(t *testing.T) {
	ctx := context.Background()
	inner := &mockClassifier{}
	values := []float64{89, 19, 1}
	inner.On("PredictProbability", ctx, testColumns, values).Return(testPrediction(), nil).Once()
	inner.On("HealthCheck", ctx).Return(nil)

	cached := NewCachedClassifier(inner, NewPredictionCache(time.Hour, 10), "26.06.2023", nil)

	first, err := cached.PredictProbability(ctx, testColumns, values)
	require.NoError(t, err)
	second, err := cached.PredictProbability(ctx, testColumns, values)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NoError(t, cached.HealthCheck(ctx))
	inner.AssertExpectations(t)

	hits, misses, _ := cached.GetCacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

// TestCachedClassifierDoesNotCacheErrors tests that failures are retried on the next call
func TestCachedClassifierDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	inner := &mockClassifier{}
	values := []float64{1, 2, 3}
	inner.On("PredictProbability", ctx, testColumns, values).Return(nil, ErrClassifierUnavailable).Once()
	inner.On("PredictProbability", ctx, testColumns, values).Return(testPrediction(), nil).Once()

	cached := NewCachedClassifier(inner, NewPredictionCache(time.Hour, 10), "1.0", nil)

	_, err := cached.PredictProbability(ctx, testColumns, values)
	assert.ErrorIs(t, err, ErrClassifierUnavailable)

	p, err := cached.PredictProbability(ctx, testColumns, values)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, p.Probabilities)
	inner.AssertExpectations(t)
}
