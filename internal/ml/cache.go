// Package ml provides caching for classifier predictions.
package ml

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey identifies one feature row under one model version
type CacheKey struct {
	ModelVersion string
	Columns      []string
	Values       []float64
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(k.ModelVersion)
	b.WriteByte('|')
	for i, c := range k.Columns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c)
		b.WriteByte('=')
		if i < len(k.Values) {
			b.WriteString(strconv.FormatFloat(k.Values[i], 'g', -1, 64))
		}
	}
	return b.String()
}

// PredictionCache is a TTL cache of classifier predictions bounded by maxSize.
// Entries are cloned on the way in and out so callers cannot alias them.
type PredictionCache struct {
	items   *cache.Cache
	ttl     time.Duration
	maxSize int

	// writeMu serialises the size check with the insert.
	writeMu sync.Mutex
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		items:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns a copy of the cached prediction, or nil on a miss.
func (pc *PredictionCache) Get(key CacheKey) *Prediction {
	if v, found := pc.items.Get(key.String()); found {
		if pred, ok := v.(*Prediction); ok {
			pc.hits.Add(1)
			pc.publishRatio()
			return pred.clone()
		}
	}
	pc.misses.Add(1)
	pc.publishRatio()
	return nil
}

// Set stores a prediction in cache. When the cache is full, expired items
// are dropped first; if it is still full the prediction is not stored.
func (pc *PredictionCache) Set(key CacheKey, prediction *Prediction) {
	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()

	if pc.items.ItemCount() >= pc.maxSize {
		pc.items.DeleteExpired()
		if pc.items.ItemCount() >= pc.maxSize {
			return
		}
	}
	pc.items.Set(key.String(), prediction.clone(), pc.ttl)
}

// InvalidateModel removes all entries cached for a model version
func (pc *PredictionCache) InvalidateModel(modelVersion string) {
	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()

	prefix := modelVersion + "|"
	for k := range pc.items.Items() {
		if strings.HasPrefix(k, prefix) {
			pc.items.Delete(k)
		}
	}
}

// Clear flushes the entire cache and resets the counters.
func (pc *PredictionCache) Clear() {
	pc.writeMu.Lock()
	defer pc.writeMu.Unlock()

	pc.items.Flush()
	pc.hits.Store(0)
	pc.misses.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits, misses = pc.hits.Load(), pc.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}

func (pc *PredictionCache) publishRatio() {
	_, _, ratio := pc.Stats()
	CacheHitRatio.Set(ratio)
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.items.ItemCount()
}
