package services

import (
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"go.uber.org/zap"
)

// ForecastCache holds forecast payloads keyed by rounded coordinates.
// Entries are never evicted; a lookup simply ignores one that has aged past
// the timeout.
type ForecastCache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
	hits    int
	misses  int
}

func NewForecastCache(timeout time.Duration, logger *zap.Logger) *ForecastCache {
	return &ForecastCache{
		entries: make(map[string]models.CacheEntry),
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Lookup returns a fresh payload holding at least minDays daily entries.
// Anything else counts as a miss.
func (c *ForecastCache) Lookup(coords models.Coordinates, minDays int) (*models.ForecastPayload, bool) {
	key := coords.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false
	}

	age := c.now().Sub(entry.FetchedAt)
	if age >= c.timeout {
		c.misses++
		c.logger.Debug("Cached forecast is stale",
			zap.String("key", key),
			zap.Duration("age", age))
		return nil, false
	}

	if len(entry.Payload.Daily) < minDays {
		c.misses++
		c.logger.Debug("Cached forecast covers too few days",
			zap.String("key", key),
			zap.Int("cached_days", len(entry.Payload.Daily)),
			zap.Int("wanted_days", minDays))
		return nil, false
	}

	c.hits++
	return entry.Payload, true
}

func (c *ForecastCache) Store(coords models.Coordinates, payload *models.ForecastPayload) {
	key := coords.Key()
	now := c.now()

	c.mu.Lock()
	c.entries[key] = models.CacheEntry{
		Key:       key,
		Payload:   payload,
		FetchedAt: now,
	}
	c.mu.Unlock()

	c.logger.Debug("Forecast cached",
		zap.String("key", key),
		zap.Time("fetched_at", now))
}

func (c *ForecastCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"entries": len(c.entries),
		"hits":    c.hits,
		"misses":  c.misses,
		"timeout": c.timeout.String(),
	}
}
