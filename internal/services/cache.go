package services

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// ProxyCache holds recent weather and country lookups keyed by the
// normalized city or country name. Both maps share one size budget.
type ProxyCache struct {
	mu              sync.RWMutex
	currentWeather  map[string]CacheItem
	countries       map[string]CacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	hits            int
	misses          int
}

func NewProxyCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *ProxyCache {
	cache := &ProxyCache{
		currentWeather:  make(map[string]CacheItem),
		countries:       make(map[string]CacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go cache.startCleanup()

	return cache
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *ProxyCache) SetCurrentWeather(city string, weather *models.CurrentWeather) {
	c.set(c.currentWeather, city, weather)
}

func (c *ProxyCache) GetCurrentWeather(city string) (*models.CurrentWeather, bool) {
	item, ok := c.get(c.currentWeather, city)
	if !ok {
		return nil, false
	}
	weather, ok := item.(*models.CurrentWeather)
	return weather, ok
}

func (c *ProxyCache) SetCountry(name string, lookup *models.CountryLookup) {
	c.set(c.countries, name, lookup)
}

func (c *ProxyCache) GetCountry(name string) (*models.CountryLookup, bool) {
	item, ok := c.get(c.countries, name)
	if !ok {
		return nil, false
	}
	lookup, ok := item.(*models.CountryLookup)
	return lookup, ok
}

func (c *ProxyCache) set(items map[string]CacheItem, name string, data interface{}) {
	if c.defaultDuration <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(name)
	if _, exists := items[key]; !exists && c.maxSize > 0 && len(c.currentWeather)+len(c.countries) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := time.Now().Add(c.defaultDuration)
	items[key] = CacheItem{Data: data, ExpiresAt: expiresAt}

	c.logger.Debug("Cached upstream response",
		zap.String("key", key),
		zap.Time("expires_at", expiresAt))
}

func (c *ProxyCache) get(items map[string]CacheItem, name string) (interface{}, bool) {
	key := cacheKey(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := items[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if time.Now().After(item.ExpiresAt) {
		delete(items, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return item.Data, true
}

func (c *ProxyCache) evictOldest() {
	var (
		oldestMap  map[string]CacheItem
		oldestKey  string
		oldestTime time.Time
	)

	for _, items := range []map[string]CacheItem{c.currentWeather, c.countries} {
		for key, item := range items {
			if oldestMap == nil || item.ExpiresAt.Before(oldestTime) {
				oldestMap = items
				oldestKey = key
				oldestTime = item.ExpiresAt
			}
		}
	}

	if oldestMap != nil {
		delete(oldestMap, oldestKey)
		c.logger.Debug("Evicted oldest cache entry", zap.String("key", oldestKey))
	}
}

func (c *ProxyCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *ProxyCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for _, items := range []map[string]CacheItem{c.currentWeather, c.countries} {
		for key, item := range items {
			if now.After(item.ExpiresAt) {
				delete(items, key)
				expiredCount++
			}
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}
}

func (c *ProxyCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}

func (c *ProxyCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"current_weather_items": len(c.currentWeather),
		"country_items":         len(c.countries),
		"hits":                  c.hits,
		"misses":                c.misses,
		"max_size":              c.maxSize,
		"default_duration":      c.defaultDuration.String(),
	}
}
