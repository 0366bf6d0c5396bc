package feature

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/shoprec/core"
)

// CachedFeatureService 在任意 core.FeatureService（如 Feast）之上做内存 TTL 缓存，
// 减少编码路径对远程特征服务的访问。采用 LRU 淘汰。
type CachedFeatureService struct {
	next core.FeatureService

	mu           sync.RWMutex
	userFeatures map[string]*cacheEntry
	itemFeatures map[string]*cacheEntry
	maxSize      int
	defaultTTL   time.Duration
	stopCleanup  chan struct{}
	closeOnce    sync.Once
}

type cacheEntry struct {
	features   map[string]float64
	expireTime time.Time
	accessTime time.Time
}

// NewCachedFeatureService 包装一个特征服务并启动过期清理协程。
func NewCachedFeatureService(next core.FeatureService, maxSize int, defaultTTL time.Duration) *CachedFeatureService {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	c := &CachedFeatureService{
		next:         next,
		userFeatures: make(map[string]*cacheEntry),
		itemFeatures: make(map[string]*cacheEntry),
		maxSize:      maxSize,
		defaultTTL:   defaultTTL,
		stopCleanup:  make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *CachedFeatureService) Name() string { return "cached:" + c.next.Name() }

func (c *CachedFeatureService) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *CachedFeatureService) cleanExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, entry := range c.userFeatures {
		if now.After(entry.expireTime) {
			delete(c.userFeatures, id)
		}
	}
	for id, entry := range c.itemFeatures {
		if now.After(entry.expireTime) {
			delete(c.itemFeatures, id)
		}
	}
	c.evictLRU(c.userFeatures)
	c.evictLRU(c.itemFeatures)
}

// evictLRU 超过容量时淘汰最久未访问的条目。调用方须持有写锁。
func (c *CachedFeatureService) evictLRU(entries map[string]*cacheEntry) {
	for len(entries) > c.maxSize {
		var oldestID string
		var oldest time.Time
		first := true
		for id, e := range entries {
			if first || e.accessTime.Before(oldest) {
				oldestID, oldest = id, e.accessTime
				first = false
			}
		}
		delete(entries, oldestID)
	}
}

func (c *CachedFeatureService) lookup(entries map[string]*cacheEntry, id string) (map[string]float64, bool) {
	c.mu.RLock()
	entry, ok := entries[id]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expireTime) {
		return nil, false
	}
	c.mu.Lock()
	entry.accessTime = time.Now()
	c.mu.Unlock()
	return entry.features, true
}

func (c *CachedFeatureService) put(entries map[string]*cacheEntry, id string, features map[string]float64) {
	now := time.Now()
	c.mu.Lock()
	entries[id] = &cacheEntry{
		features:   features,
		expireTime: now.Add(c.defaultTTL),
		accessTime: now,
	}
	c.evictLRU(entries)
	c.mu.Unlock()
}

func (c *CachedFeatureService) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	if features, ok := c.lookup(c.userFeatures, userID); ok {
		return features, nil
	}
	features, err := c.next.GetUserFeatures(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.put(c.userFeatures, userID, features)
	return features, nil
}

func (c *CachedFeatureService) BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error) {
	result := make(map[string]map[string]float64, len(userIDs))
	missing := make([]string, 0)
	for _, id := range userIDs {
		if features, ok := c.lookup(c.userFeatures, id); ok {
			result[id] = features
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}
	fetched, err := c.next.BatchGetUserFeatures(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, features := range fetched {
		c.put(c.userFeatures, id, features)
		result[id] = features
	}
	return result, nil
}

func (c *CachedFeatureService) GetItemFeatures(ctx context.Context, itemID string) (map[string]float64, error) {
	if features, ok := c.lookup(c.itemFeatures, itemID); ok {
		return features, nil
	}
	features, err := c.next.GetItemFeatures(ctx, itemID)
	if err != nil {
		return nil, err
	}
	c.put(c.itemFeatures, itemID, features)
	return features, nil
}

func (c *CachedFeatureService) BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error) {
	result := make(map[string]map[string]float64, len(itemIDs))
	missing := make([]string, 0)
	for _, id := range itemIDs {
		if features, ok := c.lookup(c.itemFeatures, id); ok {
			result[id] = features
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}
	fetched, err := c.next.BatchGetItemFeatures(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, features := range fetched {
		c.put(c.itemFeatures, id, features)
		result[id] = features
	}
	return result, nil
}

func (c *CachedFeatureService) Close(ctx context.Context) error {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
	return c.next.Close(ctx)
}

var _ core.FeatureService = (*CachedFeatureService)(nil)
