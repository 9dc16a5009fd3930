package relay

import (
	"sync"
	"time"

	"relay_bot/internal/telegram/models"
)

type ruleCacheEntry struct {
	rules   []*models.ForwardingRule
	expires time.Time
}

// ruleCache 规则查询的 TTL 缓存
// nil 实例等同于关闭缓存，所有方法对 nil 接收者安全
type ruleCache struct {
	mu     sync.RWMutex
	ttl    time.Duration
	values map[int64]ruleCacheEntry
}

func newRuleCache(ttl time.Duration) *ruleCache {
	if ttl <= 0 {
		return nil
	}
	return &ruleCache{
		ttl:    ttl,
		values: make(map[int64]ruleCacheEntry),
	}
}

func (c *ruleCache) Get(sourceKey int64) ([]*models.ForwardingRule, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.values[sourceKey]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.values, sourceKey)
		c.mu.Unlock()
		return nil, false
	}

	return entry.rules, true
}

func (c *ruleCache) Set(sourceKey int64, rules []*models.ForwardingRule) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.values[sourceKey] = ruleCacheEntry{
		rules:   rules,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Delete 丢弃单个源的缓存条目（规则变更后调用）
func (c *ruleCache) Delete(sourceKey int64) {
	if c == nil {
		return
	}

	c.mu.Lock()
	delete(c.values, sourceKey)
	c.mu.Unlock()
}
