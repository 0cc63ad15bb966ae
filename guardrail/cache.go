package guardrail

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"time"

	"github.com/shaonidutta/converge-ai/domain"
)

// cacheEntry pairs a cached result with its expiry.
type cacheEntry struct {
	result  domain.GuardrailResult
	expires time.Time
}

// Cache memoizes (guardrail_name, text_hash, context_subset) → result
// with a TTL, per §4.5. Safe for stale reads, so a plain mutex-guarded
// map is enough; no need for the resilience package here.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func cacheKey(guardrailName, text, userID string) string {
	h := sha1.Sum([]byte(text))
	return guardrailName + "|" + userID + "|" + hex.EncodeToString(h[:])
}

func (c *Cache) Get(guardrailName, text, userID string) (domain.GuardrailResult, bool) {
	if c == nil {
		return domain.GuardrailResult{}, false
	}
	key := cacheKey(guardrailName, text, userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return domain.GuardrailResult{}, false
	}
	return entry.result, true
}

func (c *Cache) Set(guardrailName, text, userID string, result domain.GuardrailResult) {
	if c == nil {
		return
	}
	key := cacheKey(guardrailName, text, userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, expires: time.Now().Add(c.ttl)}
}
