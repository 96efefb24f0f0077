package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goliatone/go-snapshot/layering"
)

// DefaultCacheSize bounds the result cache of a Hydrator.
const DefaultCacheSize = 128

// resultCache memoizes successful results by payload content. Entries are
// evicted oldest first.
type resultCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]HydrationResult
	order   []string
}

func newResultCache(limit int) *resultCache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &resultCache{limit: limit, entries: make(map[string]HydrationResult)}
}

func (c *resultCache) get(key string) (HydrationResult, bool) {
	if c == nil || key == "" {
		return HydrationResult{}, false
	}
	c.mu.Lock()
	stored, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return HydrationResult{}, false
	}
	return detach(stored), true
}

func (c *resultCache) put(key string, result HydrationResult) {
	if c == nil || key == "" {
		return
	}
	stored := detach(result)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = stored
	for len(c.order) > c.limit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// detach deep-copies result so cached entries never share state with what
// callers hold. Err is kept as is so errors.Is keeps matching sentinels.
func detach(result HydrationResult) HydrationResult {
	out := layering.Clone(result)
	out.Err = result.Err
	return out
}

// cacheKey hashes the payload together with everything else that shapes the
// result. It returns "" for payloads that cannot be encoded.
func cacheKey(data map[string]any, opts HydrationOptions, target string, generation uint64) string {
	encoded, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	hash := sha256.New()
	hash.Write(encoded)
	fmt.Fprintf(hash, "|validate=%t|strict=%t|fallback=%t|target=%s|registry=%d",
		opts.Validate, opts.Strict, opts.Fallback, target, generation)
	return hex.EncodeToString(hash.Sum(nil))
}
