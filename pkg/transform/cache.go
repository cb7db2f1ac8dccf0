package transform

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the shared program cache.
const DefaultCacheSize = 256

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type lruCache struct {
	store *lru.Cache[string, any]
}

// NewLRUCache returns a ProgramCache that evicts the least recently used
// program once size entries are held. Non-positive sizes use
// DefaultCacheSize.
func NewLRUCache(size int) ProgramCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	store, err := lru.New[string, any](size)
	if err != nil {
		// only reachable with a non-positive size
		panic(err)
	}
	return &lruCache{store: store}
}

func (c *lruCache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *lruCache) Set(key string, value any) {
	c.store.Add(key, value)
}

// cacheKey namespaces entries so engines can share one cache.
func cacheKey(engine, expression string) string {
	return engine + "\x00" + expression
}
