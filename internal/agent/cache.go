package agent

import (
	"sync"

	"datachat-backend/internal/db"
)

// Cache reuses agents across interactions. An agent's identity is the pair
// (database path, API key); asking with the same pair returns the cached
// agent, while a changed database or credential builds a fresh one. Entries
// for a path must be invalidated when the session connects elsewhere, since
// a cached agent carries a stale schema context and a closed handle.
type Cache struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewCache creates an empty agent cache.
func NewCache() *Cache {
	return &Cache{agents: make(map[string]*Agent)}
}

func cacheKey(path, apiKey string) string {
	return path + "\x00" + apiKey
}

// Get returns the cached agent for the database and config, constructing and
// caching one on miss. Construction errors are not cached.
func (c *Cache) Get(database *db.Database, cfg Config) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if database == nil {
		return nil, ErrNotConnected
	}

	key := cacheKey(database.Path(), cfg.APIKey)

	c.mu.RLock()
	cached, ok := c.agents[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.agents[key]; ok {
		return cached, nil
	}

	agent, err := New(cfg, database)
	if err != nil {
		return nil, err
	}
	c.agents[key] = agent
	return agent, nil
}

// Invalidate drops every cached agent bound to the given database path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.agents {
		if keyPath(key) == path {
			delete(c.agents, key)
		}
	}
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents = make(map[string]*Agent)
}

// Len reports the number of cached agents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.agents)
}

func keyPath(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i]
		}
	}
	return key
}
