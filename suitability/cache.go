package suitability

import "sync"

// CacheKey identifies the inputs a matrix was computed from.
type CacheKey struct {
	SpeciesVersion uint64
	TileVersion    uint64
	Turn           int
}

// Cache holds the most recent score matrix. It is owned by the caller and
// passed to whatever needs scores; there is no process-wide instance.
type Cache struct {
	mu     sync.Mutex
	key    CacheKey
	matrix *Matrix
	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached matrix if it was stored under key.
func (c *Cache) Get(key CacheKey) (*Matrix, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.matrix == nil || c.key != key {
		return nil, false
	}
	return c.matrix, true
}

// Put stores m under key, replacing any previous entry.
func (c *Cache) Put(key CacheKey, m *Matrix) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
	c.matrix = m
}

// Invalidate drops the cached matrix.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matrix = nil
}

// GetOrCompute returns the matrix for key, calling compute on a miss.
func (c *Cache) GetOrCompute(key CacheKey, compute func() (*Matrix, error)) (*Matrix, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.matrix != nil && c.key == key {
		c.hits++
		return c.matrix, nil
	}
	c.misses++
	m, err := compute()
	if err != nil {
		return nil, err
	}
	c.key = key
	c.matrix = m
	return m, nil
}

// Stats returns the hit and miss counts of GetOrCompute.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
