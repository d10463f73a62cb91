// Package cache provides the two bounded in-memory caches of the page
// pipeline: raw fetched page bytes and decoded page dimensions, both
// keyed by 1-based page number with FIFO-by-insertion eviction.
package cache

// Default capacities for the two caches.
const (
	DefaultPageCapacity    = 4
	DefaultMetricsCapacity = 11
)

// PageCache holds the most recently fetched raw page bytes. When an
// insert would exceed the capacity, the oldest inserted page is evicted
// first. Updating an already resident page does not change its position
// in the eviction order.
type PageCache struct {
	capacity int
	pages    map[int][]byte
	order    []int
}

// NewPageCache creates a raw page cache. A non-positive capacity falls
// back to DefaultPageCapacity.
func NewPageCache(capacity int) *PageCache {
	if capacity <= 0 {
		capacity = DefaultPageCapacity
	}
	return &PageCache{
		capacity: capacity,
		pages:    make(map[int][]byte, capacity),
	}
}

// Get returns the cached bytes for a page, or nil on a miss.
func (c *PageCache) Get(pageNumber int) []byte {
	return c.pages[pageNumber]
}

// Put stores the bytes for a page, evicting the oldest entry if needed.
func (c *PageCache) Put(pageNumber int, data []byte) {
	if _, ok := c.pages[pageNumber]; ok {
		c.pages[pageNumber] = data
		return
	}
	if len(c.pages) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.pages, oldest)
	}
	c.pages[pageNumber] = data
	c.order = append(c.order, pageNumber)
}

// Len reports the number of resident entries.
func (c *PageCache) Len() int { return len(c.pages) }

// Clear drops every entry.
func (c *PageCache) Clear() {
	c.pages = make(map[int][]byte, c.capacity)
	c.order = c.order[:0]
}

// Metrics is a page's decoded pixel dimensions.
type Metrics struct {
	Width  int
	Height int
}

// MetricsCache holds decoded page dimensions so that size queries do
// not force a re-decode. Same FIFO eviction discipline as PageCache.
type MetricsCache struct {
	capacity int
	dims     map[int]Metrics
	order    []int
}

// NewMetricsCache creates a metrics cache. A non-positive capacity
// falls back to DefaultMetricsCapacity.
func NewMetricsCache(capacity int) *MetricsCache {
	if capacity <= 0 {
		capacity = DefaultMetricsCapacity
	}
	return &MetricsCache{
		capacity: capacity,
		dims:     make(map[int]Metrics, capacity),
	}
}

// Get returns the cached dimensions for a page.
func (c *MetricsCache) Get(pageNumber int) (Metrics, bool) {
	m, ok := c.dims[pageNumber]
	return m, ok
}

// Put stores the dimensions for a page, evicting the oldest entry if
// needed.
func (c *MetricsCache) Put(pageNumber int, m Metrics) {
	if _, ok := c.dims[pageNumber]; ok {
		c.dims[pageNumber] = m
		return
	}
	if len(c.dims) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.dims, oldest)
	}
	c.dims[pageNumber] = m
	c.order = append(c.order, pageNumber)
}

// Len reports the number of resident entries.
func (c *MetricsCache) Len() int { return len(c.dims) }

// Clear drops every entry.
func (c *MetricsCache) Clear() {
	c.dims = make(map[int]Metrics, c.capacity)
	c.order = c.order[:0]
}
