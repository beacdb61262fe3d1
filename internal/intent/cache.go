package intent

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Veraticus/nova/internal/common"
)

// Cache remembers LLM classifications by normalized query and serves them
// to near-duplicate queries.
type Cache struct {
	bounded   *lru.Cache[string, Scores]
	entries   map[string]Scores
	logger    *slog.Logger
	dmp       *diffmatchpatch.DiffMatchPatch
	order     []string
	threshold float64
	mu        sync.Mutex
}

// NewCache creates a cache that treats queries with a similarity ratio of at
// least threshold as the same query. A positive capacity evicts the least
// recently used entry past that size; zero keeps every entry.
func NewCache(threshold float64, capacity int, logger *slog.Logger) (*Cache, error) {
	c := &Cache{
		threshold: threshold,
		logger:    common.LoggerOrDefault(logger),
		dmp:       diffmatchpatch.New(),
	}
	if capacity > 0 {
		bounded, err := lru.New[string, Scores](capacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create intent cache: %w", err)
		}
		c.bounded = bounded
	} else {
		c.entries = make(map[string]Scores)
	}
	return c, nil
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the scores for query, first by exact match then by the first
// stored query (oldest first) whose similarity clears the threshold.
func (c *Cache) Get(query string) (Scores, bool) {
	normalized := normalize(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if scores, ok := c.lookup(normalized); ok {
		c.logger.Debug("intent cache hit (exact)", "query", common.Truncate(query, 30))
		return scores, true
	}

	for _, key := range c.keys() {
		if c.similarity(normalized, key) >= c.threshold {
			scores, _ := c.lookup(key)
			c.logger.Debug("intent cache hit (similar)", "query", common.Truncate(query, 30), "matched", key)
			return scores, true
		}
	}
	return nil, false
}

// Store records scores for query.
func (c *Cache) Store(query string, scores Scores) {
	normalized := normalize(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		c.bounded.Add(normalized, scores)
	} else {
		if _, exists := c.entries[normalized]; !exists {
			c.order = append(c.order, normalized)
		}
		c.entries[normalized] = scores
	}
	c.logger.Debug("cached intent classification", "query", common.Truncate(query, 30))
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bounded != nil {
		return c.bounded.Len()
	}
	return len(c.entries)
}

// Clear removes every entry and returns how many there were.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		n := c.bounded.Len()
		c.bounded.Purge()
		return n
	}
	n := len(c.entries)
	c.entries = make(map[string]Scores)
	c.order = nil
	return n
}

func (c *Cache) lookup(key string) (Scores, bool) {
	if c.bounded != nil {
		return c.bounded.Get(key)
	}
	scores, ok := c.entries[key]
	return scores, ok
}

func (c *Cache) keys() []string {
	if c.bounded != nil {
		return c.bounded.Keys()
	}
	return c.order
}

// similarity is 2*M/T, where M counts the characters the two strings share
// in their diff and T is their combined length.
func (c *Cache) similarity(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	matches := 0
	for _, d := range c.dmp.DiffMain(a, b, false) {
		if d.Type == diffmatchpatch.DiffEqual {
			matches += utf8.RuneCountInString(d.Text)
		}
	}
	return 2 * float64(matches) / float64(total)
}
