package treesitter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cacheCapacity is the fixed per-language LRU capacity.
const cacheCapacity = 5

// cacheEntry owns one parsed tree. refs counts the cache's own slot (while
// not evicted) plus every outstanding TreeRef; the native tree is closed
// once evicted and refs reaches zero.
type cacheEntry struct {
	languageID string
	source     string
	tree       *tree_sitter.Tree
	refs       int
	evicted    bool
}

// TreeRef is a counted reference to a cached parse tree. Every ref must be
// disposed exactly once, on every exit path; the underlying native tree
// outlives cache eviction for as long as refs are held.
type TreeRef struct {
	cache    *Cache
	entry    *cacheEntry
	disposed bool
}

// Tree returns the underlying parse tree. The tree is valid until Dispose.
func (r *TreeRef) Tree() *tree_sitter.Tree { return r.entry.tree }

// Source returns the exact source text the tree was parsed from.
func (r *TreeRef) Source() string { return r.entry.source }

// Dispose releases the reference. Disposing twice is a programming error
// and panics.
func (r *TreeRef) Dispose() {
	if r.disposed {
		panic("treesitter: TreeRef disposed twice")
	}
	r.disposed = true
	r.cache.release(r.entry)
}

// Cache is a per-language LRU of parse trees keyed by exact source text.
// Repeated parses of identical text share one tree via counted references.
type Cache struct {
	registry *Registry
	logger   *slog.Logger

	mu        sync.Mutex
	capacity  int
	languages map[string][]*cacheEntry // LRU order, most recent last
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets the cache's logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

// withCacheCapacity overrides the LRU capacity, for tests.
func withCacheCapacity(n int) CacheOption {
	return func(c *Cache) { c.capacity = n }
}

// NewCache creates a parse cache backed by the given registry.
func NewCache(registry *Registry, opts ...CacheOption) *Cache {
	c := &Cache{
		registry:  registry,
		logger:    slog.Default(),
		capacity:  cacheCapacity,
		languages: make(map[string][]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the grammar registry backing this cache.
func (c *Cache) Registry() *Registry { return c.registry }

// Parse returns a counted reference to the parse tree for (languageID,
// source), reusing a cached tree when the source matches exactly. An
// unsupported language returns (nil, nil). The caller must dispose the
// returned reference.
func (c *Cache) Parse(ctx context.Context, languageID, source string) (*TreeRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if ref := c.lookupLocked(languageID, source); ref != nil {
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	// Grammar load is the slow, possibly concurrent-with-others path.
	lang, err := c.registry.Language(languageID)
	if err != nil {
		return nil, fmt.Errorf("loading grammar %q: %w", languageID, err)
	}
	if lang == nil {
		return nil, nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("setting language %q: %w", languageID, err)
	}
	tree := parser.Parse([]byte(source), nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	// A concurrent caller may have parsed the same source while this one
	// waited on the grammar. Keep the winner; the fresh tree has no other
	// holders, so closing it here is safe.
	if ref := c.lookupLocked(languageID, source); ref != nil {
		tree.Close()
		return ref, nil
	}

	entry := &cacheEntry{
		languageID: languageID,
		source:     source,
		tree:       tree,
		refs:       2, // the cache slot plus the caller's ref
	}
	entries := append(c.languages[languageID], entry)
	if len(entries) > c.capacity {
		evicted := entries[0]
		entries = entries[1:]
		c.evictLocked(evicted)
	}
	c.languages[languageID] = entries

	return &TreeRef{cache: c, entry: entry}, nil
}

// lookupLocked finds a live entry for (languageID, source), marks it most
// recently used, and hands out a new reference.
func (c *Cache) lookupLocked(languageID, source string) *TreeRef {
	entries := c.languages[languageID]
	for i, e := range entries {
		if e.source == source {
			copy(entries[i:], entries[i+1:])
			entries[len(entries)-1] = e
			e.refs++
			return &TreeRef{cache: c, entry: e}
		}
	}
	return nil
}

// evictLocked drops the cache's own reference to an entry.
func (c *Cache) evictLocked(e *cacheEntry) {
	if e.evicted {
		panic("treesitter: cache entry evicted twice")
	}
	e.evicted = true
	e.refs--
	if e.refs == 0 {
		e.tree.Close()
	} else {
		c.logger.Debug("evicted tree still referenced",
			"language", e.languageID, "refs", e.refs)
	}
}

// release drops one consumer reference.
func (c *Cache) release(e *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.refs <= 0 {
		panic("treesitter: release of tree with no outstanding references")
	}
	e.refs--
	if e.refs == 0 && e.evicted {
		e.tree.Close()
	}
}

// Close evicts every cached entry. Trees with outstanding references are
// closed when their last reference is disposed.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for languageID, entries := range c.languages {
		for _, e := range entries {
			c.evictLocked(e)
		}
		delete(c.languages, languageID)
	}
}
