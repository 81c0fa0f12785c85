package treesitter

import (
	"context"
	"fmt"
	"sync"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

const goSource = "package p\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n"

func mustParse(t *testing.T, cache *Cache, languageID, source string) *TreeRef {
	t.Helper()
	ref, err := cache.Parse(context.Background(), languageID, source)
	if err != nil {
		t.Fatalf("Parse(%s): %v", languageID, err)
	}
	if ref == nil {
		t.Fatalf("Parse(%s): no tree", languageID)
	}
	return ref
}

func TestParseCacheHitSharesTree(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	ref1 := mustParse(t, cache, "go", goSource)
	defer ref1.Dispose()
	ref2 := mustParse(t, cache, "go", goSource)
	defer ref2.Dispose()

	if ref1.Tree() != ref2.Tree() {
		t.Error("identical source parsed twice did not share a tree")
	}
	if ref1 == ref2 {
		t.Error("cache handed out the same reference twice")
	}
}

func TestDisposeOneRefKeepsOtherValid(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	ref1 := mustParse(t, cache, "go", goSource)
	ref2 := mustParse(t, cache, "go", goSource)

	ref1.Dispose()
	if root := ref2.Tree().RootNode(); root.Kind() != "source_file" {
		t.Errorf("root kind = %q after sibling dispose, want source_file", root.Kind())
	}
	ref2.Dispose()
}

func TestDoubleDisposePanics(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	ref := mustParse(t, cache, "go", goSource)
	ref.Dispose()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double dispose")
		}
	}()
	ref.Dispose()
}

func TestUnsupportedLanguageIsNoResult(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	ref, err := cache.Parse(context.Background(), "cobol", "DISPLAY 'HI'.")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ref != nil {
		t.Error("unsupported language returned a tree reference")
	}
}

func TestLRUEvictionBoundary(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	sources := make([]string, cacheCapacity+1)
	trees := make([]*tree_sitter.Tree, len(sources))
	for i := range sources {
		sources[i] = fmt.Sprintf("package p\n\nvar v%d = %d\n", i, i)
		ref := mustParse(t, cache, "go", sources[i])
		trees[i] = ref.Tree()
		ref.Dispose()
	}

	// sources[0] was least recently used and must have been evicted;
	// re-parsing it produces a fresh tree rather than reusing stale state.
	ref0 := mustParse(t, cache, "go", sources[0])
	if ref0.Tree() == trees[0] {
		t.Error("evicted source reused a stale tree")
	}
	ref0.Dispose()

	// sources[2..] survive and hit the cache. sources[1] became the LRU
	// entry and was evicted by the re-parse of sources[0] above.
	for i := 2; i < len(sources); i++ {
		ref := mustParse(t, cache, "go", sources[i])
		if ref.Tree() != trees[i] {
			t.Errorf("source %d re-parsed, want cache hit", i)
		}
		ref.Dispose()
	}
}

func TestEvictedTreeOutlivesCacheSlot(t *testing.T) {
	cache := NewCache(DefaultRegistry(), withCacheCapacity(1))
	defer cache.Close()

	held := mustParse(t, cache, "go", goSource)
	// Parsing different source evicts the held entry from the single slot.
	other := mustParse(t, cache, "go", "package q\n")
	other.Dispose()

	if root := held.Tree().RootNode(); root.Kind() != "source_file" {
		t.Errorf("evicted-but-referenced tree unusable, root kind %q", root.Kind())
	}
	held.Dispose()
}

func TestConcurrentParseSharesTree(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	const n = 8
	refs := make([]*TreeRef, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref, err := cache.Parse(context.Background(), "go", goSource)
			if err != nil {
				t.Errorf("Parse: %v", err)
				return
			}
			refs[i] = ref
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if refs[i] == nil || refs[0] == nil {
			t.Fatal("missing ref")
		}
		if refs[i].Tree() != refs[0].Tree() {
			t.Fatal("concurrent parses of identical source produced distinct retained trees")
		}
	}
	for _, ref := range refs {
		ref.Dispose()
	}

	// The cache slot itself must still be live afterwards.
	ref := mustParse(t, cache, "go", goSource)
	if ref.Tree() != refs[0].Tree() {
		t.Error("cache entry lost after all consumer refs were disposed")
	}
	ref.Dispose()
}

func TestCacheIsPerLanguage(t *testing.T) {
	cache := NewCache(DefaultRegistry())
	defer cache.Close()

	// The same text parses independently under different grammars.
	src := "x = 1"
	py := mustParse(t, cache, "python", src)
	defer py.Dispose()
	yml := mustParse(t, cache, "yaml", src)
	defer yml.Dispose()

	if py.Tree() == yml.Tree() {
		t.Error("different languages shared a cache entry")
	}
}
