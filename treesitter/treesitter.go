// Package treesitter provides the cached, ref-counted parse layer: a lazy
// grammar registry, an LRU parse-tree cache keyed by exact source text, a
// compiled-query cache, and query-derived accessors (declarations, call
// sites, symbols, parse errors) returning plain data safe to marshal across
// a process boundary.
package treesitter

import (
	"strings"
	"sync"
	"unsafe"

	ts_yaml "github.com/tree-sitter-grammars/tree-sitter-yaml/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	ts_json "github.com/tree-sitter/tree-sitter-json/bindings/go"
	ts_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// LoaderFunc loads a grammar. It runs at most once per registry entry.
type LoaderFunc func() (*tree_sitter.Language, error)

type registryEntry struct {
	once sync.Once
	load LoaderFunc
	lang *tree_sitter.Language
	err  error
}

// Registry maps language IDs to lazily loaded grammars. Each grammar is
// loaded at most once, on first use. Registries are injected rather than
// process-global so tests stay hermetic.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// DefaultRegistry returns a registry with the built-in grammars registered:
// go, json, python and yaml.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("go", tree_sitter.NewLanguage(unsafe.Pointer(ts_go.Language())))
	r.Register("json", tree_sitter.NewLanguage(unsafe.Pointer(ts_json.Language())))
	r.Register("python", tree_sitter.NewLanguage(unsafe.Pointer(ts_python.Language())))
	r.Register("yaml", tree_sitter.NewLanguage(unsafe.Pointer(ts_yaml.Language())))
	return r
}

// Register adds an already loaded grammar for a language ID.
func (r *Registry) Register(languageID string, lang *tree_sitter.Language) {
	r.RegisterLoader(languageID, func() (*tree_sitter.Language, error) {
		return lang, nil
	})
}

// RegisterLoader adds a lazily loaded grammar for a language ID. A later
// registration for the same ID replaces an earlier one that has not loaded
// yet.
func (r *Registry) RegisterLoader(languageID string, load LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[languageID] = &registryEntry{load: load}
}

// Language returns the grammar for a language ID, loading it on first use.
// An unregistered language returns (nil, nil): unsupported languages are an
// expected no-result, not an error.
func (r *Registry) Language(languageID string) (*tree_sitter.Language, error) {
	r.mu.Lock()
	e := r.entries[languageID]
	r.mu.Unlock()
	if e == nil {
		return nil, nil
	}
	e.once.Do(func() {
		e.lang, e.err = e.load()
	})
	return e.lang, e.err
}

// Supports reports whether a grammar is registered for the language ID.
func (r *Registry) Supports(languageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[languageID] != nil
}

// LanguageIDs returns the registered language IDs.
func (r *Registry) LanguageIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// GrammarFilename returns the on-disk grammar filename for a language ID
// following the tree-sitter-<language>.wasm convention. The csharp grammar
// ships under the historical "c-sharp" name.
func GrammarFilename(languageID string) string {
	name := languageID
	if name == "csharp" {
		name = "c-sharp"
	}
	return "tree-sitter-" + strings.ToLower(name) + ".wasm"
}
