package treesitter

import (
	"context"
	"log/slog"
)

// Per-language query tables for the derived accessors. Languages without an
// entry (json, yaml) yield no results for that accessor.
var (
	declarationQueries = map[string]string{
		"go": `(function_declaration) @declaration
(method_declaration) @declaration
(type_declaration) @declaration`,
		"python": `(function_definition) @declaration
(class_definition) @declaration`,
	}

	functionQueries = map[string]string{
		"go": `(function_declaration) @function
(method_declaration) @function`,
		"python": `(function_definition) @function`,
	}

	callQueries = map[string]string{
		"go":     `(call_expression) @call`,
		"python": `(call) @call`,
	}

	symbolQueries = map[string]string{
		"go": `(function_declaration name: (identifier) @symbol)
(method_declaration name: (field_identifier) @symbol)
(type_declaration (type_spec name: (type_identifier) @symbol))`,
		"python": `(function_definition name: (identifier) @symbol)
(class_definition name: (identifier) @symbol)`,
	}
)

const errorQuery = `(ERROR) @error`

// Analyzer exposes query-derived views over source text. Every accessor is a
// pure function of (languageID, source): it parses through the cache,
// queries, and disposes its tree reference before returning. A failing or
// unsupported query yields an empty result, never an error; failures are
// logged and must not abort the caller's other queries.
type Analyzer struct {
	cache   *Cache
	queries *Queries
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer over the given cache.
func NewAnalyzer(cache *Cache, queries *Queries, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cache: cache, queries: queries, logger: logger}
}

// run parses the source and executes the query for languageID from the
// given table, returning nil when the language is unsupported, has no table
// entry, or the query fails.
func (a *Analyzer) run(ctx context.Context, table map[string]string, languageID, source string) []Capture {
	pattern, ok := table[languageID]
	if !ok {
		return nil
	}
	return a.runPattern(ctx, pattern, languageID, source)
}

func (a *Analyzer) runPattern(ctx context.Context, pattern, languageID, source string) []Capture {
	ref, err := a.cache.Parse(ctx, languageID, source)
	if err != nil {
		a.logger.Warn("parse failed", "language", languageID, "error", err)
		return nil
	}
	if ref == nil {
		return nil
	}
	defer ref.Dispose()

	lang, err := a.cache.registry.Language(languageID)
	if err != nil || lang == nil {
		return nil
	}
	captures, err := a.queries.Captures(lang, pattern, ref.Tree(), source)
	if err != nil {
		a.logger.Warn("query failed", "language", languageID, "error", err)
		return nil
	}
	return captures
}

// Declarations returns function, method, class and type declarations.
func (a *Analyzer) Declarations(ctx context.Context, languageID, source string) []Capture {
	return a.run(ctx, declarationQueries, languageID, source)
}

// CallSites returns call and invocation expressions.
func (a *Analyzer) CallSites(ctx context.Context, languageID, source string) []Capture {
	return a.run(ctx, callQueries, languageID, source)
}

// Symbols returns the name identifiers of top-level declarations.
func (a *Analyzer) Symbols(ctx context.Context, languageID, source string) []Capture {
	return a.run(ctx, symbolQueries, languageID, source)
}

// DocumentableNodeAt returns the innermost declaration whose range contains
// the byte offset, or nil when there is none.
func (a *Analyzer) DocumentableNodeAt(ctx context.Context, languageID, source string, offset int) *Capture {
	return innermostAt(a.run(ctx, declarationQueries, languageID, source), offset)
}

// TestableNodeAt returns the innermost function or method whose range
// contains the byte offset, or nil when there is none.
func (a *Analyzer) TestableNodeAt(ctx context.Context, languageID, source string, offset int) *Capture {
	return innermostAt(a.run(ctx, functionQueries, languageID, source), offset)
}

// ParseErrorCount returns the number of syntax error nodes in the source,
// or zero for unsupported languages.
func (a *Analyzer) ParseErrorCount(ctx context.Context, languageID, source string) int {
	return len(a.runPattern(ctx, errorQuery, languageID, source))
}

// innermostAt picks the capture with the smallest range containing offset.
func innermostAt(captures []Capture, offset int) *Capture {
	var best *Capture
	for i := range captures {
		c := &captures[i]
		if offset < c.StartByte || offset >= c.EndByte {
			continue
		}
		if best == nil || c.EndByte-c.StartByte < best.EndByte-best.StartByte {
			best = c
		}
	}
	return best
}
