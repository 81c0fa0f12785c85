package treesitter

import (
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/nextedit-lsp/nextedit/protocol"
	"github.com/nextedit-lsp/nextedit/textedit"
)

// ExcludeSuffix marks a capture name whose matched ranges are removed from
// structural consideration, e.g. "@condition.exclude" keeps an if statement
// in the structure tree while dropping its condition sub-expression.
const ExcludeSuffix = ".exclude"

// Capture is one query capture reduced to plain data. It contains no native
// node references, so it can cross a JSON process boundary unchanged.
type Capture struct {
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	StartByte int               `json:"startByte"`
	EndByte   int               `json:"endByte"`
	Start     protocol.Position `json:"start"`
	End       protocol.Position `json:"end"`
	Text      string            `json:"text"`
}

// Range returns the capture's byte range.
func (c Capture) Range() textedit.OffsetRange {
	return textedit.NewOffsetRange(c.StartByte, c.EndByte)
}

// Excluded reports whether the capture marks an excluded range.
func (c Capture) Excluded() bool {
	return strings.HasSuffix(c.Name, ExcludeSuffix)
}

type queryKey struct {
	lang    *tree_sitter.Language
	pattern string
}

// Queries caches compiled queries per (grammar, query text) so identical
// query strings are compiled once per grammar.
type Queries struct {
	mu       sync.Mutex
	compiled map[queryKey]*tree_sitter.Query
}

// NewQueries creates an empty compiled-query cache.
func NewQueries() *Queries {
	return &Queries{compiled: make(map[queryKey]*tree_sitter.Query)}
}

// get returns the compiled query for (lang, pattern), compiling on first
// use. Compile failures are not cached.
func (q *Queries) get(lang *tree_sitter.Language, pattern string) (*tree_sitter.Query, error) {
	key := queryKey{lang: lang, pattern: pattern}
	q.mu.Lock()
	defer q.mu.Unlock()
	if compiled, ok := q.compiled[key]; ok {
		return compiled, nil
	}
	compiled, err := tree_sitter.NewQuery(lang, pattern)
	if err != nil {
		return nil, err
	}
	q.compiled[key] = compiled
	return compiled, nil
}

// Captures runs pattern against the tree and returns all captures in match
// order, excluded captures included (callers split them with
// SplitExcluded).
func (q *Queries) Captures(lang *tree_sitter.Language, pattern string, tree *tree_sitter.Tree, source string) ([]Capture, error) {
	query, err := q.get(lang, pattern)
	if err != nil {
		return nil, err
	}

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	src := []byte(source)
	captureNames := query.CaptureNames()
	matches := cursor.Matches(query, tree.RootNode(), src)

	var out []Capture
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, cap := range match.Captures {
			name := ""
			if int(cap.Index) < len(captureNames) {
				name = captureNames[cap.Index]
			}
			out = append(out, newCapture(name, &cap.Node, src))
		}
	}
	return out, nil
}

// SplitExcluded separates ordinary captures from excluded ranges and drops
// any ordinary capture fully contained in an excluded range.
func SplitExcluded(captures []Capture) (kept []Capture, excluded []textedit.OffsetRange) {
	for _, c := range captures {
		if c.Excluded() {
			excluded = append(excluded, c.Range())
		}
	}
	for _, c := range captures {
		if c.Excluded() {
			continue
		}
		contained := false
		for _, ex := range excluded {
			if ex.ContainsRange(c.Range()) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, c)
		}
	}
	return kept, excluded
}

// Close releases every compiled query.
func (q *Queries) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key, compiled := range q.compiled {
		compiled.Close()
		delete(q.compiled, key)
	}
}

func newCapture(name string, node *tree_sitter.Node, src []byte) Capture {
	start := node.StartPosition()
	end := node.EndPosition()
	startByte := int(node.StartByte())
	endByte := int(node.EndByte())
	text := ""
	if startByte <= len(src) && endByte <= len(src) {
		text = string(src[startByte:endByte])
	}
	return Capture{
		Name:      name,
		Kind:      node.Kind(),
		StartByte: startByte,
		EndByte:   endByte,
		Start:     protocol.Position{Line: uint32(start.Row), Character: uint32(start.Column)},
		End:       protocol.Position{Line: uint32(end.Row), Character: uint32(end.Column)},
		Text:      text,
	}
}
