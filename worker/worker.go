// Package worker runs the parse layer as a service behind a JSON-RPC
// boundary. Every request and result is plain data, so the same Engine
// interface is served in-process (Local) or across a process boundary
// (Remote over a transport). Native parse-tree handles never cross the
// boundary; callers receive captures, spans, and counts.
package worker

import (
	"context"

	"github.com/nextedit-lsp/nextedit/structure"
	"github.com/nextedit-lsp/nextedit/treesitter"
)

// Engine is the parse service surface. Both implementations are safe for
// concurrent use.
type Engine interface {
	Parse(ctx context.Context, p ParseParams) (ParseResult, error)
	Captures(ctx context.Context, p CapturesParams) (CapturesResult, error)
	Structure(ctx context.Context, p StructureParams) (StructureResult, error)
	BlockNames(ctx context.Context, p BlockNamesParams) (BlockNamesResult, error)
	Close() error
}

// ParseParams identifies a source text to parse.
type ParseParams struct {
	LanguageID string `json:"languageId"`
	Source     string `json:"source"`
}

// ParseResult reports the outcome of a parse without exposing the tree.
// Supported is false when no grammar is registered for the language.
type ParseResult struct {
	Supported  bool `json:"supported"`
	ErrorCount int  `json:"errorCount"`
	RootStart  int  `json:"rootStart"`
	RootEnd    int  `json:"rootEnd"`
}

// CapturesParams runs a query over a source text.
type CapturesParams struct {
	LanguageID string `json:"languageId"`
	Source     string `json:"source"`
	Query      string `json:"query"`
}

// CapturesResult carries the flat captures of a query run.
type CapturesResult struct {
	Supported bool                 `json:"supported"`
	Captures  []treesitter.Capture `json:"captures,omitempty"`
}

// StructureParams derives the structural overlay for a source text. When no
// grammar is registered the overlay falls back to indentation nesting.
type StructureParams struct {
	LanguageID   string   `json:"languageId"`
	Source       string   `json:"source"`
	Query        string   `json:"query"`
	WrapperKinds []string `json:"wrapperKinds,omitempty"`
}

// StructureNode is one node of the overlay forest in wire form.
type StructureNode struct {
	Kind     string          `json:"kind"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Children []StructureNode `json:"children,omitempty"`
}

// StructureResult carries the overlay forest. Supported is false when the
// forest came from the indentation fallback rather than a grammar.
type StructureResult struct {
	Supported bool            `json:"supported"`
	Roots     []StructureNode `json:"roots,omitempty"`
}

// BlockNamesParams derives the block-name tree for a source text. The
// capture named DefinitionCapture (default "definition") selects the main
// blocks; a "name" capture inside each supplies its label.
type BlockNamesParams struct {
	LanguageID        string `json:"languageId"`
	Source            string `json:"source"`
	Query             string `json:"query"`
	DefinitionCapture string `json:"definitionCapture,omitempty"`
}

// BlockNameNode is one node of the block-name tree in wire form.
type BlockNameNode struct {
	Name     string          `json:"name"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Children []BlockNameNode `json:"children,omitempty"`
}

// BlockNamesResult carries the block-name tree.
type BlockNamesResult struct {
	Supported bool            `json:"supported"`
	Names     []BlockNameNode `json:"names,omitempty"`
}

func toStructureNodes(roots []*structure.OverlayNode) []StructureNode {
	out := make([]StructureNode, 0, len(roots))
	for _, n := range roots {
		out = append(out, StructureNode{
			Kind:     n.Kind,
			Start:    n.Range.Start,
			End:      n.Range.EndEx,
			Children: toStructureNodes(n.Children),
		})
	}
	return out
}

func toBlockNameNodes(names []*structure.BlockName) []BlockNameNode {
	out := make([]BlockNameNode, 0, len(names))
	for _, n := range names {
		out = append(out, BlockNameNode{
			Name:     n.Name,
			Start:    n.Range.Start,
			End:      n.Range.EndEx,
			Children: toBlockNameNodes(n.Children),
		})
	}
	return out
}
