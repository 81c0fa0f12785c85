// Package nextedit is the core of an editor's next-edit suggestion pipeline.
// It tracks recent edit history per document with fixed budgets, converges a
// streamed rewrite against the original text line by line, and derives
// structural views from cached tree-sitter parses, optionally behind an
// out-of-process parse worker.
//
// A minimal embedding wires the engine to editor document events:
//
//	e, err := nextedit.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer e.Close()
//	e.Documents().Open(openParams)
//	e.Documents().Change(changeParams)
//	edits := e.RecentEdits(uri)
//
// See the examples/ directory for progressively more complete embeddings.
package nextedit
