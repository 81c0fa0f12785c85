// Package protocol contains the wire-level document types consumed by the
// nextedit core. Every type here is plain data with JSON tags: these are the
// only values allowed to cross the parse-worker boundary.
package protocol

// DocumentURI represents the URI of a document.
type DocumentURI string

// Position in a text document expressed as zero-based line and UTF-16
// character offset.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range in a text document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Selection is a cursor selection. Anchor is where the selection started,
// Active is where the cursor currently is; they are equal for an empty
// selection.
type Selection struct {
	Anchor Position `json:"anchor"`
	Active Position `json:"active"`
}

// IsEmpty reports whether the selection is a bare cursor.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// TextDocumentIdentifier identifies a text document.
type TextDocumentIdentifier struct {
	URI DocumentURI `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a versioned text document.
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int32 `json:"version"`
}

// TextDocumentItem describes a text document with content.
type TextDocumentItem struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int32       `json:"version"`
	Text       string      `json:"text"`
}

// TextDocumentContentChangeEvent describes a content change in a text
// document. A nil Range means full-text replacement.
type TextDocumentContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength uint32 `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

// DidOpenTextDocumentParams is sent when a document is opened in the editor.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidChangeTextDocumentParams carries incremental (or full) content changes.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams is sent when a document is closed.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// SelectionChangeParams is sent when the primary selection in a document
// moves. Only documents that have reported at least one selection are treated
// as user documents by the history layer.
type SelectionChangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Selection    Selection              `json:"selection"`
}
